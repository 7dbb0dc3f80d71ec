package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", "https://public.example.com")

		if c.restURL != "https://api.example.com" {
			t.Errorf("restURL = %q, want %q", c.restURL, "https://api.example.com")
		}
		if c.publicURL != "https://public.example.com" {
			t.Errorf("publicURL = %q, want %q", c.publicURL, "https://public.example.com")
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.retryDelay != time.Second {
			t.Errorf("retryDelay = %v, want %v", c.retryDelay, time.Second)
		}
		if c.limiter != nil {
			t.Error("limiter should be nil by default")
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with timeout option", func(t *testing.T) {
		c := NewClient("", "", WithTimeout(5*time.Second))
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
	})

	t.Run("with retries option", func(t *testing.T) {
		c := NewClient("", "", WithRetries(5, 2*time.Second))
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryDelay != 2*time.Second {
			t.Errorf("retryDelay = %v, want %v", c.retryDelay, 2*time.Second)
		}
	})

	t.Run("with rate limit option", func(t *testing.T) {
		c := NewClient("", "", WithRateLimit(5, 0))
		if c.limiter == nil {
			t.Fatal("limiter should be set")
		}
		if c.limiter.Burst() != 1 {
			t.Errorf("Burst = %d, want 1", c.limiter.Burst())
		}

		c = NewClient("", "", WithRateLimit(0, 10))
		if c.limiter != nil {
			t.Error("zero rps should disable the limiter")
		}
	})

	t.Run("with logger option", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("", "", WithLogger(logger))
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})

	t.Run("with custom HTTP client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 3 * time.Second}
		c := NewClient("", "", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not set")
		}
	})
}

// TestAPIError tests the APIError type.
func TestAPIError(t *testing.T) {
	t.Run("Error method", func(t *testing.T) {
		err := &APIError{StatusCode: 404, Message: "Not Found"}
		expected := "coindcx api error 404: Not Found"
		if err.Error() != expected {
			t.Errorf("Error() = %q, want %q", err.Error(), expected)
		}
	})

	t.Run("IsRetryable", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{500, true},
			{502, true},
			{503, true},
			{429, true},
			{400, false},
			{404, false},
			{499, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			if got := err.IsRetryable(); got != tt.expected {
				t.Errorf("IsRetryable() for status %d = %v, want %v", tt.code, got, tt.expected)
			}
		}
	})
}

// TestDoRequest tests the single-attempt HTTP path.
func TestDoRequest(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept header = %q, want %q", r.Header.Get("Accept"), "application/json")
			}
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL)
		body, err := c.doRequest(context.Background(), http.MethodGet, server.URL, "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `[]` {
			t.Errorf("body = %q, want %q", string(body), `[]`)
		}
	})

	t.Run("4xx error returns APIError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "not found"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL)
		_, err := c.doRequest(context.Background(), http.MethodGet, server.URL, "/test", nil)

		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.StatusCode != 404 {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, 404)
		}
		if !strings.Contains(string(apiErr.Body), "not found") {
			t.Errorf("Body should contain 'not found', got %q", string(apiErr.Body))
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.doRequest(ctx, http.MethodGet, server.URL, "/test", nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error should wrap context.Canceled, got %v", err)
		}
	})
}

// TestDoWithRetry tests the retry logic.
func TestDoWithRetry(t *testing.T) {
	t.Run("retries on 5xx and succeeds", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRetries(3, 10*time.Millisecond))
		body, err := c.doWithRetry(context.Background(), http.MethodGet, server.URL, "/test", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(body) != `{"ok": true}` {
			t.Errorf("body = %q, want %q", string(body), `{"ok": true}`)
		}
		if got := attempts.Load(); got != 3 {
			t.Errorf("attempts = %d, want 3", got)
		}
	})

	t.Run("does not retry on 4xx (except 429)", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRetries(3, 10*time.Millisecond))
		_, err := c.doWithRetry(context.Background(), http.MethodGet, server.URL, "/test", nil)

		var tErr *TransportError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected *TransportError, got %T", err)
		}
		if tErr.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", tErr.Attempts)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected wrapped 400 APIError, got %v", err)
		}
		if got := attempts.Load(); got != 1 {
			t.Errorf("attempts = %d, want 1", got)
		}
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRetries(2, 10*time.Millisecond))
		_, err := c.doWithRetry(context.Background(), http.MethodGet, server.URL, "/test", nil)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "max retries exceeded") {
			t.Errorf("error should contain 'max retries exceeded', got %v", err)
		}
		// 1 initial + 2 retries
		if got := attempts.Load(); got != 3 {
			t.Errorf("attempts = %d, want 3", got)
		}
	})

	t.Run("retries network failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		c := NewClient(url, url, WithRetries(2, time.Millisecond))
		_, err := c.doWithRetry(context.Background(), http.MethodGet, url, "/test", nil)

		var tErr *TransportError
		if !errors.As(err, &tErr) {
			t.Fatalf("expected *TransportError, got %T: %v", err, err)
		}
		if tErr.Attempts != 3 {
			t.Errorf("Attempts = %d, want 3", tErr.Attempts)
		}
	})

	t.Run("zero retries", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRetries(0, 0))
		if _, err := c.doWithRetry(context.Background(), http.MethodGet, server.URL, "/test", nil); err == nil {
			t.Fatal("expected error, got nil")
		}
		if got := attempts.Load(); got != 1 {
			t.Errorf("attempts = %d, want 1", got)
		}
	})

	t.Run("context cancellation during retry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRetries(5, 50*time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
		defer cancel()

		_, err := c.doWithRetry(ctx, http.MethodGet, server.URL, "/test", nil)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
		}
	})

	t.Run("rate limit spaces requests", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, server.URL, WithRateLimit(20, 1))
		start := time.Now()
		for i := 0; i < 3; i++ {
			if _, err := c.doWithRetry(context.Background(), http.MethodGet, server.URL, "/test", nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		// burst 1 at 20 rps: two waits of ~50ms
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("elapsed = %v, want >= 80ms", elapsed)
		}
	})
}

// TestEndpoints checks each exchange endpoint hits the right host and path.
func TestEndpoints(t *testing.T) {
	var mu sync.Mutex
	var restPaths, publicPaths []string
	rest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		restPaths = append(restPaths, r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`[]`))
	}))
	defer rest.Close()

	var gotPair string
	public := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		publicPaths = append(publicPaths, r.URL.Path)
		gotPair = r.URL.Query().Get("pair")
		mu.Unlock()
		w.Write([]byte(`{"bids":{},"asks":{}}`))
	}))
	defer public.Close()

	c := NewClient(rest.URL, public.URL)
	ctx := context.Background()

	if _, err := c.FetchMarketDetails(ctx); err != nil {
		t.Fatalf("FetchMarketDetails: %v", err)
	}
	if _, err := c.FetchTickers(ctx); err != nil {
		t.Fatalf("FetchTickers: %v", err)
	}
	body, err := c.FetchOrderBook(ctx, "I-BTC_INR")
	if err != nil {
		t.Fatalf("FetchOrderBook: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(restPaths) != 2 || restPaths[0] != MarketDetailsPath || restPaths[1] != TickerPath {
		t.Errorf("rest paths = %v, want [%s %s]", restPaths, MarketDetailsPath, TickerPath)
	}
	if len(publicPaths) != 1 || publicPaths[0] != OrderbookPath {
		t.Errorf("public paths = %v, want [%s]", publicPaths, OrderbookPath)
	}
	if gotPair != "I-BTC_INR" {
		t.Errorf("pair = %q, want %q", gotPair, "I-BTC_INR")
	}
	if string(body) != `{"bids":{},"asks":{}}` {
		t.Errorf("body = %q", string(body))
	}
}

func TestEndpoints_ErrorWrapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.URL, WithRetries(0, 0))
	_, err := c.FetchOrderBook(context.Background(), "B-ETH_BTC")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "get orderbook B-ETH_BTC") {
		t.Errorf("error should name the pair, got %v", err)
	}
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Errorf("expected *TransportError in chain, got %v", err)
	}
}
