package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"
)

// APIError represents a non-2xx response from the exchange.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("coindcx api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// TransportError is returned when the exchange could not be reached or
// answered with an error status. Err is the last underlying failure.
type TransportError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s (%d attempts): %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// doRequest performs a single HTTP request against baseURL+path.
func (c *Client) doRequest(ctx context.Context, method, baseURL, path string, query url.Values) ([]byte, error) {
	fullURL := buildURL(baseURL, path, query)

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request, retrying transport failures and retryable
// status codes up to maxRetries times with a jittered fixed delay.
func (c *Client) doWithRetry(ctx context.Context, method, baseURL, path string, query url.Values) ([]byte, error) {
	fullURL := buildURL(baseURL, path, query)

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.jitteredDelay()
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", wait,
				"url", fullURL,
				"err", lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, &TransportError{URL: fullURL, Attempts: attempts, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &TransportError{URL: fullURL, Attempts: attempts, Err: fmt.Errorf("rate limiter: %w", err)}
			}
		}

		attempts++
		body, err := c.doRequest(ctx, method, baseURL, path, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if !isRetryable(ctx, err) {
			return nil, &TransportError{URL: fullURL, Attempts: attempts, Err: err}
		}
	}

	return nil, &TransportError{
		URL:      fullURL,
		Attempts: attempts,
		Err:      fmt.Errorf("max retries exceeded: %w", lastErr),
	}
}

// get performs a GET request with retries and returns the raw body.
func (c *Client) get(ctx context.Context, baseURL, path string, query url.Values) ([]byte, error) {
	return c.doWithRetry(ctx, http.MethodGet, baseURL, path, query)
}

func (c *Client) jitteredDelay() time.Duration {
	if c.retryDelay <= 0 {
		return 0
	}
	// delay * (0.5 to 1.5)
	return c.retryDelay/2 + time.Duration(rand.Int64N(int64(c.retryDelay)))
}

// isRetryable reports whether a failed attempt is worth repeating.
// Network failures are retried; so are 5xx and 429 responses.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	return true
}

func buildURL(baseURL, path string, query url.Values) string {
	fullURL := baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	return fullURL
}
