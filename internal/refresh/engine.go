package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/coindcx-tracker/internal/model"
	"github.com/rickgao/coindcx-tracker/internal/parser"
	"github.com/rickgao/coindcx-tracker/internal/store"
)

var (
	// ErrAlreadyRunning is returned by Start when the loop is already running.
	ErrAlreadyRunning = errors.New("refresh engine already running")

	// ErrStopped is returned once Stop has been called.
	ErrStopped = errors.New("refresh engine stopped")
)

// Fetcher retrieves raw exchange documents. *api.Client satisfies it.
type Fetcher interface {
	FetchMarketDetails(ctx context.Context) ([]byte, error)
	FetchTickers(ctx context.Context) ([]byte, error)
	FetchOrderBook(ctx context.Context, pair string) ([]byte, error)
}

// Stores groups the tables the engine writes through.
type Stores struct {
	Markets    *store.MarketStore
	Tickers    *store.Store[model.Ticker]
	OrderBooks *store.Store[model.OrderBook]
}

// NewStores returns a set of empty stores.
func NewStores() Stores {
	return Stores{
		Markets:    store.NewMarketStore(),
		Tickers:    store.NewTickerStore(),
		OrderBooks: store.NewOrderBookStore(),
	}
}

// Config holds refresh engine configuration.
type Config struct {
	Interval         time.Duration // Market + ticker refresh interval (default: 5s)
	OrderbookTimeout time.Duration // Per on-demand order book fetch (default: 10s)
	ExcludeMarkets   []string      // Tickers never written (default: BTCINR_insta)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:         5 * time.Second,
		OrderbookTimeout: 10 * time.Second,
		ExcludeMarkets:   []string{"BTCINR_insta"},
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickerListener registers fn to receive every ticker batch written by a
// refresh cycle. fn runs on the refreshing goroutine, outside store locks.
func WithTickerListener(fn func([]model.Ticker)) Option {
	return func(e *Engine) {
		e.onTickers = fn
	}
}

// Engine keeps the market and ticker stores warm and fetches order books on
// demand.
type Engine struct {
	cfg     Config
	fetcher Fetcher
	stores  Stores
	logger  *slog.Logger
	exclude map[string]struct{}

	onTickers func([]model.Ticker)

	// Serializes refresh cycles.
	cycleMu sync.Mutex

	// Guards the lifecycle fields and brackets every cycle write.
	mu      sync.Mutex
	state   State
	running bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	books singleflight.Group

	statsMu sync.Mutex
	stats   Stats
}

// New creates a new Engine.
func New(cfg Config, fetcher Fetcher, stores Stores, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.OrderbookTimeout <= 0 {
		cfg.OrderbookTimeout = defaults.OrderbookTimeout
	}

	exclude := make(map[string]struct{}, len(cfg.ExcludeMarkets))
	for _, m := range cfg.ExcludeMarkets {
		exclude[m] = struct{}{}
	}

	e := &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		stores:  stores,
		logger:  logger,
		exclude: exclude,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// Start begins the background refresh loop. It does not refresh immediately;
// callers that need warm stores before serving call RefreshOnce first.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	if e.running {
		return ErrAlreadyRunning
	}

	var loopCtx context.Context
	loopCtx, e.cancel = context.WithCancel(ctx)
	e.running = true

	e.wg.Add(1)
	go e.run(loopCtx)

	e.logger.Info("refresh engine started",
		"interval", e.cfg.Interval,
		"excluded", len(e.exclude),
	)

	return nil
}

// Stop cancels the background loop and waits for it to exit. No cycle writes
// to the stores after Stop has been called. Stop is terminal.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	e.state = StateStopped
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("refresh engine stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main refresh loop.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Failures are logged inside the cycle and the previous cache is kept.
			_ = e.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce runs one market + ticker refresh cycle. The two documents are
// fetched and parsed independently; whichever succeeds is written. The
// returned error joins the failures of both halves.
func (e *Engine) RefreshOnce(ctx context.Context) error {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	if !e.transition(StateFetching) {
		return ErrStopped
	}

	cycleID := uuid.NewString()
	logger := e.logger.With("cycle_id", cycleID)
	start := time.Now()

	var (
		details   []model.MarketDetail
		tickers   []model.Ticker
		detailErr error
		tickerErr error
	)

	// Each half keeps its own error so one failure never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		details, detailErr = e.fetchMarketDetails(ctx)
		return nil
	})
	g.Go(func() error {
		tickers, tickerErr = e.fetchTickers(ctx)
		return nil
	})
	_ = g.Wait()

	if !e.write(func() {
		if detailErr == nil {
			e.stores.Markets.PutAll(details)
		}
		if tickerErr == nil {
			e.stores.Tickers.PutAll(tickers)
		}
	}) {
		logger.Debug("refresh cycle abandoned, engine stopped")
		return ErrStopped
	}

	e.recordCycle(cycleID, detailErr, tickerErr)

	if detailErr != nil {
		logger.Warn("market details refresh failed", "err", detailErr)
	}
	if tickerErr != nil {
		logger.Warn("ticker refresh failed", "err", tickerErr)
	}

	if tickerErr == nil && e.onTickers != nil && len(tickers) > 0 {
		e.onTickers(tickers)
	}

	logger.Debug("refresh cycle complete",
		"markets", len(details),
		"tickers", len(tickers),
		"duration", time.Since(start),
	)

	return errors.Join(detailErr, tickerErr)
}

// transition moves to next unless the engine has been stopped.
func (e *Engine) transition(next State) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return false
	}
	e.state = next
	return true
}

// write runs fn in the Updating state and returns to Idle. It reports false
// without calling fn once the engine has been stopped.
func (e *Engine) write(fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return false
	}
	e.state = StateUpdating
	fn()
	e.state = StateIdle
	return true
}

func (e *Engine) fetchMarketDetails(ctx context.Context) ([]model.MarketDetail, error) {
	body, err := e.fetcher.FetchMarketDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market details: %w", err)
	}
	details, err := parser.ParseMarketDetails(body)
	if err != nil {
		return nil, fmt.Errorf("parse market details: %w", err)
	}
	return details, nil
}

func (e *Engine) fetchTickers(ctx context.Context) ([]model.Ticker, error) {
	body, err := e.fetcher.FetchTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	tickers, err := parser.ParseTickers(body)
	if err != nil {
		return nil, fmt.Errorf("parse tickers: %w", err)
	}

	kept := tickers[:0]
	for _, t := range tickers {
		if _, skip := e.exclude[t.Market]; skip {
			continue
		}
		kept = append(kept, t)
	}
	return kept, nil
}
