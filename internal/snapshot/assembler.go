package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/coindcx-tracker/internal/model"
	"github.com/rickgao/coindcx-tracker/internal/refresh"
	"github.com/rickgao/coindcx-tracker/internal/store"
)

// ErrUnknownMarket is returned by Query for a name with no cached pair.
var ErrUnknownMarket = errors.New("unknown market")

// OrderBookError is returned by Query when the order book could not be
// fetched and no earlier copy is cached.
type OrderBookError struct {
	Pair string
	Err  error
}

func (e *OrderBookError) Error() string {
	return fmt.Sprintf("order book unavailable for %s: %v", e.Pair, e.Err)
}

func (e *OrderBookError) Unwrap() error {
	return e.Err
}

// Parts that may be missing from a Snapshot.
const (
	PartMarketDetails = "market_details"
	PartTicker        = "ticker_details"
)

// Snapshot is the joined view of one market at request time.
type Snapshot struct {
	Market      string
	Pair        string
	RequestedAt time.Time

	Detail    *model.MarketDetail
	Ticker    *model.Ticker
	OrderBook *model.OrderBook

	// OrderBookStale is set when the on-demand fetch failed and the
	// previously cached book was returned instead.
	OrderBookStale bool

	// Missing lists the parts that have never been fetched.
	Missing []string
}

// Partial reports whether the snapshot lacks any part or carries a stale book.
func (s Snapshot) Partial() bool {
	return len(s.Missing) > 0 || s.OrderBookStale
}

// OrderBookRefresher fetches and stores a pair's order book on demand.
// *refresh.Engine satisfies it.
type OrderBookRefresher interface {
	RefreshOrderBook(ctx context.Context, pair string) (model.OrderBook, error)
}

// Assembler answers market queries by joining the stores.
type Assembler struct {
	markets    *store.MarketStore
	tickers    *store.Store[model.Ticker]
	orderBooks *store.Store[model.OrderBook]
	books      OrderBookRefresher
	logger     *slog.Logger
}

// New creates an Assembler reading from stores and refreshing order books
// through books.
func New(stores refresh.Stores, books OrderBookRefresher, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		markets:    stores.Markets,
		tickers:    stores.Tickers,
		orderBooks: stores.OrderBooks,
		books:      books,
		logger:     logger,
	}
}

// Query resolves market to its pair, refreshes the pair's order book and
// joins it with whatever detail and ticker are cached. Each lookup hits or
// misses independently.
func (a *Assembler) Query(ctx context.Context, market string) (Snapshot, error) {
	pair, ok := a.markets.Pair(market)
	if !ok || pair == "" {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownMarket, market)
	}

	snap := Snapshot{
		Market:      market,
		Pair:        pair,
		RequestedAt: time.Now(),
	}

	book, err := a.books.RefreshOrderBook(ctx, pair)
	if err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		cached, ok := a.orderBooks.Get(pair)
		if !ok {
			return Snapshot{}, &OrderBookError{Pair: pair, Err: err}
		}
		a.logger.Warn("serving cached order book",
			"market", market,
			"pair", pair,
			"fetched_at", cached.FetchedAt,
			"err", err,
		)
		book = cached
		snap.OrderBookStale = true
	}
	snap.OrderBook = &book

	if d, ok := a.markets.Get(market); ok {
		snap.Detail = &d
	} else {
		snap.Missing = append(snap.Missing, PartMarketDetails)
	}

	if t, ok := a.tickers.Get(market); ok {
		snap.Ticker = &t
	} else {
		snap.Missing = append(snap.Missing, PartTicker)
	}

	return snap, nil
}

// ListPairs returns every known market name in ascending order.
func (a *Assembler) ListPairs() []string {
	return a.markets.Names()
}

// ListTickers returns every cached ticker ordered by market.
func (a *Assembler) ListTickers() []model.Ticker {
	return a.tickers.List()
}
