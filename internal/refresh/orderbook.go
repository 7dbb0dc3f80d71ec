package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/coindcx-tracker/internal/model"
	"github.com/rickgao/coindcx-tracker/internal/parser"
)

// RefreshOrderBook fetches the order book for pair, stores it and returns a
// copy. Concurrent calls for the same pair share one upstream request. On
// failure the stored book for pair is left as it was.
func (e *Engine) RefreshOrderBook(ctx context.Context, pair string) (model.OrderBook, error) {
	// The shared fetch outlives any single caller; each caller still honours
	// its own ctx while waiting.
	ch := e.books.DoChan(pair, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.OrderbookTimeout)
		defer cancel()

		book, err := e.fetchOrderBook(fetchCtx, pair)
		e.recordOrderBook(err)
		if err != nil {
			e.logger.Warn("order book refresh failed", "pair", pair, "err", err)
			return nil, err
		}

		e.stores.OrderBooks.Put(book)
		return book, nil
	})

	select {
	case <-ctx.Done():
		return model.OrderBook{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.OrderBook{}, res.Err
		}
		return res.Val.(model.OrderBook).Clone(), nil
	}
}

func (e *Engine) fetchOrderBook(ctx context.Context, pair string) (model.OrderBook, error) {
	start := time.Now()

	body, err := e.fetcher.FetchOrderBook(ctx, pair)
	if err != nil {
		return model.OrderBook{}, fmt.Errorf("fetch orderbook %s: %w", pair, err)
	}
	book, err := parser.ParseOrderBook(pair, body)
	if err != nil {
		return model.OrderBook{}, fmt.Errorf("parse orderbook %s: %w", pair, err)
	}

	e.logger.Debug("order book refreshed",
		"pair", pair,
		"bids", len(book.Bids),
		"asks", len(book.Asks),
		"duration", time.Since(start),
	)
	return book, nil
}
