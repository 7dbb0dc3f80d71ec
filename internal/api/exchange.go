package api

import (
	"context"
	"fmt"
	"net/url"
)

// Exchange endpoints.
const (
	MarketDetailsPath = "/exchange/v1/markets_details"
	TickerPath        = "/exchange/ticker"
	OrderbookPath     = "/market_data/orderbook"
)

// FetchMarketDetails returns the raw market details document (one array for all pairs).
func (c *Client) FetchMarketDetails(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, c.restURL, MarketDetailsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get market details: %w", err)
	}
	return body, nil
}

// FetchTickers returns the raw ticker document.
func (c *Client) FetchTickers(ctx context.Context) ([]byte, error) {
	body, err := c.get(ctx, c.restURL, TickerPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get tickers: %w", err)
	}
	return body, nil
}

// FetchOrderBook returns the raw order book document for a pair (e.g. "I-BTC_INR").
func (c *Client) FetchOrderBook(ctx context.Context, pair string) ([]byte, error) {
	query := url.Values{}
	query.Set("pair", pair)

	body, err := c.get(ctx, c.publicURL, OrderbookPath, query)
	if err != nil {
		return nil, fmt.Errorf("get orderbook %s: %w", pair, err)
	}
	return body, nil
}
