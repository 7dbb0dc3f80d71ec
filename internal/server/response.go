package server

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rickgao/coindcx-tracker/internal/model"
	"github.com/rickgao/coindcx-tracker/internal/snapshot"
	"github.com/rickgao/coindcx-tracker/internal/version"
)

type errorResponse struct {
	Error            string `json:"error"`
	RequestTimestamp int64  `json:"request_timestamp"`
}

type orderBookResponse struct {
	Bids map[string]string `json:"bids"`
	Asks map[string]string `json:"asks"`
}

type marketDetailsResponse struct {
	BaseCurrency   string  `json:"base_currency"`
	TargetCurrency string  `json:"target_currency"`
	MinQuantity    float64 `json:"min_quantity"`
	MaxQuantity    float64 `json:"max_quantity"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
}

type tickerDetailsResponse struct {
	Change24Hour string `json:"change_24_hour"`
	LastPrice    string `json:"last_price"`
	Bid          string `json:"bid"`
	Ask          string `json:"ask"`
	High         string `json:"high"`
	Low          string `json:"low"`
	Volume       string `json:"volume"`
	Timestamp    int64  `json:"timestamp"`
}

type liveDataResponse struct {
	Pair             string                 `json:"pair"` // market name, e.g. "BTCINR"
	PairSymbol       string                 `json:"pair_symbol"`
	RequestTimestamp int64                  `json:"request_timestamp"`
	OrderBook        orderBookResponse      `json:"order_book"`
	OrderBookStale   bool                   `json:"order_book_stale,omitempty"`
	MarketDetails    *marketDetailsResponse `json:"market_details,omitempty"`
	TickerDetails    *tickerDetailsResponse `json:"ticker_details,omitempty"`
	Missing          []string               `json:"missing,omitempty"`
}

func newLiveDataResponse(s snapshot.Snapshot) liveDataResponse {
	resp := liveDataResponse{
		Pair:             s.Market,
		PairSymbol:       s.Pair,
		RequestTimestamp: s.RequestedAt.UnixNano(),
		OrderBook: orderBookResponse{
			Bids: map[string]string{},
			Asks: map[string]string{},
		},
		OrderBookStale: s.OrderBookStale,
		Missing:        s.Missing,
	}

	if ob := s.OrderBook; ob != nil {
		if ob.Bids != nil {
			resp.OrderBook.Bids = ob.Bids
		}
		if ob.Asks != nil {
			resp.OrderBook.Asks = ob.Asks
		}
	}

	if d := s.Detail; d != nil {
		resp.MarketDetails = &marketDetailsResponse{
			BaseCurrency:   d.BaseCurrencyShortName,
			TargetCurrency: d.TargetCurrencyShortName,
			MinQuantity:    d.MinQuantity,
			MaxQuantity:    d.MaxQuantity,
			MinPrice:       d.MinPrice,
			MaxPrice:       d.MaxPrice,
		}
	}

	if t := s.Ticker; t != nil {
		resp.TickerDetails = &tickerDetailsResponse{
			Change24Hour: t.Change24Hour,
			LastPrice:    t.LastPrice,
			Bid:          t.Bid,
			Ask:          t.Ask,
			High:         t.High,
			Low:          t.Low,
			Volume:       t.Volume,
			Timestamp:    t.Timestamp,
		}
	}

	return resp
}

type tickerResponse struct {
	Symbol            string `json:"symbol"`
	LastTradedPrice   string `json:"last_traded_price"`
	Volume            string `json:"volume"`
	ExchangeTimestamp int64  `json:"exchange_timestamp"`
	Ask               string `json:"ask"`
	Bid               string `json:"bid"`
	High              string `json:"high"`
	Low               string `json:"low"`
	Change24Hour      string `json:"change_24_hour"`
	RequestTimestamp  int64  `json:"request_timestamp"`
}

func newTickerResponses(tickers []model.Ticker, now time.Time) []tickerResponse {
	ts := now.UnixNano()
	out := make([]tickerResponse, len(tickers))
	for i, t := range tickers {
		out[i] = tickerResponse{
			Symbol:            t.Market,
			LastTradedPrice:   t.LastPrice,
			Volume:            t.Volume,
			ExchangeTimestamp: t.Timestamp,
			Ask:               t.Ask,
			Bid:               t.Bid,
			High:              t.High,
			Low:               t.Low,
			Change24Hour:      t.Change24Hour,
			RequestTimestamp:  ts,
		}
	}
	return out
}

type healthResponse struct {
	Status            string       `json:"status"`
	Version           version.Info `json:"version"`
	Engine            string       `json:"engine,omitempty"`
	Markets           int          `json:"markets"`
	Tickers           int          `json:"tickers"`
	Cycles            uint64       `json:"cycles"`
	LastMarketRefresh *time.Time   `json:"last_market_refresh,omitempty"`
	LastTickerRefresh *time.Time   `json:"last_ticker_refresh,omitempty"`
}

// Broadcaster pushes an encoded message to stream subscribers.
// *stream.Hub satisfies it.
type Broadcaster interface {
	Broadcast(data []byte)
}

// TickerFeed returns a refresh listener that pushes every ticker batch to b
// in the /ticker format.
func TickerFeed(b Broadcaster, logger *slog.Logger) func([]model.Ticker) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(tickers []model.Ticker) {
		data, err := json.Marshal(newTickerResponses(tickers, time.Now()))
		if err != nil {
			logger.Error("encode ticker batch", "err", err)
			return
		}
		b.Broadcast(data)
	}
}
