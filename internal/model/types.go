package model

import "time"

// -----------------------------------------------------------------------------
// Reference Data
// -----------------------------------------------------------------------------

// MarketDetail holds the static trading rules for one listed pair.
type MarketDetail struct {
	Name                    string // Primary key (coindcx_name, e.g. "BTCINR")
	BaseCurrencyShortName   string // e.g. "INR"
	TargetCurrencyShortName string // e.g. "BTC"
	BaseCurrencyName        string // e.g. "Indian Rupee"
	TargetCurrencyName      string // e.g. "Bitcoin"

	// Order bounds
	MinQuantity float64
	MaxQuantity float64
	MinPrice    float64
	MaxPrice    float64
	MinNotional float64

	// Precision (digits after the decimal point)
	BaseCurrencyPrecision   int
	TargetCurrencyPrecision int
	Step                    float64 // Price step size

	OrderTypes  []string // e.g. ["limit_order", "market_order"]
	Symbol      string   // Exchange symbol
	ECode       string   // Exchange code (e.g. "I", "B", "HB")
	Pair        string   // Order book query symbol (e.g. "I-BTC_INR")
	Status      string   // "active", "inactive", ...
	MaxLeverage *float64 // Optional, nil when not offered
}

// Clone returns a deep copy.
func (m MarketDetail) Clone() MarketDetail {
	c := m
	if m.OrderTypes != nil {
		c.OrderTypes = append([]string(nil), m.OrderTypes...)
	}
	if m.MaxLeverage != nil {
		v := *m.MaxLeverage
		c.MaxLeverage = &v
	}
	return c
}

// -----------------------------------------------------------------------------
// Market Data
// -----------------------------------------------------------------------------

// Ticker is the latest 24h trading summary for a market.
// Decimal fields hold canonical decimal text, "" when the exchange omitted them.
type Ticker struct {
	Market       string // Primary key (e.g. "BTCINR")
	Change24Hour string
	High         string
	Low          string
	Volume       string
	LastPrice    string
	Bid          string
	Ask          string
	Timestamp    int64 // Exchange timestamp (seconds since epoch)
}

// Clone returns a copy. Ticker has no reference fields.
func (t Ticker) Clone() Ticker {
	return t
}

// OrderBook is the latest order book for a pair.
// Bids and Asks map price level text to quantity text and carry no ordering.
type OrderBook struct {
	Pair      string
	Bids      map[string]string
	Asks      map[string]string
	FetchedAt time.Time
}

// NewOrderBook returns an empty order book with non-nil sides.
func NewOrderBook(pair string) OrderBook {
	return OrderBook{
		Pair: pair,
		Bids: make(map[string]string),
		Asks: make(map[string]string),
	}
}

// Clone returns a deep copy.
func (o OrderBook) Clone() OrderBook {
	c := o
	c.Bids = cloneLevels(o.Bids)
	c.Asks = cloneLevels(o.Asks)
	return c
}

func cloneLevels(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
