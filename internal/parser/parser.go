package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rickgao/coindcx-tracker/internal/model"
)

// ParseMarketDetails decodes the markets_details document. Every record must
// carry all required fields with the expected types; one bad record fails the
// whole batch.
func ParseMarketDetails(body []byte) ([]model.MarketDetail, error) {
	var items []object
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, documentError(KindMarketDetails, err)
	}
	if items == nil {
		return nil, documentError(KindMarketDetails, errors.New("document is null"))
	}

	details := make([]model.MarketDetail, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, &DecodeError{Kind: KindMarketDetails, Index: i, Err: errors.New("record is null")}
		}
		d, err := parseMarketDetail(item)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Index = i
				return nil, de
			}
			return nil, &DecodeError{Kind: KindMarketDetails, Index: i, Err: err}
		}
		details = append(details, d)
	}

	return details, nil
}

func parseMarketDetail(o object) (model.MarketDetail, error) {
	var (
		d   model.MarketDetail
		err error
	)

	fail := func(field string, err error) (model.MarketDetail, error) {
		return model.MarketDetail{}, &DecodeError{Kind: KindMarketDetails, Field: field, Err: err}
	}

	strFields := []struct {
		name string
		dst  *string
	}{
		{"coindcx_name", &d.Name},
		{"base_currency_short_name", &d.BaseCurrencyShortName},
		{"target_currency_short_name", &d.TargetCurrencyShortName},
		{"base_currency_name", &d.BaseCurrencyName},
		{"target_currency_name", &d.TargetCurrencyName},
		{"symbol", &d.Symbol},
		{"ecode", &d.ECode},
		{"pair", &d.Pair},
		{"status", &d.Status},
	}
	for _, f := range strFields {
		if *f.dst, err = o.str(f.name); err != nil {
			return fail(f.name, err)
		}
	}
	if d.Name == "" {
		return fail("coindcx_name", errors.New("empty market name"))
	}

	numFields := []struct {
		name string
		dst  *float64
	}{
		{"min_quantity", &d.MinQuantity},
		{"max_quantity", &d.MaxQuantity},
		{"min_price", &d.MinPrice},
		{"max_price", &d.MaxPrice},
		{"min_notional", &d.MinNotional},
		{"step", &d.Step},
	}
	for _, f := range numFields {
		if *f.dst, err = o.float(f.name); err != nil {
			return fail(f.name, err)
		}
	}

	if d.BaseCurrencyPrecision, err = o.integer("base_currency_precision"); err != nil {
		return fail("base_currency_precision", err)
	}
	if d.TargetCurrencyPrecision, err = o.integer("target_currency_precision"); err != nil {
		return fail("target_currency_precision", err)
	}
	if d.OrderTypes, err = o.stringSlice("order_types"); err != nil {
		return fail("order_types", err)
	}

	// Optional; only margin-enabled markets carry it.
	if v, ok := o["max_leverage"]; ok && !isNull(v) {
		if text := decimalText(v); text != "" {
			if lev, err := strconv.ParseFloat(text, 64); err == nil {
				d.MaxLeverage = &lev
			}
		}
	}

	return d, nil
}

// ParseTickers decodes the ticker document. Decimal fields may be numbers or
// strings and are normalized to canonical text. Records that are not objects
// or carry no market name are dropped.
func ParseTickers(body []byte) ([]model.Ticker, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, documentError(KindTicker, err)
	}
	if items == nil {
		return nil, documentError(KindTicker, errors.New("document is null"))
	}

	tickers := make([]model.Ticker, 0, len(items))
	for _, raw := range items {
		var o object
		if err := json.Unmarshal(raw, &o); err != nil || o == nil {
			continue
		}

		market, err := o.str("market")
		if err != nil || market == "" {
			continue
		}

		t := model.Ticker{
			Market:       market,
			Change24Hour: decimalText(o["change_24_hour"]),
			High:         decimalText(o["high"]),
			Low:          decimalText(o["low"]),
			Volume:       decimalText(o["volume"]),
			LastPrice:    decimalText(o["last_price"]),
			Bid:          decimalText(o["bid"]),
			Ask:          decimalText(o["ask"]),
		}
		if ts, ok := integerValue(o["timestamp"]); ok {
			t.Timestamp = ts
		}

		tickers = append(tickers, t)
	}

	return tickers, nil
}

// ParseOrderBook decodes an order book document for pair. A missing side is
// an empty map. A malformed document yields an empty book and a *DecodeError.
func ParseOrderBook(pair string, body []byte) (model.OrderBook, error) {
	book := model.NewOrderBook(pair)
	book.FetchedAt = time.Now()

	var o object
	if err := json.Unmarshal(body, &o); err != nil {
		return book, documentError(KindOrderBook, err)
	}
	if o == nil {
		return book, documentError(KindOrderBook, errors.New("document is null"))
	}

	bids, err := parseLevels(o["bids"])
	if err != nil {
		return book, &DecodeError{Kind: KindOrderBook, Index: -1, Field: "bids", Err: err}
	}
	asks, err := parseLevels(o["asks"])
	if err != nil {
		return book, &DecodeError{Kind: KindOrderBook, Index: -1, Field: "asks", Err: err}
	}

	book.Bids = bids
	book.Asks = asks
	return book, nil
}

// parseLevels decodes one price->quantity side. Absent or non-object sides
// are treated as empty.
func parseLevels(v json.RawMessage) (map[string]string, error) {
	levels := make(map[string]string)
	if len(v) == 0 || jsonType(v) != "object" {
		return levels, nil
	}

	var side object
	if err := json.Unmarshal(v, &side); err != nil {
		return nil, err
	}

	for price, qty := range side {
		switch jsonType(qty) {
		case "string", "number":
			levels[price] = decimalText(qty)
		default:
			return nil, fmt.Errorf("%w: level %s: want string or number, got %s", ErrWrongType, price, jsonType(qty))
		}
	}
	return levels, nil
}
