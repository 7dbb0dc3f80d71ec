// Package parser turns raw exchange response bodies into model records.
//
// Tolerance differs by record kind:
//   - Market details: strict. One invalid record fails the whole batch.
//   - Tickers: field tolerant. Numbers and numeric strings normalize to the
//     same canonical decimal text; records without a market name are dropped.
//   - Order books: a missing side is empty; a malformed document yields an
//     empty book together with a *DecodeError.
package parser
