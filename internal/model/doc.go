// Package model defines the data types shared by the parser, the stores and the
// HTTP layer.
//
// Conventions:
//   - Market keys are the exchange's canonical names (e.g. "BTCINR")
//   - Order books are keyed by the exchange's order book symbol (e.g. "I-BTC_INR")
//   - Decimal ticker and order book values are carried as text to avoid float rounding
//   - Clone methods return deep copies; stores never hand out shared maps or slices
package model
