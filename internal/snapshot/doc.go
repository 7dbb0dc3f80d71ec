// Package snapshot joins the market, ticker and order book stores into the
// per-market view served to clients.
package snapshot
