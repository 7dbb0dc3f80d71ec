// Package api provides the CoinDCX public REST client.
//
// REST endpoints:
//   - https://api.coindcx.com/exchange/v1/markets_details
//   - https://api.coindcx.com/exchange/ticker
//   - https://public.coindcx.com/market_data/orderbook?pair=<pair>
//
// The client returns raw response bodies; decoding lives in package parser.
// Failed requests are retried (network errors, 5xx, 429) and surface as
// *TransportError.
package api
