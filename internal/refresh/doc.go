// Package refresh implements the Refresh Engine.
//
// The engine:
//   - Refreshes market details and tickers on a fixed interval
//   - Fetches the two documents concurrently; each half succeeds or fails alone
//   - Keeps the previous cache when a fetch or parse fails
//   - Fetches order books on demand, coalescing concurrent requests per pair
//   - Moves Idle -> Fetching -> Updating -> Idle, with Stopped terminal
package refresh
