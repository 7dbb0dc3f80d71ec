// Package stream implements the websocket push stream.
//
// The Hub:
//   - Upgrades /stream requests and tracks one subscriber per connection
//   - Broadcasts each ticker batch to every subscriber without blocking
//   - Evicts the oldest queued message for subscribers that fall behind
//   - Pings idle connections and drops those that stop answering
package stream
