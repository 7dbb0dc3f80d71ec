// Package store implements the in-memory market, ticker and order book tables.
//
// Each table owns its map behind a sync.RWMutex. Writes replace whole records
// for the given keys under one write lock; reads hand out deep copies. Stored
// records are never mutated in place, which lets copies be made outside the
// lock.
package store
