package store

import (
	"sort"
	"sync"

	"github.com/rickgao/coindcx-tracker/internal/model"
)

// Store is a keyed in-memory table of records. Records are cloned on the way
// in and on the way out, so callers never hold a reference into the map.
type Store[V any] struct {
	mu    sync.RWMutex
	items map[string]V

	key   func(V) string
	clone func(V) V
}

// New creates an empty Store. key extracts the primary key of a record and
// clone returns a deep copy of it.
func New[V any](key func(V) string, clone func(V) V) *Store[V] {
	return &Store[V]{
		items: make(map[string]V),
		key:   key,
		clone: clone,
	}
}

// NewTickerStore returns a Store of tickers keyed by market name.
func NewTickerStore() *Store[model.Ticker] {
	return New(func(t model.Ticker) string { return t.Market }, model.Ticker.Clone)
}

// NewOrderBookStore returns a Store of order books keyed by pair.
func NewOrderBookStore() *Store[model.OrderBook] {
	return New(func(o model.OrderBook) string { return o.Pair }, model.OrderBook.Clone)
}

// Get returns a copy of the record stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	return s.clone(v), true
}

// Put replaces the record stored under the record's key.
func (s *Store[V]) Put(v V) {
	c := s.clone(v)
	k := s.key(c)

	s.mu.Lock()
	s.items[k] = c
	s.mu.Unlock()
}

// PutAll replaces the records for every key present in vs under a single
// write lock. Keys not present in vs are left untouched. When vs carries the
// same key more than once, the last record wins.
func (s *Store[V]) PutAll(vs []V) {
	if len(vs) == 0 {
		return
	}

	copies := make([]V, len(vs))
	keys := make([]string, len(vs))
	for i, v := range vs {
		copies[i] = s.clone(v)
		keys[i] = s.key(copies[i])
	}

	s.mu.Lock()
	for i, c := range copies {
		s.items[keys[i]] = c
	}
	s.mu.Unlock()
}

// List returns copies of all records ordered by key.
func (s *Store[V]) List() []V {
	s.mu.RLock()
	keys := sortedKeys(s.items)
	snapshot := make([]V, len(keys))
	for i, k := range keys {
		snapshot[i] = s.items[k]
	}
	s.mu.RUnlock()

	for i := range snapshot {
		snapshot[i] = s.clone(snapshot[i])
	}
	return snapshot
}

// Len returns the number of records.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
