package store

import (
	"sync"

	"github.com/rickgao/coindcx-tracker/internal/model"
)

// MarketStore holds market details together with the name to pair index.
// Both are replaced in the same critical section, so a reader that sees a
// pair for a name also sees the detail it was derived from.
type MarketStore struct {
	mu sync.RWMutex

	// All known markets indexed by coindcx name.
	details map[string]model.MarketDetail

	// coindcx name -> order book pair symbol.
	pairs map[string]string
}

// NewMarketStore creates an empty MarketStore.
func NewMarketStore() *MarketStore {
	return &MarketStore{
		details: make(map[string]model.MarketDetail),
		pairs:   make(map[string]string),
	}
}

// Get returns a copy of the market detail for name.
func (s *MarketStore) Get(name string) (model.MarketDetail, bool) {
	s.mu.RLock()
	d, ok := s.details[name]
	s.mu.RUnlock()

	if !ok {
		return model.MarketDetail{}, false
	}
	return d.Clone(), true
}

// Pair returns the order book pair symbol for name.
func (s *MarketStore) Pair(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pairs[name]
	return p, ok
}

// PutAll replaces the details and pair index entries for every market in
// details. Markets not present are kept.
func (s *MarketStore) PutAll(details []model.MarketDetail) {
	if len(details) == 0 {
		return
	}

	copies := make([]model.MarketDetail, len(details))
	for i, d := range details {
		copies[i] = d.Clone()
	}

	s.mu.Lock()
	for _, d := range copies {
		s.details[d.Name] = d
		s.pairs[d.Name] = d.Pair
	}
	s.mu.Unlock()
}

// List returns copies of all market details ordered by name.
func (s *MarketStore) List() []model.MarketDetail {
	s.mu.RLock()
	names := sortedKeys(s.details)
	result := make([]model.MarketDetail, len(names))
	for i, n := range names {
		result[i] = s.details[n]
	}
	s.mu.RUnlock()

	for i := range result {
		result[i] = result[i].Clone()
	}
	return result
}

// Names returns every indexed market name in ascending order.
func (s *MarketStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedKeys(s.pairs)
}

// Len returns the number of markets.
func (s *MarketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.details)
}
