package refresh

import "time"

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateUpdating
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateUpdating:
		return "updating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats summarizes refresh activity.
type Stats struct {
	Cycles            uint64
	MarketFailures    uint64
	TickerFailures    uint64
	OrderBookFetches  uint64
	OrderBookFailures uint64

	LastMarketSuccess time.Time
	LastTickerSuccess time.Time
	LastCycleID       string
}

// Stats returns a copy of the current counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	return e.stats
}

func (e *Engine) recordCycle(cycleID string, detailErr, tickerErr error) {
	now := time.Now()

	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	e.stats.Cycles++
	e.stats.LastCycleID = cycleID
	if detailErr != nil {
		e.stats.MarketFailures++
	} else {
		e.stats.LastMarketSuccess = now
	}
	if tickerErr != nil {
		e.stats.TickerFailures++
	} else {
		e.stats.LastTickerSuccess = now
	}
}

func (e *Engine) recordOrderBook(err error) {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()

	e.stats.OrderBookFetches++
	if err != nil {
		e.stats.OrderBookFailures++
	}
}
