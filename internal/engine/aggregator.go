package engine

import (
	"sync"

	"github.com/dkorolev/flatgrep/pkg/types"
)

// aggregator collects match records from concurrent file scans under a
// single global cap. The lock is held only to append; callers never hold
// it across file I/O.
type aggregator struct {
	mu      sync.Mutex
	records []types.MatchRecord
	limit   int
	full    bool
}

func newAggregator(limit int) *aggregator {
	return &aggregator{limit: limit}
}

// Add appends records until the cap is hit and reports how many were
// accepted. Records past the cap are discarded.
func (a *aggregator) Add(records []types.MatchRecord) int {
	if len(records) == 0 {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.full {
		return 0
	}
	room := a.limit - len(a.records)
	if room <= 0 {
		a.full = true
		return 0
	}
	n := len(records)
	if n > room {
		n = room
	}
	a.records = append(a.records, records[:n]...)
	if len(a.records) >= a.limit {
		a.full = true
	}
	return n
}

// Full reports whether the cap has been reached. Workers use it to skip
// scanning files whose results would be discarded anyway.
func (a *aggregator) Full() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.full
}

// Results returns the collected records. Call only after all writers are
// done.
func (a *aggregator) Results() []types.MatchRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}
