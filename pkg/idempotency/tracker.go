// Package idempotency records which orders have already had stock
// decremented. The record lives only for the lifetime of the process; a
// restart clears it, so the guarantee is at-most-once per process, not
// at-most-once ever.
package idempotency

import "sync"

type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Seen reports whether orderID has been marked. Seen followed by Mark is not
// one atomic step: two callers can both observe false before either marks.
// That window is an accepted residual risk, not a lock.
func (t *Tracker) Seen(orderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[orderID]
	return ok
}

func (t *Tracker) Mark(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen[orderID] = struct{}{}
}
