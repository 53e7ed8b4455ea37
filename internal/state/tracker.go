package state

import (
	"sync"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Tracker remembers the most recent observed status of every monitor and
// reports when it changes. It lives for the process lifetime only, so the
// first observation after a restart has no baseline.
type Tracker struct {
	mu   sync.Mutex
	last map[domain.MonitorID]domain.Status
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[domain.MonitorID]domain.Status)}
}

// Observe records status for id and returns the transition it caused, if any.
//
// A first-ever down observation alerts, a first-ever up observation does not:
// recovery is only reported when the previous status was down.
func (t *Tracker) Observe(id domain.MonitorID, status domain.Status) (domain.Transition, bool) {
	if status != domain.StatusUp && status != domain.StatusDown {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.last[id]
	t.last[id] = status

	switch {
	case status == domain.StatusDown && (!seen || prev == domain.StatusUp):
		return domain.BecameDown, true
	case status == domain.StatusUp && seen && prev == domain.StatusDown:
		return domain.BecameUp, true
	}
	return "", false
}

// Last returns the most recent observation for id.
func (t *Tracker) Last(id domain.MonitorID) (domain.Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.last[id]
	return s, ok
}

// Retain drops every entry whose id is not in ids.
func (t *Tracker) Retain(ids []domain.MonitorID) {
	keep := make(map[domain.MonitorID]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.last {
		if _, ok := keep[id]; !ok {
			delete(t.last, id)
		}
	}
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}
