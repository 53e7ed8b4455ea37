package domain

import (
	"fmt"
	"time"
)

type MonitorID string

// Status is the last known state of a monitor.
type Status string

const (
	StatusPending Status = "pending"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUp, StatusDown:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Monitor is an endpoint checked on every scheduler cycle.
//
// IntervalSeconds is stored and returned by the API but the scheduler runs
// every monitor on one global cadence.
type Monitor struct {
	ID              MonitorID  `json:"id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	IntervalSeconds int        `json:"interval_seconds"`
	Status          Status     `json:"status"`
	LastCheckedAt   *time.Time `json:"last_checked_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Transition is a change in observed status between two consecutive checks.
type Transition string

const (
	BecameDown Transition = "became-down"
	BecameUp   Transition = "became-up"
)
