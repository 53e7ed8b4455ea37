package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

var ErrNotFound = errors.New("monitor not found")

// MonitorStore is what the scheduler needs: a point-in-time listing and a
// status write-back.
type MonitorStore interface {
	List(ctx context.Context) ([]domain.Monitor, error)
	// UpdateStatus is an idempotent upsert of status and last-checked time.
	// It returns ErrNotFound when the monitor was deleted meanwhile.
	UpdateStatus(ctx context.Context, id domain.MonitorID, status domain.Status, checkedAt time.Time) error
}

// MonitorAdmin backs the CRUD surface.
type MonitorAdmin interface {
	MonitorStore
	Get(ctx context.Context, id domain.MonitorID) (*domain.Monitor, error)
	// Create assigns ID, Status and CreatedAt when they are empty.
	Create(ctx context.Context, m *domain.Monitor) error
	// Update replaces name, url and interval; status fields are kept.
	Update(ctx context.Context, m *domain.Monitor) error
	Delete(ctx context.Context, id domain.MonitorID) error
	Ping(ctx context.Context) error
}
