package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

type Store struct {
	mu       sync.RWMutex
	monitors map[domain.MonitorID]*domain.Monitor
}

func New() *Store {
	return &Store{
		monitors: make(map[domain.MonitorID]*domain.Monitor),
	}
}

func (m *Store) Create(ctx context.Context, mon *domain.Monitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mon.ID == "" {
		mon.ID = domain.MonitorID(uuid.NewString())
	}
	if mon.Status == "" {
		mon.Status = domain.StatusPending
	}
	if mon.CreatedAt.IsZero() {
		mon.CreatedAt = time.Now().UTC()
	}
	m.monitors[mon.ID] = clone(mon)
	return nil
}

func (m *Store) Get(ctx context.Context, id domain.MonitorID) (*domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, ok := m.monitors[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(cur), nil
}

// List returns copies ordered newest first.
func (m *Store) List(ctx context.Context) ([]domain.Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Monitor, 0, len(m.monitors))
	for _, mon := range m.monitors {
		out = append(out, *clone(mon))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Store) Update(ctx context.Context, mon *domain.Monitor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.monitors[mon.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name = mon.Name
	cur.URL = mon.URL
	cur.IntervalSeconds = mon.IntervalSeconds
	*mon = *clone(cur)
	return nil
}

func (m *Store) Delete(ctx context.Context, id domain.MonitorID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.monitors[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.monitors, id)
	return nil
}

func (m *Store) UpdateStatus(ctx context.Context, id domain.MonitorID, status domain.Status, checkedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.monitors[id]
	if !ok {
		return repo.ErrNotFound
	}
	ts := checkedAt
	cur.Status = status
	cur.LastCheckedAt = &ts
	return nil
}

func (m *Store) Ping(ctx context.Context) error { return nil }

func clone(mon *domain.Monitor) *domain.Monitor {
	cp := *mon
	if mon.LastCheckedAt != nil {
		ts := *mon.LastCheckedAt
		cp.LastCheckedAt = &ts
	}
	return &cp
}
