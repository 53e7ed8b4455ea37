package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

var _ repo.MonitorStore = (*Store)(nil)
var _ repo.MonitorAdmin = (*Store)(nil)

// Schema is applied by EnsureSchema on startup.
const Schema = `
CREATE TABLE IF NOT EXISTS monitors (
  id               TEXT PRIMARY KEY,
  name             TEXT NOT NULL,
  url              TEXT NOT NULL,
  interval_seconds INTEGER NOT NULL DEFAULT 60,
  status           TEXT NOT NULL DEFAULT 'pending',
  last_checked_at  TIMESTAMPTZ NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_monitors_created_at ON monitors (created_at DESC);
`

const monitorColumns = `id, name, url, interval_seconds, status, last_checked_at, created_at`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	s.log.Info("postgres_schema_ready")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ---- MonitorStore ----

func (s *Store) List(ctx context.Context) ([]domain.Monitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+monitorColumns+`
		   FROM monitors
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	defer rows.Close()

	var out []domain.Monitor
	for rows.Next() {
		m, err := s.scanMonitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan monitor: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStatus(ctx context.Context, id domain.MonitorID, status domain.Status, checkedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE monitors SET status = $2, last_checked_at = $3 WHERE id = $1`,
		string(id), string(status), checkedAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ---- MonitorAdmin ----

func (s *Store) Get(ctx context.Context, id domain.MonitorID) (*domain.Monitor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+monitorColumns+` FROM monitors WHERE id = $1`, string(id))
	m, err := s.scanMonitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get monitor: %w", err)
	}
	return m, nil
}

func (s *Store) Create(ctx context.Context, m *domain.Monitor) error {
	if m.ID == "" {
		m.ID = domain.MonitorID(uuid.NewString())
	}
	if m.Status == "" {
		m.Status = domain.StatusPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO monitors (id, name, url, interval_seconds, status, last_checked_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(m.ID), m.Name, m.URL, m.IntervalSeconds, string(m.Status), m.LastCheckedAt, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert monitor: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, m *domain.Monitor) error {
	row := s.pool.QueryRow(ctx,
		`UPDATE monitors
		    SET name = $2, url = $3, interval_seconds = $4
		  WHERE id = $1
		RETURNING `+monitorColumns,
		string(m.ID), m.Name, m.URL, m.IntervalSeconds)
	got, err := s.scanMonitor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update monitor: %w", err)
	}
	*m = *got
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.MonitorID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM monitors WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete monitor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// scanMonitor reads one row. An unknown status is read as pending so a single
// bad row cannot stall listing.
func (s *Store) scanMonitor(row pgx.Row) (*domain.Monitor, error) {
	var (
		id, name, url, status string
		interval              int
		lastChecked           *time.Time
		createdAt             time.Time
	)
	if err := row.Scan(&id, &name, &url, &interval, &status, &lastChecked, &createdAt); err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		s.log.Warn("postgres_unknown_status",
			zap.String("monitor_id", id),
			zap.String("status", status),
		)
		st = domain.StatusPending
	}
	return &domain.Monitor{
		ID:              domain.MonitorID(id),
		Name:            name,
		URL:             url,
		IntervalSeconds: interval,
		Status:          st,
		LastCheckedAt:   lastChecked,
		CreatedAt:       createdAt,
	}, nil
}
