package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
	"github.com/hamed0406/uptimemonitor/internal/state"
)

type Phase int32

const (
	Idle Phase = iota
	Running
)

func (p Phase) String() string {
	if p == Running {
		return "running"
	}
	return "idle"
}

// Scheduler re-checks every monitor on one global interval. The per-monitor
// IntervalSeconds is not consulted.
type Scheduler struct {
	Logger      *zap.Logger
	Monitors    repo.MonitorStore
	Checker     probe.Checker
	Tracker     *state.Tracker
	Dispatcher  *Dispatcher
	Clock       clockwork.Clock
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int

	phase atomic.Int32
}

func New(
	logger *zap.Logger,
	monitors repo.MonitorStore,
	checker probe.Checker,
	tracker *state.Tracker,
	dispatcher *Dispatcher,
	clock clockwork.Clock,
	interval time.Duration,
	timeout time.Duration,
	concurrency int,
) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		Logger:      logger,
		Monitors:    monitors,
		Checker:     checker,
		Tracker:     tracker,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Interval:    interval,
		Timeout:     timeout,
		Concurrency: concurrency,
	}
}

func (s *Scheduler) Phase() Phase { return Phase(s.phase.Load()) }

// Run does an immediate pass, then sleeps Interval between passes.
// Stops when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.Logger.Info("scheduler_started",
		zap.Duration("interval", s.Interval),
		zap.Duration("timeout", s.Timeout),
		zap.Int("concurrency", s.Concurrency),
	)
	for {
		s.RunOnce(ctx)
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler_stopped")
			return
		case <-s.Clock.After(s.Interval):
		}
	}
}

// RunOnce performs one full cycle over a snapshot of the monitor list.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.phase.Store(int32(Running))
	defer s.phase.Store(int32(Idle))

	start := s.Clock.Now()
	ms, err := s.Monitors.List(ctx)
	if err != nil {
		s.Logger.Warn("scheduler_list_error", zap.Error(err))
		return
	}

	ids := make([]domain.MonitorID, 0, len(ms))
	seen := make(map[domain.MonitorID]bool, len(ms))
	batch := make([]domain.Monitor, 0, len(ms))
	for _, m := range ms {
		if seen[m.ID] {
			s.Logger.Warn("scheduler_duplicate_monitor", zap.String("monitor_id", string(m.ID)))
			continue
		}
		seen[m.ID] = true
		ids = append(ids, m.ID)
		batch = append(batch, m)
	}
	s.Tracker.Retain(ids)

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup
	for _, m := range batch {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		m := m
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			s.process(ctx, m)
		}()
	}
	wg.Wait()

	s.Logger.Debug("scheduler_cycle_done",
		zap.Int("monitors", len(batch)),
		zap.Duration("took", s.Clock.Since(start)),
	)
}

// process runs check, detect, notify and persist for one monitor, in that order.
func (s *Scheduler) process(ctx context.Context, m domain.Monitor) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("scheduler_monitor_panic",
				zap.String("monitor_id", string(m.ID)),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, s.Timeout)
	out := s.Checker.Check(cctx, m.URL)
	cancel()
	if ctx.Err() != nil {
		// Shutdown interrupted the check; the result says nothing about the target.
		s.Logger.Debug("scheduler_check_aborted", zap.String("monitor_id", string(m.ID)))
		return
	}
	checkedAt := s.Clock.Now().UTC()

	if tr, ok := s.Tracker.Observe(m.ID, out.Status); ok {
		s.Dispatcher.Dispatch(ctx, m, tr)
	}

	if err := s.Monitors.UpdateStatus(ctx, m.ID, out.Status, checkedAt); err != nil {
		s.Logger.Warn("scheduler_update_error",
			zap.String("monitor_id", string(m.ID)),
			zap.String("url", m.URL),
			zap.Error(err),
		)
		return
	}
	s.Logger.Debug("scheduler_checked",
		zap.String("monitor_id", string(m.ID)),
		zap.String("url", m.URL),
		zap.String("status", string(out.Status)),
		zap.Int("http_status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Message),
	)
}
