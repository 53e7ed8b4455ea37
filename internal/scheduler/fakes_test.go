package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// --- fakes ---

type statusWrite struct {
	ID        domain.MonitorID
	Status    domain.Status
	CheckedAt time.Time
}

type fakeStore struct {
	mu       sync.Mutex
	monitors []domain.Monitor
	listErr  error
	failIDs  map[domain.MonitorID]bool
	lists    int
	writes   []statusWrite
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Monitor(nil), f.monitors...), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id domain.MonitorID, status domain.Status, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("db unavailable")
	}
	f.writes = append(f.writes, statusWrite{ID: id, Status: status, CheckedAt: checkedAt})
	return nil
}

func (f *fakeStore) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeStore) statusOf(id domain.MonitorID) []domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Status
	for _, w := range f.writes {
		if w.ID == id {
			out = append(out, w.Status)
		}
	}
	return out
}

var _ repo.MonitorStore = (*fakeStore)(nil)

// fakeChecker returns a scripted result per URL.
type fakeChecker struct {
	mu     sync.Mutex
	byURL  map[string]probe.CheckResult
	panics map[string]bool
	calls  []string

	// hold makes Check for that URL signal started and then wait for ctx.
	hold    map[string]bool
	started chan string
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{
		byURL:   map[string]probe.CheckResult{},
		panics:  map[string]bool{},
		hold:    map[string]bool{},
		started: make(chan string, 16),
	}
}

func (f *fakeChecker) set(url string, status domain.Status, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byURL[url] = probe.CheckResult{Status: status, StatusCode: code}
}

func (f *fakeChecker) Check(ctx context.Context, target string) probe.CheckResult {
	f.mu.Lock()
	f.calls = append(f.calls, target)
	out, ok := f.byURL[target]
	boom := f.panics[target]
	held := f.hold[target]
	f.mu.Unlock()
	if boom {
		panic("checker exploded")
	}
	if held {
		f.started <- target
		<-ctx.Done()
		return probe.CheckResult{Status: domain.StatusDown, Message: ctx.Err().Error()}
	}
	if !ok {
		return probe.CheckResult{Status: domain.StatusDown, Message: "connection refused"}
	}
	return out
}

type sent struct {
	Subject, Body, Recipient string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sent
	failFor map[string]bool // by subject
}

func (f *fakeNotifier) Send(ctx context.Context, subject, body, recipient string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[subject] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, sent{subject, body, recipient})
	return nil
}

func (f *fakeNotifier) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Subject)
	}
	return out
}
