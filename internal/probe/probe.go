package probe

import (
	"context"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// CheckResult is the outcome of a single probe.
//
// Fields:
//   - Status: StatusUp or StatusDown, never StatusPending.
//   - StatusCode: HTTP status code when a response arrived; 0 for transport errors.
//   - Message: response status line or the transport error text.
type CheckResult struct {
	Status     domain.Status
	StatusCode int
	LatencyMS  float64
	Message    string
}

func (r CheckResult) Up() bool { return r.Status == domain.StatusUp }

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
