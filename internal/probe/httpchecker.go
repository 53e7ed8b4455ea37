package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// drainLimit caps how much of a response body is read before closing so the
// connection can be reused without downloading large pages.
const drainLimit = 64 << 10

type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker returns a checker that issues one GET per check. Redirects
// are not followed: a 3xx response is reported as is and classified down.
func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Check never returns an error: every failure collapses to StatusDown.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Status: domain.StatusDown, Message: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{Status: domain.StatusDown, Message: err.Error(), LatencyMS: latency}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	status := domain.StatusDown
	if resp.StatusCode == http.StatusOK {
		status = domain.StatusUp
	}
	return CheckResult{
		Status:     status,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		LatencyMS:  latency,
	}
}
