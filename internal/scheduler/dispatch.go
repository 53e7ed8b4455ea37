package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/notify"
)

// Dispatcher turns transitions into notifications. Delivery is best effort:
// failures are logged and never returned to the cycle.
type Dispatcher struct {
	Logger    *zap.Logger
	Notifier  notify.Notifier
	Recipient string
	Timeout   time.Duration
}

func NewDispatcher(logger *zap.Logger, n notify.Notifier, recipient string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{Logger: logger, Notifier: n, Recipient: recipient, Timeout: timeout}
}

// Message renders the subject and body for a transition.
func Message(m domain.Monitor, tr domain.Transition) (subject, body string) {
	switch tr {
	case domain.BecameDown:
		return fmt.Sprintf("Monitor DOWN: %s", m.Name), fmt.Sprintf("%s is DOWN.", m.URL)
	case domain.BecameUp:
		return fmt.Sprintf("Monitor UP: %s", m.Name), fmt.Sprintf("%s is back UP.", m.URL)
	}
	return "", ""
}

func (d *Dispatcher) Dispatch(ctx context.Context, m domain.Monitor, tr domain.Transition) {
	subject, body := Message(m, tr)
	if subject == "" {
		return
	}

	sctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	if err := d.Notifier.Send(sctx, subject, body, d.Recipient); err != nil {
		d.Logger.Warn("notify_error",
			zap.String("monitor_id", string(m.ID)),
			zap.String("transition", string(tr)),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return
	}
	d.Logger.Info("notify_sent",
		zap.String("monitor_id", string(m.ID)),
		zap.String("transition", string(tr)),
		zap.String("recipient", d.Recipient),
	)
}
