package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Notifier interface {
	Send(ctx context.Context, subject, body, recipient string) error
}

// Multi delivers to every notifier and reports all failures together.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, subject, body, recipient string) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		err = multierr.Append(err, n.Send(ctx, subject, body, recipient))
	}
	return err
}

// Log writes notifications to the logger. It is the fallback when no
// delivery transport is configured.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, subject, body, recipient string) error {
	l.Logger.Info("notification",
		zap.String("subject", subject),
		zap.String("body", body),
		zap.String("recipient", recipient),
	)
	return nil
}
