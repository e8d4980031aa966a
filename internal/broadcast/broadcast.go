// Package broadcast publishes committed aggregates to real-time subscribers.
package broadcast

import (
	"context"
)

// Subjects of the published events, before the configured prefix.
const (
	SubjectTransactionNew     = "transactions.new"
	SubjectSpendNew           = "spends.new"
	SubjectRefundNew          = "refunds.new"
	SubjectWeekMetricsUpdated = "week-metrics.updated"
)

// Broadcaster delivers events best effort. A failed publish is never retried.
type Broadcaster interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

var _ Broadcaster = Noop{}

// Noop drops every event. It is used when no NATS server is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }
