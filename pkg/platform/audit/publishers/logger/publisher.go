// Package logger publishes outbox events as structured log lines. It is the
// sink used when no Kafka brokers are configured.
package logger

import (
	"context"
	"log/slog"

	audit "coopreg/pkg/platform/audit"
)

type Publisher struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, event audit.Event) error {
	p.logger.InfoContext(ctx, "domain event",
		"event_id", event.ID.String(),
		"event_type", event.EventType,
		"aggregate_type", event.AggregateType,
		"aggregate_id", event.AggregateID,
		"tenant_id", event.TenantID,
		"payload", string(event.Payload),
	)
	return nil
}

func (p *Publisher) Close() error { return nil }
