// Package audit carries domain events from the business transaction to
// downstream consumers through a transactional outbox.
//
// Domain stores Append events in the same unit of work as the state change
// they describe. A relay worker later drains unpublished events to a
// Publisher (Kafka or the log), so a committed change always produces exactly
// one pending event and a rolled back change produces none.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one outbox record. Payload is the JSON body delivered to consumers.
type Event struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	TenantID      string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// NewEvent stamps a fresh id on an event.
func NewEvent(aggregateType, aggregateID, tenantID, eventType string, payload []byte, now time.Time) Event {
	return Event{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		TenantID:      tenantID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	}
}

// Outbox accepts events inside the caller's unit of work.
// Postgres implementations join the transaction carried in ctx.
type Outbox interface {
	Append(ctx context.Context, event Event) error
}

// PublishFunc delivers one event downstream.
type PublishFunc func(ctx context.Context, event Event) error

// Relayer hands pending events to publish, oldest first, and marks the ones
// that were delivered. Draining stops at the first publish failure so that
// per-aggregate ordering is preserved.
type Relayer interface {
	Drain(ctx context.Context, limit int, publish PublishFunc) (int, error)
}

// Publisher is a downstream sink for outbox events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
