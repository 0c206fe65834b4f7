package memory

import (
	"context"
	"sync"
	"time"

	audit "coopreg/pkg/platform/audit"
)

type entry struct {
	event       audit.Event
	publishedAt *time.Time
	attempts    int
	lastErr     string
}

// InMemoryStore is an outbox for single-process deployments and tests.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []*entry
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{event: event})
	return nil
}

// Drain publishes pending events in insertion order.
func (s *InMemoryStore) Drain(ctx context.Context, limit int, publish audit.PublishFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	published := 0
	for _, e := range s.entries {
		if published >= limit {
			break
		}
		if e.publishedAt != nil {
			continue
		}
		if err := publish(ctx, e.event); err != nil {
			e.attempts++
			e.lastErr = err.Error()
			return published, err
		}
		at := s.now()
		e.publishedAt = &at
		published++
	}
	return published, nil
}

// Pending returns unpublished events in insertion order.
func (s *InMemoryStore) Pending() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.entries {
		if e.publishedAt == nil {
			out = append(out, e.event)
		}
	}
	return out
}

// All returns every event ever appended.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.event)
	}
	return out
}
