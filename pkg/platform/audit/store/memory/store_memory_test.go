package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "coopreg/pkg/platform/audit"
)

type OutboxMemorySuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestOutboxMemorySuite(t *testing.T) {
	suite.Run(t, new(OutboxMemorySuite))
}

func (s *OutboxMemorySuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *OutboxMemorySuite) appendN(n int) []audit.Event {
	var events []audit.Event
	for i := 0; i < n; i++ {
		e := audit.NewEvent("application", "app", "tenant", "application.status_changed", []byte(`{}`), time.Now())
		s.Require().NoError(s.store.Append(s.ctx, e))
		events = append(events, e)
	}
	return events
}

func (s *OutboxMemorySuite) TestDrain() {
	s.Run("publishes in insertion order and respects limit", func() {
		events := s.appendN(3)
		var seen []audit.Event
		n, err := s.store.Drain(s.ctx, 2, func(_ context.Context, e audit.Event) error {
			seen = append(seen, e)
			return nil
		})
		s.Require().NoError(err)
		s.Equal(2, n)
		s.Equal(events[:2], seen)
		s.Equal(events[2:], s.store.Pending())
	})

	s.Run("stops at first failure and keeps the event pending", func() {
		s.SetupTest()
		events := s.appendN(2)
		boom := errors.New("broker down")
		n, err := s.store.Drain(s.ctx, 10, func(_ context.Context, e audit.Event) error {
			if e.ID == events[0].ID {
				return boom
			}
			return nil
		})
		s.ErrorIs(err, boom)
		s.Equal(0, n)
		s.Len(s.store.Pending(), 2)
	})

	s.Run("published events are not redelivered", func() {
		s.SetupTest()
		s.appendN(1)
		calls := 0
		publish := func(context.Context, audit.Event) error { calls++; return nil }
		_, _ = s.store.Drain(s.ctx, 10, publish)
		_, _ = s.store.Drain(s.ctx, 10, publish)
		s.Equal(1, calls)
		s.Len(s.store.All(), 1)
	})
}
