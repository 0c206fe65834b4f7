package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "coopreg/pkg/platform/audit"
	"coopreg/pkg/platform/audit/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
	fail   error
}

func (p *recordingPublisher) Publish(_ context.Context, e audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type countingMetrics struct {
	published int
	failures  int
}

func (m *countingMetrics) AddOutboxPublished(n int) { m.published += n }
func (m *countingMetrics) IncOutboxFailures()       { m.failures++ }

func seed(t *testing.T, store *memory.InMemoryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		e := audit.NewEvent("application", "a", "t", "application.status_changed", []byte(`{}`), time.Now())
		require.NoError(t, store.Append(context.Background(), e))
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce(t *testing.T) {
	t.Run("drains across batches", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		seed(t, store, 5)
		pub := &recordingPublisher{}
		m := &countingMetrics{}
		w := NewWorker(store, pub, WithBatchSize(2), WithLogger(quietLogger()), WithMetrics(m))

		assert.Equal(t, 5, w.RunOnce(context.Background()))
		assert.Equal(t, 5, pub.count())
		assert.Equal(t, 5, m.published)
		assert.Empty(t, store.Pending())
	})

	t.Run("failure leaves events pending", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		seed(t, store, 3)
		pub := &recordingPublisher{fail: errors.New("no brokers")}
		m := &countingMetrics{}
		w := NewWorker(store, pub, WithLogger(quietLogger()), WithMetrics(m))

		assert.Equal(t, 0, w.RunOnce(context.Background()))
		assert.Len(t, store.Pending(), 3)
		assert.Equal(t, 1, m.failures)

		pub.fail = nil
		assert.Equal(t, 3, w.RunOnce(context.Background()))
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.NewInMemoryStore()
	seed(t, store, 1)
	pub := &recordingPublisher{}
	w := NewWorker(store, pub, WithInterval(10*time.Millisecond), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
