package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	audit "coopreg/pkg/platform/audit"
)

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Metrics receives relay outcomes. Nil is allowed.
type Metrics interface {
	AddOutboxPublished(n int)
	IncOutboxFailures()
}

// Pruner is implemented by outbox stores that can delete delivered rows.
type Pruner interface {
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker relays outbox events to a publisher on a fixed interval.
type Worker struct {
	relayer   audit.Relayer
	publisher audit.Publisher
	interval  time.Duration
	batchSize int
	retention time.Duration
	logger    *slog.Logger
	metrics   Metrics
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithRetention prunes delivered events older than d when the relayer is a Pruner.
func WithRetention(d time.Duration) Option {
	return func(w *Worker) {
		w.retention = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(relayer audit.Relayer, publisher audit.Publisher, opts ...Option) *Worker {
	w := &Worker{
		relayer:   relayer,
		publisher: publisher,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled. It returns nil on cancellation.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce drains full batches until the outbox is empty or a publish fails.
// It returns the number of events delivered.
func (w *Worker) RunOnce(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := w.relayer.Drain(ctx, w.batchSize, w.publisher.Publish)
		total += n
		if w.metrics != nil && n > 0 {
			w.metrics.AddOutboxPublished(n)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			if w.metrics != nil {
				w.metrics.IncOutboxFailures()
			}
			w.logger.WarnContext(ctx, "outbox relay failed", "error", err, "delivered", total)
			break
		}
		if n < w.batchSize {
			break
		}
	}
	w.prune(ctx)
	return total
}

func (w *Worker) prune(ctx context.Context) {
	if w.retention <= 0 || ctx.Err() != nil {
		return
	}
	p, ok := w.relayer.(Pruner)
	if !ok {
		return
	}
	if _, err := p.DeletePublishedBefore(ctx, time.Now().Add(-w.retention)); err != nil {
		w.logger.WarnContext(ctx, "outbox prune failed", "error", err)
	}
}
