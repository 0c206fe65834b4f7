// Package verifier decides whether an officer's document check holds.
package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"coopreg/internal/application/models"
	"coopreg/pkg/platform/circuit"
)

const (
	KindManual = "manual"
	KindHTTP   = "http"
)

// Verifier checks one document against the officer's mark.
type Verifier interface {
	Verify(ctx context.Context, doc models.Document, check models.DocumentCheck) (bool, error)
}

// Manual trusts the officer's mark.
type Manual struct{}

func (Manual) Verify(_ context.Context, _ models.Document, check models.DocumentCheck) (bool, error) {
	return check.Verified, nil
}

// HTTP requires the officer's mark and a 2xx answer to HEAD on the document
// URL. Transport failures feed a breaker so an outage is logged once when it
// starts and once when it ends.
type HTTP struct {
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*HTTP)

func WithClient(c *http.Client) Option {
	return func(v *HTTP) {
		v.client = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(v *HTTP) {
		v.logger = l
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(v *HTTP) {
		v.breaker = b
	}
}

func NewHTTP(timeout time.Duration, opts ...Option) *HTTP {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	v := &HTTP{
		client:  &http.Client{Timeout: timeout},
		breaker: circuit.New("document-verifier"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *HTTP) Verify(ctx context.Context, doc models.Document, check models.DocumentCheck) (bool, error) {
	if !check.Verified {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, doc.URL, nil)
	if err != nil {
		return false, fmt.Errorf("build document request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		if _, change := v.breaker.RecordFailure(); change.Opened {
			v.logger.WarnContext(ctx, "document verifier circuit opened", "breaker", v.breaker.Name())
		}
		return false, fmt.Errorf("fetch document %s: %w", doc.ID, err)
	}
	defer resp.Body.Close()
	if _, change := v.breaker.RecordSuccess(); change.Closed {
		v.logger.InfoContext(ctx, "document verifier circuit closed", "breaker", v.breaker.Name())
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		v.logger.InfoContext(ctx, "document not reachable",
			"document_id", doc.ID.String(),
			"status", resp.StatusCode,
		)
	}
	return ok, nil
}

// New returns the verifier named by kind.
func New(kind string, timeout time.Duration, logger *slog.Logger) (Verifier, error) {
	switch kind {
	case "", KindManual:
		return Manual{}, nil
	case KindHTTP:
		return NewHTTP(timeout, WithLogger(logger)), nil
	default:
		return nil, fmt.Errorf("unknown document verifier %q", kind)
	}
}
