package models

import (
	"time"

	dErrors "coopreg/pkg/domain-errors"
)

// Class groups endpoints that share a request budget.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

func (c Class) IsValid() bool {
	return c == ClassRead || c == ClassWrite
}

// Limit is a request budget over a window.
type Limit struct {
	Requests int
	Window   time.Duration
}

func NewLimit(requests int, window time.Duration) (Limit, error) {
	if requests <= 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvariantViolation, "limit requests must be positive")
	}
	if window <= 0 {
		return Limit{}, dErrors.New(dErrors.CodeInvariantViolation, "limit window must be positive")
	}
	return Limit{Requests: requests, Window: window}, nil
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when the request is refused.
	RetryAfter int
}

// WithRetryAfter fills RetryAfter from ResetAt for a refused result.
func (r *Result) WithRetryAfter(now time.Time) *Result {
	if r.Allowed {
		return r
	}
	secs := int(r.ResetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	r.RetryAfter = secs
	return r
}
