package middleware

import (
	"context"
	"log/slog"

	"coopreg/internal/ratelimit/models"
	"coopreg/pkg/platform/circuit"
)

// ResilientLimiter serves from the primary limiter and switches to the
// in-process fallback while the breaker is open. Responses served by the
// fallback are reported as degraded.
type ResilientLimiter struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewResilientLimiter(primary, fallback Limiter, breaker *circuit.Breaker, logger *slog.Logger) *ResilientLimiter {
	if breaker == nil {
		breaker = circuit.New("ratelimit")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResilientLimiter{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

// Check returns the limiter decision and whether it came from the fallback.
func (l *ResilientLimiter) Check(ctx context.Context, key string, limit models.Limit) (*models.Result, bool, error) {
	res, err := l.primary.Allow(ctx, key, limit)
	if err != nil {
		useFallback, change := l.breaker.RecordFailure()
		if change.Opened {
			l.logger.WarnContext(ctx, "rate limit circuit opened", "breaker", l.breaker.Name(), "error", err)
		}
		if !useFallback {
			return nil, false, err
		}
		return l.fromFallback(ctx, key, limit)
	}

	usePrimary, change := l.breaker.RecordSuccess()
	if change.Closed {
		l.logger.InfoContext(ctx, "rate limit circuit closed", "breaker", l.breaker.Name())
	}
	if !usePrimary {
		return l.fromFallback(ctx, key, limit)
	}
	return res, false, nil
}

func (l *ResilientLimiter) fromFallback(ctx context.Context, key string, limit models.Limit) (*models.Result, bool, error) {
	res, err := l.fallback.Allow(ctx, key, limit)
	return res, true, err
}
