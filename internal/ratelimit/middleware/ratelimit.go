package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"coopreg/internal/ratelimit/models"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/platform/httputil"
	"coopreg/pkg/requestcontext"
)

// Limiter records one request against a key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

// Checker is the decision source used by the middleware.
type Checker interface {
	Check(ctx context.Context, key string, limit models.Limit) (*models.Result, bool, error)
}

// Metrics counts refused requests. Nil is allowed.
type Metrics interface {
	IncRateLimited(class string)
}

type Middleware struct {
	checker  Checker
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  Metrics
	disabled bool
}

type Option func(*Middleware)

func WithLimit(class models.Class, limit models.Limit) Option {
	return func(m *Middleware) {
		m.limits[class] = limit
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(checker Checker, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		checker: checker,
		limits:  make(map[models.Class]models.Limit),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.disabled {
		m.logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit applies the budget of class to the authenticated actor, or to the
// client address for anonymous requests. Reads and writes are budgeted apart.
func (m *Middleware) RateLimit(class models.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, ok := m.limits[class]
			if m.disabled || !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := keyFor(ctx, class)
			result, degraded, err := m.checker.Check(ctx, key, limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addHeaders(w, result, degraded)
			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncRateLimited(string(class))
				}
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ByMethod budgets safe methods as reads and everything else as writes.
func (m *Middleware) ByMethod() func(http.Handler) http.Handler {
	read := m.RateLimit(models.ClassRead)
	write := m.RateLimit(models.ClassWrite)
	return func(next http.Handler) http.Handler {
		readNext, writeNext := read(next), write(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				readNext.ServeHTTP(w, r)
			default:
				writeNext.ServeHTTP(w, r)
			}
		})
	}
}

func keyFor(ctx context.Context, class models.Class) string {
	if actor := requestcontext.ActorID(ctx); !actor.IsNil() {
		return models.ActorKey(requestcontext.TenantID(ctx).String(), actor.String(), class)
	}
	return models.IPKey(requestcontext.ClientIP(ctx), class)
}

func addHeaders(w http.ResponseWriter, result *models.Result, degraded bool) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}
