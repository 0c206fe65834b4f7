// Package service runs the registration workflow.
//
// Every operation follows the same order: resolve the actor from the request
// context, consult the role gate, normalize and validate input, then hand the
// status precondition and the mutation to the store's Execute so both run
// under the application lock.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coopreg/internal/application/models"
	"coopreg/internal/application/rolegate"
	"coopreg/internal/application/store"
	"coopreg/internal/application/verifier"
	"coopreg/pkg/attrs"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/platform/sentinel"
	"coopreg/pkg/requestcontext"
)

const defaultBulkConcurrency = 4

type Store interface {
	Create(ctx context.Context, app *models.Application, entry *models.StatusHistoryEntry) error
	FindByID(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]*models.Application, error)
	Execute(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID, change models.Change,
		validate store.ValidateFunc, mutate store.MutateFunc) (*models.Application, *models.StatusHistoryEntry, error)
	ListHistory(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.StatusHistoryEntry, error)
	AddCommunication(ctx context.Context, tenantID id.TenantID, c *models.Communication) error
	ListCommunications(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.Communication, error)
}

type DocumentVerifier interface {
	Verify(ctx context.Context, doc models.Document, check models.DocumentCheck) (bool, error)
}

type Metrics interface {
	ObserveTransition(action, outcome string, elapsed time.Duration)
}

// Service orchestrates the application workflow.
type Service struct {
	store           Store
	verifier        DocumentVerifier
	logger          *slog.Logger
	metrics         Metrics
	tracer          trace.Tracer
	bulkConcurrency int
}

type Option func(*Service)

func WithVerifier(v DocumentVerifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithBulkConcurrency bounds parallel assignments in BulkAssignToWorkflow.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

func New(st Store, opts ...Option) *Service {
	s := &Service{
		store:           st,
		verifier:        verifier.Manual{},
		logger:          slog.Default(),
		tracer:          otel.Tracer("coopreg/internal/application/service"),
		bulkConcurrency: defaultBulkConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actor is the authenticated caller of an operation.
type actor struct {
	userID   id.UserID
	role     id.Role
	tenantID id.TenantID
}

func actorFrom(ctx context.Context) (actor, error) {
	a := actor{
		userID:   requestcontext.ActorID(ctx),
		role:     requestcontext.Role(ctx),
		tenantID: requestcontext.TenantID(ctx),
	}
	if a.userID.IsNil() || a.tenantID.IsNil() {
		return actor{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return a, nil
}

// run wraps one operation with its span, the role gate and the transition metric.
func run[T any](ctx context.Context, s *Service, action models.Action, fn func(context.Context, actor) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "application."+action.String())
	defer span.End()
	start := time.Now()

	var zero T
	a, err := actorFrom(ctx)
	if err == nil {
		err = rolegate.Authorize(a.role, action)
	}
	if err != nil {
		s.finish(span, action, start, err)
		return zero, err
	}
	span.SetAttributes(
		attribute.String("actor.role", a.role.String()),
		attribute.String("tenant_id", a.tenantID.String()),
	)

	result, err := fn(ctx, a)
	s.finish(span, action, start, err)
	if err != nil {
		return zero, err
	}
	return result, nil
}

func (s *Service) finish(span trace.Span, action models.Action, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if s.metrics != nil {
		s.metrics.ObserveTransition(action.String(), outcome, time.Since(start))
	}
}

// transition executes a locked status change and emits the audit log.
func (s *Service) transition(
	ctx context.Context,
	a actor,
	appID id.ApplicationID,
	action models.Action,
	notes string,
	validate store.ValidateFunc,
	mutate store.MutateFunc,
) (*models.Application, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("application_id", appID.String()))
	change := models.Change{
		Action:  action,
		ActorID: a.userID,
		Notes:   notes,
		At:      requestcontext.Now(ctx),
	}
	app, entry, err := s.store.Execute(ctx, a.tenantID, appID, change, validate, mutate)
	if err != nil {
		return nil, s.wrapStoreErr(ctx, err, "failed to update application")
	}
	s.logAudit(ctx, "application_"+action.String(),
		"application_id", appID.String(),
		"from", entry.FromStatus.String(),
		"to", entry.ToStatus.String(),
		"actor_id", a.userID.String(),
		"tenant_id", a.tenantID.String(),
	)
	return app, nil
}

// wrapStoreErr translates store sentinels and passes domain errors through.
func (s *Service) wrapStoreErr(ctx context.Context, err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "application was modified concurrently")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		s.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if attrs.String(attributes, "application_id") != "" {
		trace.SpanFromContext(ctx).AddEvent(event, trace.WithAttributes(attrs.Span(attributes)...))
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
