package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"coopreg/internal/application/models"
	dErrors "coopreg/pkg/domain-errors"
)

// BulkAssignToWorkflow assigns the same officer to many applications. Each id
// runs in its own unit of work; the call only fails as a whole on the role
// gate or on invalid shared fields. Results follow input order.
func (s *Service) BulkAssignToWorkflow(ctx context.Context, req *models.BulkAssignRequest) ([]models.BulkAssignResult, error) {
	return run(ctx, s, models.ActionBulkAssign, func(ctx context.Context, a actor) ([]models.BulkAssignResult, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("bulk.size", len(req.ApplicationIDs)))

		results := make([]models.BulkAssignResult, len(req.ApplicationIDs))
		// Per-id failures land in results; the group only bounds concurrency.
		var g errgroup.Group
		g.SetLimit(s.bulkConcurrency)
		for i, appID := range req.ApplicationIDs {
			results[i].ApplicationID = appID
			g.Go(func() error {
				if appID.IsNil() {
					results[i].Error = &models.ResultError{Code: string(dErrors.CodeValidation), Message: "application id is required"}
					return nil
				}
				app, err := s.assign(ctx, a, appID, req.OfficerID, req.Role)
				if err != nil {
					results[i].Error = resultError(err)
					return nil
				}
				results[i].Application = app
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		succeeded := 0
		for _, r := range results {
			if r.Succeeded() {
				succeeded++
			}
		}
		s.logger.InfoContext(ctx, "bulk assignment finished",
			"requested", len(results),
			"succeeded", succeeded,
			"role", string(req.Role),
		)
		return results, nil
	})
}

func resultError(err error) *models.ResultError {
	code := dErrors.CodeOf(err)
	msg := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal {
		msg = "internal error"
	}
	return &models.ResultError{Code: string(code), Message: msg}
}
