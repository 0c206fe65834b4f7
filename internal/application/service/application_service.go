package service

import (
	"context"

	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/requestcontext"
)

// Create submits a new application owned by the calling applicant.
func (s *Service) Create(ctx context.Context, req *models.CreateApplicationRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionCreate, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		app, err := models.NewApplication(a.tenantID, a.userID, req, now)
		if err != nil {
			return nil, err
		}
		entry := models.NewHistoryEntry(app.ID, "", app.Status, models.Change{
			Action:  models.ActionCreate,
			ActorID: a.userID,
			At:      now,
		})
		if err := s.store.Create(ctx, app, entry); err != nil {
			return nil, s.wrapStoreErr(ctx, err, "failed to create application")
		}
		s.logAudit(ctx, "application_create",
			"application_id", app.ID.String(),
			"to", app.Status.String(),
			"actor_id", a.userID.String(),
			"tenant_id", a.tenantID.String(),
		)
		return app, nil
	})
}

// Get returns one application. Applicants only see their own.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	return run(ctx, s, models.ActionView, func(ctx context.Context, a actor) (*models.Application, error) {
		return s.load(ctx, a, appID)
	})
}

// List returns applications in the caller's tenant, optionally by status.
func (s *Service) List(ctx context.Context, status models.Status) ([]*models.Application, error) {
	return run(ctx, s, models.ActionList, func(ctx context.Context, a actor) ([]*models.Application, error) {
		if status != "" && !status.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown status "+string(status))
		}
		apps, err := s.store.List(ctx, a.tenantID, models.ListFilter{Status: status})
		if err != nil {
			return nil, s.wrapStoreErr(ctx, err, "failed to list applications")
		}
		return apps, nil
	})
}

// History returns the status history in insertion order.
func (s *Service) History(ctx context.Context, appID id.ApplicationID) ([]*models.StatusHistoryEntry, error) {
	return run(ctx, s, models.ActionViewHistory, func(ctx context.Context, a actor) ([]*models.StatusHistoryEntry, error) {
		if _, err := s.load(ctx, a, appID); err != nil {
			return nil, err
		}
		history, err := s.store.ListHistory(ctx, a.tenantID, appID)
		if err != nil {
			return nil, s.wrapStoreErr(ctx, err, "failed to load history")
		}
		return history, nil
	})
}

func (s *Service) load(ctx context.Context, a actor, appID id.ApplicationID) (*models.Application, error) {
	if appID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
	}
	app, err := s.store.FindByID(ctx, a.tenantID, appID)
	if err != nil {
		return nil, s.wrapStoreErr(ctx, err, "failed to load application")
	}
	if a.role == id.RoleApplicant && app.ApplicantID != a.userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "applicants may only view their own applications")
	}
	return app, nil
}

// CompleteIntake records the completeness check. Each document check is
// passed to the verifier before the application lock is taken.
func (s *Service) CompleteIntake(ctx context.Context, req *models.CompletenessCheckRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionCompleteIntake, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		checks, err := s.verifyDocuments(ctx, a, req)
		if err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionCompleteIntake, req.Notes,
			func(app *models.Application) error {
				return app.CanCompleteIntake(req.IsIncomplete, checks)
			},
			func(app *models.Application) {
				app.ApplyIntake(a.userID, req.IsIncomplete, req.Notes, checks, now)
			},
		)
	})
}

func (s *Service) verifyDocuments(ctx context.Context, a actor, req *models.CompletenessCheckRequest) ([]models.DocumentCheck, error) {
	checks := make([]models.DocumentCheck, 0, len(req.DocumentChecks))
	if len(req.DocumentChecks) == 0 {
		return checks, nil
	}
	app, err := s.load(ctx, a, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	for _, in := range req.DocumentChecks {
		check := models.DocumentCheck{DocumentID: in.DocumentID, Verified: in.Verified}
		doc, ok := app.Document(in.DocumentID)
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown document "+in.DocumentID.String())
		}
		verified, err := s.verifier.Verify(ctx, *doc, check)
		if err != nil {
			return nil, s.wrapStoreErr(ctx, err, "document verification failed")
		}
		check.Verified = verified
		checks = append(checks, check)
	}
	return checks, nil
}

// AssignToWorkflow assigns an officer to the intelligence or legal track.
func (s *Service) AssignToWorkflow(ctx context.Context, req *models.AssignRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionAssign, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		return s.assign(ctx, a, req.ApplicationID, req.OfficerID, req.Role)
	})
}

func (s *Service) assign(ctx context.Context, a actor, appID id.ApplicationID, officer id.UserID, role models.AssignmentRole) (*models.Application, error) {
	now := requestcontext.Now(ctx)
	return s.transition(ctx, a, appID, models.ActionAssign, "assigned to "+string(role)+" officer "+officer.String(),
		func(app *models.Application) error {
			return app.CanAssign(role)
		},
		func(app *models.Application) {
			app.ApplyAssignment(role, officer, now)
		},
	)
}

func (s *Service) SubmitSecurityClearance(ctx context.Context, req *models.SecurityClearanceRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionSecurityClear, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		cleared := *req.IsCleared
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionSecurityClear, req.Notes,
			func(app *models.Application) error {
				return app.CanSubmitSecurityClearance()
			},
			func(app *models.Application) {
				app.ApplySecurityClearance(a.userID, cleared, req.RiskLevel, req.Notes, now)
			},
		)
	})
}

func (s *Service) SubmitLegalReview(ctx context.Context, req *models.LegalReviewRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionLegalReview, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionLegalReview, req.Notes,
			func(app *models.Application) error {
				return app.CanSubmitLegalReview()
			},
			func(app *models.Application) {
				app.ApplyLegalReview(a.userID, req.Recommendation, req.Notes, now)
			},
		)
	})
}

func (s *Service) ApproveApplication(ctx context.Context, req *models.ApproveRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionApprove, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionApprove, req.Notes,
			func(app *models.Application) error {
				return app.CanApprove()
			},
			func(app *models.Application) {
				app.ApplyApproval(a.userID, req.Notes, now)
			},
		)
	})
}

func (s *Service) RejectApplication(ctx context.Context, req *models.RejectRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionReject, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionReject, req.Reason,
			func(app *models.Application) error {
				return app.CanReject()
			},
			func(app *models.Application) {
				app.ApplyRejection(a.userID, req.Reason, now)
			},
		)
	})
}

// SubmitAppeal is only open to the applicant who filed the application.
func (s *Service) SubmitAppeal(ctx context.Context, req *models.SubmitAppealRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionSubmitAppeal, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionSubmitAppeal, req.Notes,
			func(app *models.Application) error {
				return app.CanSubmitAppeal(a.userID)
			},
			func(app *models.Application) {
				app.ApplyAppeal(a.userID, req.Notes, now)
			},
		)
	})
}

func (s *Service) HandleAppeal(ctx context.Context, req *models.HandleAppealRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionHandleAppeal, func(ctx context.Context, a actor) (*models.Application, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionHandleAppeal, req.Notes,
			func(app *models.Application) error {
				return app.CanHandleAppeal()
			},
			func(app *models.Application) {
				app.ApplyAppealDecision(a.userID, req.Decision, req.Notes, now)
			},
		)
	})
}

// IssueCertificate issues the registration certificate once per approved
// application. The number is derived under the lock from the stored type.
func (s *Service) IssueCertificate(ctx context.Context, req *models.IssueCertificateRequest) (*models.Application, error) {
	return run(ctx, s, models.ActionIssueCertificate, func(ctx context.Context, a actor) (*models.Application, error) {
		if err := req.Validate(); err != nil {
			return nil, err
		}
		now := requestcontext.Now(ctx)
		return s.transition(ctx, a, req.ApplicationID, models.ActionIssueCertificate, "certificate issued",
			func(app *models.Application) error {
				return app.CanIssueCertificate()
			},
			func(app *models.Application) {
				app.ApplyCertificate(models.NewCertificate(app.ApplicationType, a.userID, now), now)
			},
		)
	})
}

// LogCommunication records correspondence without changing status.
func (s *Service) LogCommunication(ctx context.Context, req *models.LogCommunicationRequest) (*models.Communication, error) {
	return run(ctx, s, models.ActionLogCommunication, func(ctx context.Context, a actor) (*models.Communication, error) {
		req.Normalize()
		if err := req.Validate(); err != nil {
			return nil, err
		}
		comm := models.NewCommunication(req.ApplicationID, a.userID, req, requestcontext.Now(ctx))
		if err := s.store.AddCommunication(ctx, a.tenantID, comm); err != nil {
			return nil, s.wrapStoreErr(ctx, err, "failed to log communication")
		}
		s.logAudit(ctx, "application_log_communication",
			"application_id", req.ApplicationID.String(),
			"channel", string(comm.Channel),
			"actor_id", a.userID.String(),
		)
		return comm, nil
	})
}

// Communications lists logged correspondence oldest first.
func (s *Service) Communications(ctx context.Context, appID id.ApplicationID) ([]*models.Communication, error) {
	return run(ctx, s, models.ActionLogCommunication, func(ctx context.Context, a actor) ([]*models.Communication, error) {
		if appID.IsNil() {
			return nil, dErrors.New(dErrors.CodeValidation, "application id is required")
		}
		comms, err := s.store.ListCommunications(ctx, a.tenantID, appID)
		if err != nil {
			return nil, s.wrapStoreErr(ctx, err, "failed to list communications")
		}
		return comms, nil
	})
}
