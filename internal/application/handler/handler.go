// Package handler exposes the registration workflow over JSON HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coopreg/internal/application/models"
	"coopreg/internal/application/rolegate"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/platform/httputil"
	"coopreg/pkg/requestcontext"
)

// Service is the workflow surface the handlers drive.
type Service interface {
	Create(ctx context.Context, req *models.CreateApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	List(ctx context.Context, status models.Status) ([]*models.Application, error)
	History(ctx context.Context, appID id.ApplicationID) ([]*models.StatusHistoryEntry, error)
	CompleteIntake(ctx context.Context, req *models.CompletenessCheckRequest) (*models.Application, error)
	AssignToWorkflow(ctx context.Context, req *models.AssignRequest) (*models.Application, error)
	BulkAssignToWorkflow(ctx context.Context, req *models.BulkAssignRequest) ([]models.BulkAssignResult, error)
	SubmitSecurityClearance(ctx context.Context, req *models.SecurityClearanceRequest) (*models.Application, error)
	SubmitLegalReview(ctx context.Context, req *models.LegalReviewRequest) (*models.Application, error)
	ApproveApplication(ctx context.Context, req *models.ApproveRequest) (*models.Application, error)
	RejectApplication(ctx context.Context, req *models.RejectRequest) (*models.Application, error)
	SubmitAppeal(ctx context.Context, req *models.SubmitAppealRequest) (*models.Application, error)
	HandleAppeal(ctx context.Context, req *models.HandleAppealRequest) (*models.Application, error)
	IssueCertificate(ctx context.Context, req *models.IssueCertificateRequest) (*models.Application, error)
	LogCommunication(ctx context.Context, req *models.LogCommunicationRequest) (*models.Communication, error)
	Communications(ctx context.Context, appID id.ApplicationID) ([]*models.Communication, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the workflow routes under /v1. Authentication and the rest
// of the middleware chain are applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/applications", func(r chi.Router) {
			r.With(h.gate(models.ActionCreate)).Post("/", h.handleCreate)
			r.With(h.gate(models.ActionList)).Get("/", h.handleList)
			r.With(h.gate(models.ActionAssign)).Post("/assign", h.handleAssign)
			r.With(h.gate(models.ActionBulkAssign)).Post("/assign/bulk", h.handleBulkAssign)
			r.With(h.gate(models.ActionCompleteIntake)).Post("/completeness-check", h.handleCompletenessCheck)
			r.With(h.gate(models.ActionLogCommunication)).Post("/communications", h.handleLogCommunication)
			r.With(h.gate(models.ActionSecurityClear)).Post("/security-clearance", h.handleSecurityClearance)
			r.With(h.gate(models.ActionLegalReview)).Post("/legal-review", h.handleLegalReview)
			r.With(h.gate(models.ActionApprove)).Post("/approve", h.handleApprove)
			r.With(h.gate(models.ActionReject)).Post("/reject", h.handleReject)
			r.With(h.gate(models.ActionView)).Get("/{id}", h.handleGet)
			r.With(h.gate(models.ActionViewHistory)).Get("/{id}/history", h.handleHistory)
			r.With(h.gate(models.ActionLogCommunication)).Get("/{id}/communications", h.handleCommunications)
		})
		r.With(h.gate(models.ActionHandleAppeal)).Post("/appeals", h.handleAppealDecision)
		r.With(h.gate(models.ActionSubmitAppeal)).Post("/appeals/submit", h.handleSubmitAppeal)
		r.With(h.gate(models.ActionIssueCertificate)).Post("/certificates/issue", h.handleIssueCertificate)
	})
}

// gate rejects requests whose role may not perform action before any body is read.
func (h *Handler) gate(action models.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.ActorID(ctx).IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if err := rolegate.Authorize(requestcontext.Role(ctx), action); err != nil {
				h.logger.WarnContext(ctx, "role not permitted",
					"request_id", requestcontext.RequestID(ctx),
					"role", requestcontext.Role(ctx).String(),
					"action", action.String(),
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.CreateApplicationRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.List(r.Context(), models.Status(r.URL.Query().Get("status")))
	if err != nil {
		h.fail(w, r, "list applications", err)
		return
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.ApplicationsResponse{Applications: apps})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	app, err := h.service.Get(r.Context(), appID)
	if err != nil {
		h.fail(w, r, "get application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	history, err := h.service.History(r.Context(), appID)
	if err != nil {
		h.fail(w, r, "list history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.HistoryResponse{History: history})
}

func (h *Handler) handleCommunications(w http.ResponseWriter, r *http.Request) {
	appID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	comms, err := h.service.Communications(r.Context(), appID)
	if err != nil {
		h.fail(w, r, "list communications", err)
		return
	}
	if comms == nil {
		comms = []*models.Communication{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.CommunicationsResponse{Communications: comms})
}

func (h *Handler) handleCompletenessCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.CompletenessCheckRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.CompleteIntake(r.Context(), req)
	if err != nil {
		h.fail(w, r, "complete intake", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.AssignRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.AssignToWorkflow(r.Context(), req)
	if err != nil {
		h.fail(w, r, "assign application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleBulkAssign(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.BulkAssignRequest](h, w, r)
	if !ok {
		return
	}
	results, err := h.service.BulkAssignToWorkflow(r.Context(), req)
	if err != nil {
		h.fail(w, r, "bulk assign applications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.BulkAssignResponse{Results: results})
}

func (h *Handler) handleLogCommunication(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.LogCommunicationRequest](h, w, r)
	if !ok {
		return
	}
	comm, err := h.service.LogCommunication(r.Context(), req)
	if err != nil {
		h.fail(w, r, "log communication", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comm)
}

func (h *Handler) handleSecurityClearance(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.SecurityClearanceRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.SubmitSecurityClearance(r.Context(), req)
	if err != nil {
		h.fail(w, r, "submit security clearance", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleLegalReview(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.LegalReviewRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.SubmitLegalReview(r.Context(), req)
	if err != nil {
		h.fail(w, r, "submit legal review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.ApproveRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.ApproveApplication(r.Context(), req)
	if err != nil {
		h.fail(w, r, "approve application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.DecisionResponse{Message: "Application approved", Application: app})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.RejectRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.RejectApplication(r.Context(), req)
	if err != nil {
		h.fail(w, r, "reject application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.DecisionResponse{Message: "Application rejected", Application: app})
}

func (h *Handler) handleSubmitAppeal(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.SubmitAppealRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.SubmitAppeal(r.Context(), req)
	if err != nil {
		h.fail(w, r, "submit appeal", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleAppealDecision(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.HandleAppealRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.HandleAppeal(r.Context(), req)
	if err != nil {
		h.fail(w, r, "handle appeal", err)
		return
	}
	msg := "Appeal declined"
	if app.Status == models.StatusApproved {
		msg = "Appeal approved"
	}
	httputil.WriteJSON(w, http.StatusOK, models.DecisionResponse{Message: msg, Application: app})
}

func (h *Handler) handleIssueCertificate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.IssueCertificateRequest](h, w, r)
	if !ok {
		return
	}
	app, err := h.service.IssueCertificate(r.Context(), req)
	if err != nil {
		h.fail(w, r, "issue certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.CertificateResponse{Message: "Certificate issued", Certificate: app.Certificate})
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request) (*T, bool) {
	req, err := httputil.DecodeJSON[T](r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, err)
		return nil, false
	}
	return req, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (id.ApplicationID, bool) {
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ApplicationID{}, false
	}
	return appID, true
}

// fail writes err and logs it at a level matching its class.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, op+" refused",
			"request_id", requestcontext.RequestID(ctx),
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
