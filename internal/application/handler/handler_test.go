package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"coopreg/internal/application/handler/mocks"
	"coopreg/internal/application/models"
	"coopreg/internal/application/service"
	"coopreg/internal/application/store"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/platform/middleware/requesttime"
	"coopreg/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
	tenant  id.TenantID
	user    id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.tenant = id.TenantID(uuid.New())
	s.user = id.UserID(uuid.New())

	r := chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))).Register(r)
	s.router = r
}

func sampleApp(status models.Status) *models.Application {
	return &models.Application{
		ID:              id.ApplicationID(uuid.New()),
		ApplicationType: models.ApplicationTypeCooperative,
		ProposedName:    "Mwanga SACCOS",
		Status:          status,
		Documents:       []models.Document{},
		Version:         1,
		CreatedAt:       time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestCreate() {
	s.Run("201 with the application", func() {
		app := sampleApp(models.StatusSubmitted)
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req *models.CreateApplicationRequest) (*models.Application, error) {
				s.Equal("Mwanga SACCOS", req.ProposedName)
				return app, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications", map[string]any{
			"applicationType": "COOPERATIVE",
			"proposedName":    "Mwanga SACCOS",
			"primaryContact":  map[string]string{"name": "Neema", "email": "neema@example.com", "phone": "+255700000001"},
			"physicalAddress": "Dodoma",
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleApplicant, s.tenant))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "status", "SUBMITTED")
	})

	s.Run("flat contact fields are accepted", func() {
		app := sampleApp(models.StatusSubmitted)
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, req *models.CreateApplicationRequest) (*models.Application, error) {
				s.Equal("Neema", req.PrimaryContactName)
				s.Equal("neema@example.com", req.PrimaryContactEmail)
				s.Equal("+255700000001", req.PrimaryContactPhone)
				return app, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications", map[string]any{
			"applicationType":     "COOPERATIVE",
			"proposedName":        "Mwanga SACCOS",
			"primaryContactName":  "Neema",
			"primaryContactEmail": "neema@example.com",
			"primaryContactPhone": "+255700000001",
			"physicalAddress":     "Dodoma",
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleApplicant, s.tenant))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("unknown fields are a bad request", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/v1/applications", `{"proposedName":"x","surprise":true}`)
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleApplicant, s.tenant))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("role gate runs before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications", map[string]any{})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleRegistrar, s.tenant))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("anonymous is unauthorized", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications", map[string]any{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func (s *HandlerSuite) TestDecisionResponses() {
	s.Run("approve wraps message and application", func() {
		app := sampleApp(models.StatusApproved)
		s.service.EXPECT().ApproveApplication(gomock.Any(), &models.ApproveRequest{ApplicationID: app.ID}).Return(app, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications/approve", map[string]any{"applicationId": app.ID})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleRegistrar, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.DecisionResponse](s.T(), rr)
		s.Equal("Application approved", body.Message)
		s.Equal(app.ID, body.Application.ID)
	})

	s.Run("reject conflict maps to 409", func() {
		s.service.EXPECT().RejectApplication(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "application already in terminal status APPROVED"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications/reject", map[string]any{"applicationId": uuid.New(), "reason": "late"})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleMinisterDelegate, s.tenant))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
		errResp := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("conflict", errResp.Error)
		s.Contains(errResp.ErrorDescription, "APPROVED")
	})

	s.Run("appeal decision message follows outcome", func() {
		app := sampleApp(models.StatusAppealDeclined)
		s.service.EXPECT().HandleAppeal(gomock.Any(), gomock.Any()).Return(app, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/appeals", map[string]any{"applicationId": app.ID, "decision": "REJECT", "notes": "upheld"})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleDirectorCooperatives, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "message", "Appeal declined")
	})

	s.Run("certificate response carries the certificate", func() {
		app := sampleApp(models.StatusApproved)
		app.Certificate = &models.Certificate{Number: "CS-2026-ABCDEF01"}
		s.service.EXPECT().IssueCertificate(gomock.Any(), &models.IssueCertificateRequest{ApplicationID: app.ID}).Return(app, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/certificates/issue", map[string]any{"applicationId": app.ID})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleRegistrar, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.CertificateResponse](s.T(), rr)
		s.Equal("Certificate issued", body.Message)
		s.Equal("CS-2026-ABCDEF01", body.Certificate.Number)
	})

	s.Run("internal errors hide their description", func() {
		s.service.EXPECT().ApproveApplication(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications/approve", map[string]any{"applicationId": uuid.New()})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleRegistrar, s.tenant))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		errResp := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.Equal("internal_error", errResp.Error)
		s.Empty(errResp.ErrorDescription)
	})
}

func (s *HandlerSuite) TestReads() {
	s.Run("list passes the status filter", func() {
		s.service.EXPECT().List(gomock.Any(), models.StatusSubmitted).Return(nil, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/v1/applications?status=SUBMITTED")
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleGovernmentOfficer, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.ApplicationsResponse](s.T(), rr)
		s.NotNil(body.Applications)
		s.Empty(body.Applications)
	})

	s.Run("malformed path id", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/v1/applications/not-a-uuid")
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleApplicant, s.tenant))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	s.Run("history envelope", func() {
		appID := id.ApplicationID(uuid.New())
		s.service.EXPECT().History(gomock.Any(), appID).Return([]*models.StatusHistoryEntry{
			{ApplicationID: appID, ToStatus: models.StatusSubmitted, Action: models.ActionCreate},
		}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/v1/applications/"+appID.String()+"/history")
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleApplicant, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.HistoryResponse](s.T(), rr)
		s.Len(body.History, 1)
	})

	s.Run("bulk results envelope", func() {
		s.service.EXPECT().BulkAssignToWorkflow(gomock.Any(), gomock.Any()).Return([]models.BulkAssignResult{
			{ApplicationID: id.ApplicationID(uuid.New()), Error: &models.ResultError{Code: "not_found", Message: "application not found"}},
		}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/applications/assign/bulk", map[string]any{
			"applicationIds": []string{uuid.NewString()}, "officerId": uuid.New(), "role": "legal",
		})
		rr := testutil.DoRequest(s.router, testutil.WithActor(req, s.user, id.RoleRegulator, s.tenant))
		testutil.AssertStatusOK(s.T(), rr)
		body := testutil.UnmarshalResponse[models.BulkAssignResponse](s.T(), rr)
		s.Require().Len(body.Results, 1)
		s.False(body.Results[0].Succeeded())
	})
}

// TestWorkflowOverHTTP drives the real service and memory store through the router.
func TestWorkflowOverHTTP(t *testing.T) {
	st := store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	r.Use(requesttime.Pin(func() time.Time { return time.Date(2027, 1, 15, 8, 0, 0, 0, time.UTC) }))
	New(service.New(st, service.WithLogger(logger)), logger).Register(r)

	tenant := id.TenantID(uuid.New())
	applicant := id.UserID(uuid.New())
	officer := id.UserID(uuid.New())

	call := func(method, path string, body any, user id.UserID, role id.Role) *http.Request {
		req := testutil.NewJSONRequest(t, method, path, body)
		return testutil.WithActor(req, user, role, tenant)
	}

	rr := testutil.DoRequest(r, call(http.MethodPost, "/v1/applications", map[string]any{
		"applicationType":     "SOCIETY",
		"proposedName":        "Umoja Society",
		"primaryContactName":  "Juma",
		"primaryContactEmail": "juma@example.com",
		"primaryContactPhone": "0700000002",
		"physicalAddress":     "Arusha",
	}, applicant, id.RoleApplicant))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	app := testutil.UnmarshalResponse[models.Application](t, rr)
	if app.PrimaryContact.Email != "juma@example.com" {
		t.Fatalf("flat contact fields not applied: %+v", app.PrimaryContact)
	}

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/completeness-check",
		map[string]any{"applicationId": app.ID}, officer, id.RoleGovernmentOfficer))
	testutil.AssertStatusOK(t, rr)

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/assign",
		map[string]any{"applicationId": app.ID, "officerId": officer, "role": "intelligence"}, officer, id.RoleGovernmentOfficer))
	testutil.AssertStatusOK(t, rr)

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/security-clearance",
		map[string]any{"applicationId": app.ID, "isCleared": true}, officer, id.RoleIntelligenceLiaison))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "status", "SECURITY_CLEARED")

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/approve",
		map[string]any{"applicationId": app.ID}, applicant, id.RoleApplicant))
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/approve",
		map[string]any{"applicationId": app.ID}, officer, id.RoleRegistrar))
	testutil.AssertStatusOK(t, rr)

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/applications/approve",
		map[string]any{"applicationId": app.ID}, officer, id.RoleRegistrar))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	rr = testutil.DoRequest(r, call(http.MethodPost, "/v1/certificates/issue",
		map[string]any{"applicationId": app.ID}, officer, id.RoleRegistrar))
	testutil.AssertStatusOK(t, rr)
	cert := testutil.UnmarshalResponse[models.CertificateResponse](t, rr)
	if cert.Certificate == nil || cert.Certificate.Number[:8] != "SO-2027-" {
		t.Fatalf("expected a society certificate, got %+v", cert.Certificate)
	}

	rr = testutil.DoRequest(r, call(http.MethodGet, "/v1/applications/"+app.ID.String()+"/history", nil, applicant, id.RoleApplicant))
	testutil.AssertStatusOK(t, rr)
	history := testutil.UnmarshalResponse[models.HistoryResponse](t, rr)
	if len(history.History) != 6 {
		t.Fatalf("expected 6 history entries, got %d", len(history.History))
	}
}
