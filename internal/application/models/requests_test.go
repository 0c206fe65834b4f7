package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
)

func TestCreateApplicationRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateApplicationRequest)
		msg    string
	}{
		{"missing type", func(r *CreateApplicationRequest) { r.ApplicationType = "" }, "applicationType is required"},
		{"unknown type", func(r *CreateApplicationRequest) { r.ApplicationType = "BANK" }, "applicationType must be"},
		{"missing name", func(r *CreateApplicationRequest) { r.ProposedName = "  " }, "proposedName is required"},
		{"long name", func(r *CreateApplicationRequest) { r.ProposedName = strings.Repeat("x", 201) }, "200 characters"},
		{"missing contact name", func(r *CreateApplicationRequest) { r.PrimaryContact.Name = "" }, "primaryContact.name"},
		{"missing email", func(r *CreateApplicationRequest) { r.PrimaryContact.Email = "" }, "primaryContact.email is required"},
		{"bad email", func(r *CreateApplicationRequest) { r.PrimaryContact.Email = "nope" }, "primaryContact.email is invalid"},
		{"missing phone", func(r *CreateApplicationRequest) { r.PrimaryContact.Phone = "" }, "primaryContact.phone is required"},
		{"bad phone", func(r *CreateApplicationRequest) { r.PrimaryContact.Phone = "call me" }, "primaryContact.phone is invalid"},
		{"missing address", func(r *CreateApplicationRequest) { r.PhysicalAddress = "" }, "physicalAddress is required"},
		{"relative document url", func(r *CreateApplicationRequest) { r.Documents[0].URL = "/c.pdf" }, "absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validCreateRequest()
			tt.mutate(r)
			r.Normalize()
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	t.Run("normalizes and accepts valid input", func(t *testing.T) {
		r := validCreateRequest()
		r.ApplicationType = " cooperative "
		r.ProposedName = "  Test SACCOS "
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, ApplicationTypeCooperative, r.ApplicationType)
		assert.Equal(t, "Test SACCOS", r.ProposedName)
	})
}

func TestTransitionRequestsValidate(t *testing.T) {
	appID := id.ApplicationID(uuid.New())

	t.Run("clearance defaults risk level", func(t *testing.T) {
		cleared := true
		r := &SecurityClearanceRequest{ApplicationID: appID, IsCleared: &cleared}
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, RiskLevelLow, r.RiskLevel)
	})

	t.Run("clearance requires isCleared", func(t *testing.T) {
		r := &SecurityClearanceRequest{ApplicationID: appID}
		r.Normalize()
		assert.ErrorContains(t, r.Validate(), "isCleared is required")
	})

	t.Run("reject requires reason", func(t *testing.T) {
		r := &RejectRequest{ApplicationID: appID, Reason: "   "}
		r.Normalize()
		assert.ErrorContains(t, r.Validate(), "reason is required")
	})

	t.Run("appeal requires notes", func(t *testing.T) {
		r := &SubmitAppealRequest{ApplicationID: appID}
		assert.ErrorContains(t, r.Validate(), "notes are required")
	})

	t.Run("handle appeal decision is case-insensitive", func(t *testing.T) {
		r := &HandleAppealRequest{ApplicationID: appID, Decision: "reject", Notes: "upheld"}
		r.Normalize()
		require.NoError(t, r.Validate())
		assert.Equal(t, DecisionReject, r.Decision)
	})

	t.Run("handle appeal requires notes", func(t *testing.T) {
		r := &HandleAppealRequest{ApplicationID: appID, Decision: "approve", Notes: "  "}
		r.Normalize()
		assert.True(t, dErrors.HasCode(r.Validate(), dErrors.CodeValidation))
	})

	t.Run("flat contact fields fold into the contact", func(t *testing.T) {
		r := &CreateApplicationRequest{
			PrimaryContact:      Contact{Name: "Neema"},
			PrimaryContactName:  "ignored",
			PrimaryContactEmail: " Juma@Example.com ",
			PrimaryContactPhone: "0700000002",
		}
		r.Normalize()
		assert.Equal(t, Contact{Name: "Neema", Email: "Juma@example.com", Phone: "0700000002"}, r.PrimaryContact)
		assert.Empty(t, r.PrimaryContactName)
	})

	t.Run("assign role must be known", func(t *testing.T) {
		r := &AssignRequest{ApplicationID: appID, OfficerID: id.UserID(uuid.New()), Role: "finance"}
		r.Normalize()
		assert.ErrorContains(t, r.Validate(), "role must be")
	})

	t.Run("bulk assign bounds ids", func(t *testing.T) {
		r := &BulkAssignRequest{OfficerID: id.UserID(uuid.New()), Role: AssignmentLegal}
		assert.ErrorContains(t, r.Validate(), "applicationIds is required")
		r.ApplicationIDs = make([]id.ApplicationID, MaxBulkAssign+1)
		assert.ErrorContains(t, r.Validate(), "at most 100")
	})

	t.Run("duplicate document checks rejected", func(t *testing.T) {
		doc := id.DocumentID(uuid.New())
		r := &CompletenessCheckRequest{
			ApplicationID:  appID,
			DocumentChecks: []DocumentCheckInput{{DocumentID: doc, Verified: true}, {DocumentID: doc}},
		}
		assert.ErrorContains(t, r.Validate(), "duplicate document check")
	})

	t.Run("communication channel must be known", func(t *testing.T) {
		r := &LogCommunicationRequest{ApplicationID: appID, Channel: "fax", Subject: "s", Message: "m"}
		r.Normalize()
		assert.ErrorContains(t, r.Validate(), "channel must be")
	})
}
