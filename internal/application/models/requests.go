package models

import (
	"net/url"
	"strings"

	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	"coopreg/pkg/email"
	platstrings "coopreg/pkg/platform/strings"
)

const (
	maxNameLength    = 200
	maxAddressLength = 500
	maxNotesLength   = 2000
	maxDocuments     = 50
	// MaxBulkAssign bounds the ids accepted by one bulk assignment.
	MaxBulkAssign = 100
)

type DocumentInput struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// CreateApplicationRequest accepts the contact either as a nested
// primaryContact object or as the flat primaryContactName/Email/Phone fields.
// Nested values win when both are sent.
type CreateApplicationRequest struct {
	ApplicationType     ApplicationType `json:"applicationType"`
	ProposedName        string          `json:"proposedName"`
	PrimaryContact      Contact         `json:"primaryContact"`
	PrimaryContactName  string          `json:"primaryContactName,omitempty"`
	PrimaryContactEmail string          `json:"primaryContactEmail,omitempty"`
	PrimaryContactPhone string          `json:"primaryContactPhone,omitempty"`
	PhysicalAddress     string          `json:"physicalAddress"`
	Documents           []DocumentInput `json:"documents,omitempty"`
}

func (r *CreateApplicationRequest) Normalize() {
	if r == nil {
		return
	}
	r.ApplicationType = ApplicationType(strings.ToUpper(strings.TrimSpace(string(r.ApplicationType))))
	r.ProposedName = strings.TrimSpace(r.ProposedName)
	if r.PrimaryContact.Name == "" {
		r.PrimaryContact.Name = r.PrimaryContactName
	}
	if r.PrimaryContact.Email == "" {
		r.PrimaryContact.Email = r.PrimaryContactEmail
	}
	if r.PrimaryContact.Phone == "" {
		r.PrimaryContact.Phone = r.PrimaryContactPhone
	}
	r.PrimaryContactName, r.PrimaryContactEmail, r.PrimaryContactPhone = "", "", ""
	r.PrimaryContact.Name = strings.TrimSpace(r.PrimaryContact.Name)
	r.PrimaryContact.Email = email.Normalize(r.PrimaryContact.Email)
	r.PrimaryContact.Phone = strings.TrimSpace(r.PrimaryContact.Phone)
	r.PhysicalAddress = strings.TrimSpace(r.PhysicalAddress)
	for i := range r.Documents {
		r.Documents[i].Type = strings.TrimSpace(r.Documents[i].Type)
		r.Documents[i].URL = strings.TrimSpace(r.Documents[i].URL)
	}
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *CreateApplicationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.ProposedName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "proposedName must be 200 characters or less")
	}
	if len(r.PhysicalAddress) > maxAddressLength {
		return dErrors.New(dErrors.CodeValidation, "physicalAddress must be 500 characters or less")
	}
	if len(r.Documents) > maxDocuments {
		return dErrors.New(dErrors.CodeValidation, "too many documents")
	}

	if r.ApplicationType == "" {
		return dErrors.New(dErrors.CodeValidation, "applicationType is required")
	}
	if r.ProposedName == "" {
		return dErrors.New(dErrors.CodeValidation, "proposedName is required")
	}
	if r.PrimaryContact.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "primaryContact.name is required")
	}
	if r.PrimaryContact.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "primaryContact.email is required")
	}
	if r.PrimaryContact.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "primaryContact.phone is required")
	}
	if r.PhysicalAddress == "" {
		return dErrors.New(dErrors.CodeValidation, "physicalAddress is required")
	}

	if !r.ApplicationType.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "applicationType must be SOCIETY or COOPERATIVE")
	}
	if !email.IsValid(r.PrimaryContact.Email) {
		return dErrors.New(dErrors.CodeValidation, "primaryContact.email is invalid")
	}
	if !validPhone(r.PrimaryContact.Phone) {
		return dErrors.New(dErrors.CodeValidation, "primaryContact.phone is invalid")
	}
	for _, d := range r.Documents {
		if d.Type == "" || d.URL == "" {
			return dErrors.New(dErrors.CodeValidation, "documents require type and url")
		}
		u, err := url.Parse(d.URL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return dErrors.New(dErrors.CodeValidation, "document url must be an absolute http(s) url")
		}
	}
	return nil
}

func validPhone(p string) bool {
	digits := 0
	for i, c := range p {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '+' && i == 0:
		case c == ' ' || c == '-' || c == '(' || c == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

type AssignRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	OfficerID     id.UserID        `json:"officerId"`
	Role          AssignmentRole   `json:"role"`
}

func (r *AssignRequest) Normalize() {
	if r == nil {
		return
	}
	r.Role = AssignmentRole(strings.ToLower(strings.TrimSpace(string(r.Role))))
}

func (r *AssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	return validateAssignee(r.OfficerID, r.Role)
}

func validateAssignee(officer id.UserID, role AssignmentRole) error {
	if officer.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "officerId is required")
	}
	if role == "" {
		return dErrors.New(dErrors.CodeValidation, "role is required")
	}
	if !role.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "role must be intelligence or legal")
	}
	return nil
}

type BulkAssignRequest struct {
	ApplicationIDs []id.ApplicationID `json:"applicationIds"`
	OfficerID      id.UserID          `json:"officerId"`
	Role           AssignmentRole     `json:"role"`
}

// Normalize drops repeated ids so each application is assigned once.
func (r *BulkAssignRequest) Normalize() {
	if r == nil {
		return
	}
	r.ApplicationIDs = platstrings.Dedupe(r.ApplicationIDs)
	r.Role = AssignmentRole(strings.ToLower(strings.TrimSpace(string(r.Role))))
}

func (r *BulkAssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.ApplicationIDs) > MaxBulkAssign {
		return dErrors.New(dErrors.CodeValidation, "at most 100 applicationIds per request")
	}
	if len(r.ApplicationIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "applicationIds is required")
	}
	return validateAssignee(r.OfficerID, r.Role)
}

type DocumentCheckInput struct {
	DocumentID id.DocumentID `json:"documentId"`
	Verified   bool          `json:"verified"`
}

type CompletenessCheckRequest struct {
	ApplicationID  id.ApplicationID     `json:"applicationId"`
	IsIncomplete   bool                 `json:"isIncomplete"`
	Notes          string               `json:"notes,omitempty"`
	DocumentChecks []DocumentCheckInput `json:"documentChecks,omitempty"`
}

func (r *CompletenessCheckRequest) Normalize() {
	if r == nil {
		return
	}
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CompletenessCheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	seen := make(map[id.DocumentID]struct{}, len(r.DocumentChecks))
	for _, c := range r.DocumentChecks {
		if c.DocumentID.IsNil() {
			return dErrors.New(dErrors.CodeValidation, "documentChecks require documentId")
		}
		if _, dup := seen[c.DocumentID]; dup {
			return dErrors.New(dErrors.CodeValidation, "duplicate document check "+c.DocumentID.String())
		}
		seen[c.DocumentID] = struct{}{}
	}
	return nil
}

type SecurityClearanceRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	IsCleared     *bool            `json:"isCleared"`
	Notes         string           `json:"notes,omitempty"`
	RiskLevel     RiskLevel        `json:"riskLevel,omitempty"`
}

// Normalize defaults riskLevel to LOW.
func (r *SecurityClearanceRequest) Normalize() {
	if r == nil {
		return
	}
	r.Notes = strings.TrimSpace(r.Notes)
	r.RiskLevel = RiskLevel(strings.ToUpper(strings.TrimSpace(string(r.RiskLevel))))
	if r.RiskLevel == "" {
		r.RiskLevel = RiskLevelLow
	}
}

func (r *SecurityClearanceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if r.IsCleared == nil {
		return dErrors.New(dErrors.CodeValidation, "isCleared is required")
	}
	if !r.RiskLevel.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "riskLevel must be LOW, MEDIUM or HIGH")
	}
	return nil
}

type LegalReviewRequest struct {
	ApplicationID  id.ApplicationID `json:"applicationId"`
	Recommendation Decision         `json:"recommendation"`
	Notes          string           `json:"notes,omitempty"`
}

func (r *LegalReviewRequest) Normalize() {
	if r == nil {
		return
	}
	r.Recommendation = Decision(strings.ToUpper(strings.TrimSpace(string(r.Recommendation))))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *LegalReviewRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if !r.Recommendation.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "recommendation must be APPROVE or REJECT")
	}
	return nil
}

type ApproveRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Notes         string           `json:"notes,omitempty"`
}

func (r *ApproveRequest) Normalize() {
	if r == nil {
		return
	}
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *ApproveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	return nil
}

type RejectRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Reason        string           `json:"reason"`
}

func (r *RejectRequest) Normalize() {
	if r == nil {
		return
	}
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Reason); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

type SubmitAppealRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Notes         string           `json:"notes"`
}

func (r *SubmitAppealRequest) Normalize() {
	if r == nil {
		return
	}
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *SubmitAppealRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if r.Notes == "" {
		return dErrors.New(dErrors.CodeValidation, "notes are required")
	}
	return nil
}

type HandleAppealRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Decision      Decision         `json:"decision"`
	Notes         string           `json:"notes"`
}

func (r *HandleAppealRequest) Normalize() {
	if r == nil {
		return
	}
	r.Decision = Decision(strings.ToUpper(strings.TrimSpace(string(r.Decision))))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *HandleAppealRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validateNotes(r.Notes); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if r.Decision == "" {
		return dErrors.New(dErrors.CodeValidation, "decision is required")
	}
	if r.Notes == "" {
		return dErrors.New(dErrors.CodeValidation, "notes are required")
	}
	if !r.Decision.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "decision must be APPROVE or REJECT")
	}
	return nil
}

type IssueCertificateRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
}

func (r *IssueCertificateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	return nil
}

type LogCommunicationRequest struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Channel       Channel          `json:"channel"`
	Subject       string           `json:"subject"`
	Message       string           `json:"message"`
}

func (r *LogCommunicationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Channel = Channel(strings.ToUpper(strings.TrimSpace(string(r.Channel))))
	r.Subject = strings.TrimSpace(r.Subject)
	r.Message = strings.TrimSpace(r.Message)
}

func (r *LogCommunicationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Subject) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "subject must be 200 characters or less")
	}
	if err := validateNotes(r.Message); err != nil {
		return err
	}
	if r.ApplicationID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "applicationId is required")
	}
	if r.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if r.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	if !r.Channel.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "channel must be EMAIL, PHONE, LETTER or MEETING")
	}
	return nil
}

// ListFilter narrows application listings. Zero value lists everything.
type ListFilter struct {
	Status      Status
	ApplicantID *id.UserID
}

func validateNotes(s string) error {
	if len(s) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes must be 2000 characters or less")
	}
	return nil
}
