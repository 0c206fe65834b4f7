package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
)

type ApplicationType string

const (
	ApplicationTypeSociety     ApplicationType = "SOCIETY"
	ApplicationTypeCooperative ApplicationType = "COOPERATIVE"
)

func (t ApplicationType) IsValid() bool {
	return t == ApplicationTypeSociety || t == ApplicationTypeCooperative
}

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLevelLow || r == RiskLevelMedium || r == RiskLevelHigh
}

// AssignmentRole is the review track an officer is assigned to.
type AssignmentRole string

const (
	AssignmentIntelligence AssignmentRole = "intelligence"
	AssignmentLegal        AssignmentRole = "legal"
)

func (r AssignmentRole) IsValid() bool {
	return r == AssignmentIntelligence || r == AssignmentLegal
}

// Transition returns the workflow edge for assigning to this track.
func (r AssignmentRole) Transition() Transition {
	if r == AssignmentLegal {
		return TransitionAssignLegal
	}
	return TransitionAssignIntelligence
}

// Decision is a binary outcome used by legal review and appeal adjudication.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Document struct {
	ID         id.DocumentID `json:"id"`
	Type       string        `json:"type"`
	URL        string        `json:"url"`
	Verified   bool          `json:"verified"`
	VerifiedBy *id.UserID    `json:"verifiedBy,omitempty"`
	VerifiedAt *time.Time    `json:"verifiedAt,omitempty"`
}

type Intake struct {
	CompletedBy  id.UserID `json:"completedBy"`
	IsIncomplete bool      `json:"isIncomplete"`
	Notes        string    `json:"notes,omitempty"`
	CompletedAt  time.Time `json:"completedAt"`
}

type SecurityClearance struct {
	Decision  string    `json:"decision"`
	DecidedBy id.UserID `json:"decidedBy"`
	RiskLevel RiskLevel `json:"riskLevel"`
	Notes     string    `json:"notes,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

const (
	ClearanceCleared = "CLEARED"
	ClearanceDenied  = "DENIED"
)

// Cleared reports whether an intelligence liaison granted clearance.
func (c *SecurityClearance) Cleared() bool {
	return c != nil && c.Decision == ClearanceCleared
}

type LegalReview struct {
	Recommendation Decision  `json:"recommendation"`
	ReviewedBy     id.UserID `json:"reviewedBy"`
	Notes          string    `json:"notes,omitempty"`
	ReviewedAt     time.Time `json:"reviewedAt"`
}

// FinalDecision records the registrar-level approve or reject call.
type FinalDecision struct {
	Outcome   Decision  `json:"outcome"`
	DecidedBy id.UserID `json:"decidedBy"`
	Reason    string    `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

type Appeal struct {
	SubmittedBy id.UserID  `json:"submittedBy"`
	Notes       string     `json:"notes"`
	SubmittedAt time.Time  `json:"submittedAt"`
	Decision    Decision   `json:"decision,omitempty"`
	DecidedBy   *id.UserID `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
}

// IsActive reports whether the appeal still awaits adjudication.
func (a *Appeal) IsActive() bool {
	return a != nil && a.Decision == ""
}

type Certificate struct {
	ID       id.CertificateID `json:"id"`
	Number   string           `json:"number"`
	IssuedBy id.UserID        `json:"issuedBy"`
	IssuedAt time.Time        `json:"issuedAt"`
}

// NewCertificate builds a certificate numbered PREFIX-YEAR-XXXXXXXX.
func NewCertificate(appType ApplicationType, issuer id.UserID, now time.Time) *Certificate {
	certID := uuid.New()
	prefix := "CS"
	if appType == ApplicationTypeSociety {
		prefix = "SO"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(certID.String(), "-", "")[:8])
	return &Certificate{
		ID:       id.CertificateID(certID),
		Number:   fmt.Sprintf("%s-%d-%s", prefix, now.Year(), suffix),
		IssuedBy: issuer,
		IssuedAt: now,
	}
}

// Application is the aggregate root of the registration workflow.
//
// Invariants:
//   - Status is always a known Status and changes only along the transition table
//   - Certificate is non-nil only while Status is APPROVED
//   - At most one appeal is active at a time
//   - Version increases by one on every persisted mutation
type Application struct {
	ID                            id.ApplicationID   `json:"id"`
	TenantID                      id.TenantID        `json:"tenantId"`
	ApplicantID                   id.UserID          `json:"applicantId"`
	ApplicationType               ApplicationType    `json:"applicationType"`
	ProposedName                  string             `json:"proposedName"`
	PrimaryContact                Contact            `json:"primaryContact"`
	PhysicalAddress               string             `json:"physicalAddress"`
	Status                        Status             `json:"status"`
	AssignedIntelligenceOfficerID *id.UserID         `json:"assignedIntelligenceOfficerId,omitempty"`
	AssignedLegalOfficerID        *id.UserID         `json:"assignedLegalOfficerId,omitempty"`
	Intake                        *Intake            `json:"intake,omitempty"`
	SecurityClearance             *SecurityClearance `json:"securityClearance,omitempty"`
	LegalReview                   *LegalReview       `json:"legalReview,omitempty"`
	Decision                      *FinalDecision     `json:"decision,omitempty"`
	Appeal                        *Appeal            `json:"appeal,omitempty"`
	Certificate                   *Certificate       `json:"certificate,omitempty"`
	Documents                     []Document         `json:"documents"`
	Version                       int                `json:"version"`
	CreatedAt                     time.Time          `json:"createdAt"`
	UpdatedAt                     time.Time          `json:"updatedAt"`
}

// NewApplication builds a freshly submitted application.
func NewApplication(tenantID id.TenantID, applicant id.UserID, req *CreateApplicationRequest, now time.Time) (*Application, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant id is required")
	}
	if applicant.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant id is required")
	}
	docs := make([]Document, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, Document{ID: id.DocumentID(uuid.New()), Type: d.Type, URL: d.URL})
	}
	return &Application{
		ID:              id.ApplicationID(uuid.New()),
		TenantID:        tenantID,
		ApplicantID:     applicant,
		ApplicationType: req.ApplicationType,
		ProposedName:    req.ProposedName,
		PrimaryContact:  req.PrimaryContact,
		PhysicalAddress: req.PhysicalAddress,
		Status:          StatusSubmitted,
		Documents:       docs,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	c.AssignedIntelligenceOfficerID = cloneUser(a.AssignedIntelligenceOfficerID)
	c.AssignedLegalOfficerID = cloneUser(a.AssignedLegalOfficerID)
	if a.Intake != nil {
		v := *a.Intake
		c.Intake = &v
	}
	if a.SecurityClearance != nil {
		v := *a.SecurityClearance
		c.SecurityClearance = &v
	}
	if a.LegalReview != nil {
		v := *a.LegalReview
		c.LegalReview = &v
	}
	if a.Decision != nil {
		v := *a.Decision
		c.Decision = &v
	}
	if a.Appeal != nil {
		v := *a.Appeal
		v.DecidedBy = cloneUser(a.Appeal.DecidedBy)
		if a.Appeal.DecidedAt != nil {
			t := *a.Appeal.DecidedAt
			v.DecidedAt = &t
		}
		c.Appeal = &v
	}
	if a.Certificate != nil {
		v := *a.Certificate
		c.Certificate = &v
	}
	c.Documents = make([]Document, len(a.Documents))
	for i, d := range a.Documents {
		d.VerifiedBy = cloneUser(d.VerifiedBy)
		if d.VerifiedAt != nil {
			t := *d.VerifiedAt
			d.VerifiedAt = &t
		}
		c.Documents[i] = d
	}
	return &c
}

func cloneUser(u *id.UserID) *id.UserID {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

// Document returns the attached document with the given id.
func (a *Application) Document(docID id.DocumentID) (*Document, bool) {
	for i := range a.Documents {
		if a.Documents[i].ID == docID {
			return &a.Documents[i], true
		}
	}
	return nil, false
}

// AllDocumentsVerified reports whether every attached document is verified.
func (a *Application) AllDocumentsVerified() bool {
	for _, d := range a.Documents {
		if !d.Verified {
			return false
		}
	}
	return true
}

func (a *Application) touch(now time.Time) {
	a.UpdatedAt = now
}

// -----------------------------------------------------------------------------
// Intake
// -----------------------------------------------------------------------------

// DocumentCheck is the outcome of verifying one attached document.
type DocumentCheck struct {
	DocumentID id.DocumentID
	Verified   bool
}

// CanCompleteIntake requires SUBMITTED. Completing (not incomplete) also
// requires every document to be verified once checks are applied.
func (a *Application) CanCompleteIntake(isIncomplete bool, checks []DocumentCheck) error {
	if !TransitionCompleteIntake.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionCompleteIntake)
	}
	verified := make(map[id.DocumentID]bool, len(a.Documents))
	for _, d := range a.Documents {
		verified[d.ID] = d.Verified
	}
	for _, c := range checks {
		if _, ok := verified[c.DocumentID]; !ok {
			return dErrors.New(dErrors.CodeValidation, "unknown document "+c.DocumentID.String())
		}
		verified[c.DocumentID] = c.Verified
	}
	if isIncomplete {
		return nil
	}
	for _, ok := range verified {
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "all documents must be verified to complete intake")
		}
	}
	return nil
}

// ApplyIntake records document checks and moves to INTAKE_COMPLETE or INCOMPLETE.
func (a *Application) ApplyIntake(officer id.UserID, isIncomplete bool, notes string, checks []DocumentCheck, now time.Time) {
	for _, c := range checks {
		doc, ok := a.Document(c.DocumentID)
		if !ok {
			continue
		}
		doc.Verified = c.Verified
		if c.Verified {
			by, at := officer, now
			doc.VerifiedBy, doc.VerifiedAt = &by, &at
		} else {
			doc.VerifiedBy, doc.VerifiedAt = nil, nil
		}
	}
	a.Intake = &Intake{CompletedBy: officer, IsIncomplete: isIncomplete, Notes: notes, CompletedAt: now}
	if isIncomplete {
		a.Status = StatusIncomplete
	} else {
		a.Status = StatusIntakeComplete
	}
	a.touch(now)
}

// -----------------------------------------------------------------------------
// Assignment
// -----------------------------------------------------------------------------

func (a *Application) CanAssign(role AssignmentRole) error {
	t := role.Transition()
	if !t.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, t)
	}
	return nil
}

// ApplyAssignment sets the officer for the review track. Re-assignment
// replaces the previous officer.
func (a *Application) ApplyAssignment(role AssignmentRole, officer id.UserID, now time.Time) {
	o := officer
	if role == AssignmentLegal {
		a.AssignedLegalOfficerID = &o
		a.Status = StatusAssignedLegal
	} else {
		a.AssignedIntelligenceOfficerID = &o
		a.Status = StatusAssignedIntelligence
	}
	a.touch(now)
}

// -----------------------------------------------------------------------------
// Reviews
// -----------------------------------------------------------------------------

func (a *Application) CanSubmitSecurityClearance() error {
	if !TransitionSecurityClearance.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionSecurityClearance)
	}
	return nil
}

func (a *Application) ApplySecurityClearance(reviewer id.UserID, isCleared bool, risk RiskLevel, notes string, now time.Time) {
	decision := ClearanceDenied
	a.Status = StatusSecurityDenied
	if isCleared {
		decision = ClearanceCleared
		a.Status = StatusSecurityCleared
	}
	a.SecurityClearance = &SecurityClearance{
		Decision:  decision,
		DecidedBy: reviewer,
		RiskLevel: risk,
		Notes:     notes,
		DecidedAt: now,
	}
	a.touch(now)
}

func (a *Application) CanSubmitLegalReview() error {
	if !TransitionLegalReview.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionLegalReview)
	}
	return nil
}

func (a *Application) ApplyLegalReview(reviewer id.UserID, recommendation Decision, notes string, now time.Time) {
	a.LegalReview = &LegalReview{
		Recommendation: recommendation,
		ReviewedBy:     reviewer,
		Notes:          notes,
		ReviewedAt:     now,
	}
	a.Status = StatusPendingDecision
	a.touch(now)
}

// -----------------------------------------------------------------------------
// Decision
// -----------------------------------------------------------------------------

// CanApprove returns a conflict for terminal statuses and an invalid
// transition for any other status outside the source set. Approval also
// requires a granted security clearance, whichever review track led here.
func (a *Application) CanApprove() error {
	if a.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "application already in terminal status "+string(a.Status))
	}
	if !TransitionApprove.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionApprove)
	}
	if !a.SecurityClearance.Cleared() {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot approve from "+string(a.Status)+": security clearance has not been granted")
	}
	return nil
}

func (a *Application) ApplyApproval(approver id.UserID, notes string, now time.Time) {
	a.Decision = &FinalDecision{Outcome: DecisionApprove, DecidedBy: approver, Reason: notes, DecidedAt: now}
	a.Status = StatusApproved
	a.touch(now)
}

func (a *Application) CanReject() error {
	if a.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeConflict, "application already in terminal status "+string(a.Status))
	}
	if !TransitionReject.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionReject)
	}
	return nil
}

func (a *Application) ApplyRejection(decider id.UserID, reason string, now time.Time) {
	a.Decision = &FinalDecision{Outcome: DecisionReject, DecidedBy: decider, Reason: reason, DecidedAt: now}
	a.Status = StatusRejected
	a.touch(now)
}

// -----------------------------------------------------------------------------
// Appeal
// -----------------------------------------------------------------------------

// CanSubmitAppeal requires REJECTED, no active appeal, and the original applicant.
func (a *Application) CanSubmitAppeal(actor id.UserID) error {
	if actor != a.ApplicantID {
		return dErrors.New(dErrors.CodeForbidden, "only the original applicant may appeal")
	}
	if a.Status == StatusUnderAppeal {
		return dErrors.New(dErrors.CodeConflict, "an appeal is already pending")
	}
	if !TransitionSubmitAppeal.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionSubmitAppeal)
	}
	return nil
}

func (a *Application) ApplyAppeal(actor id.UserID, notes string, now time.Time) {
	a.Appeal = &Appeal{SubmittedBy: actor, Notes: notes, SubmittedAt: now}
	a.Status = StatusUnderAppeal
	a.touch(now)
}

func (a *Application) CanHandleAppeal() error {
	if !TransitionHandleAppeal.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionHandleAppeal)
	}
	if !a.Appeal.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "application under appeal has no active appeal")
	}
	return nil
}

// ApplyAppealDecision lands on APPROVED for APPROVE and APPEAL_DECLINED otherwise.
func (a *Application) ApplyAppealDecision(decider id.UserID, decision Decision, notes string, now time.Time) {
	by, at := decider, now
	a.Appeal.Decision = decision
	a.Appeal.DecidedBy = &by
	a.Appeal.DecidedAt = &at
	if decision == DecisionApprove {
		a.Decision = &FinalDecision{Outcome: DecisionApprove, DecidedBy: decider, Reason: notes, DecidedAt: now}
		a.Status = StatusApproved
	} else {
		a.Status = StatusAppealDeclined
	}
	a.touch(now)
}

// -----------------------------------------------------------------------------
// Certificate
// -----------------------------------------------------------------------------

func (a *Application) CanIssueCertificate() error {
	if !TransitionIssueCertificate.AllowedFrom(a.Status) {
		return ErrInvalidTransition(a.Status, TransitionIssueCertificate)
	}
	if a.Certificate != nil {
		return dErrors.New(dErrors.CodeConflict, "certificate already issued")
	}
	return nil
}

func (a *Application) ApplyCertificate(cert *Certificate, now time.Time) {
	a.Certificate = cert
	a.touch(now)
}
