package models

import (
	"fmt"

	dErrors "coopreg/pkg/domain-errors"
)

// Transition identifies one edge family of the workflow. Assignment is split
// by reviewer role because each role has its own source set.
type Transition string

const (
	TransitionCompleteIntake     Transition = "complete_intake"
	TransitionAssignIntelligence Transition = "assign_intelligence"
	TransitionAssignLegal        Transition = "assign_legal"
	TransitionSecurityClearance  Transition = "security_clearance"
	TransitionLegalReview        Transition = "legal_review"
	TransitionApprove            Transition = "approve"
	TransitionReject             Transition = "reject"
	TransitionSubmitAppeal       Transition = "submit_appeal"
	TransitionHandleAppeal       Transition = "handle_appeal"
	TransitionIssueCertificate   Transition = "issue_certificate"
)

// transitionSources is the canonical precondition table: a transition may
// only start from one of the listed statuses.
var transitionSources = map[Transition][]Status{
	TransitionCompleteIntake:     {StatusSubmitted},
	TransitionAssignIntelligence: {StatusIntakeComplete, StatusAssignedIntelligence},
	TransitionAssignLegal:        {StatusIntakeComplete, StatusAssignedLegal, StatusSecurityCleared},
	TransitionSecurityClearance:  {StatusAssignedIntelligence},
	TransitionLegalReview:        {StatusAssignedLegal},
	TransitionApprove:            {StatusPendingDecision, StatusSecurityCleared},
	TransitionReject:             {StatusIncomplete, StatusSecurityCleared, StatusSecurityDenied, StatusPendingDecision},
	TransitionSubmitAppeal:       {StatusRejected},
	TransitionHandleAppeal:       {StatusUnderAppeal},
	TransitionIssueCertificate:   {StatusApproved},
}

// Sources returns the statuses t may start from.
func (t Transition) Sources() []Status {
	src := transitionSources[t]
	out := make([]Status, len(src))
	copy(out, src)
	return out
}

// AllowedFrom reports whether t may start from s.
func (t Transition) AllowedFrom(s Status) bool {
	for _, src := range transitionSources[t] {
		if src == s {
			return true
		}
	}
	return false
}

// Transitions lists every transition in the table.
func Transitions() []Transition {
	return []Transition{
		TransitionCompleteIntake,
		TransitionAssignIntelligence,
		TransitionAssignLegal,
		TransitionSecurityClearance,
		TransitionLegalReview,
		TransitionApprove,
		TransitionReject,
		TransitionSubmitAppeal,
		TransitionHandleAppeal,
		TransitionIssueCertificate,
	}
}

// ErrInvalidTransition builds the client-visible error for a disallowed source status.
func ErrInvalidTransition(current Status, t Transition) error {
	return dErrors.New(dErrors.CodeInvalidTransition,
		fmt.Sprintf("cannot %s application in status %s", humanize(t), current))
}

func humanize(t Transition) string {
	switch t {
	case TransitionCompleteIntake:
		return "complete intake for"
	case TransitionAssignIntelligence:
		return "assign intelligence review for"
	case TransitionAssignLegal:
		return "assign legal review for"
	case TransitionSecurityClearance:
		return "record security clearance for"
	case TransitionLegalReview:
		return "record legal review for"
	case TransitionSubmitAppeal:
		return "appeal"
	case TransitionHandleAppeal:
		return "decide appeal for"
	case TransitionIssueCertificate:
		return "issue certificate for"
	default:
		return string(t)
	}
}
