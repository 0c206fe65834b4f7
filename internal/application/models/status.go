package models

// Status is the workflow position of an application.
type Status string

const (
	StatusDraft                Status = "DRAFT"
	StatusSubmitted            Status = "SUBMITTED"
	StatusIntakeComplete       Status = "INTAKE_COMPLETE"
	StatusIncomplete           Status = "INCOMPLETE"
	StatusAssignedIntelligence Status = "ASSIGNED_INTELLIGENCE"
	StatusAssignedLegal        Status = "ASSIGNED_LEGAL"
	StatusSecurityCleared      Status = "SECURITY_CLEARED"
	StatusSecurityDenied       Status = "SECURITY_DENIED"
	StatusPendingDecision      Status = "PENDING_DECISION"
	StatusApproved             Status = "APPROVED"
	StatusRejected             Status = "REJECTED"
	StatusUnderAppeal          Status = "UNDER_APPEAL"
	StatusAppealApproved       Status = "APPEAL_APPROVED"
	StatusAppealDeclined       Status = "APPEAL_DECLINED"
)

var allStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusIntakeComplete,
	StatusIncomplete,
	StatusAssignedIntelligence,
	StatusAssignedLegal,
	StatusSecurityCleared,
	StatusSecurityDenied,
	StatusPendingDecision,
	StatusApproved,
	StatusRejected,
	StatusUnderAppeal,
	StatusAppealApproved,
	StatusAppealDeclined,
}

// Statuses returns every status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave s.
// APPROVED still admits certificate issuance, which does not change status.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusAppealDeclined
}

func (s Status) String() string {
	return string(s)
}

// Action names a workflow operation. Actions are the unit of both the
// role gate and the transition table.
type Action string

const (
	ActionCreate           Action = "create"
	ActionView             Action = "view"
	ActionList             Action = "list"
	ActionViewHistory      Action = "view_history"
	ActionCompleteIntake   Action = "complete_intake"
	ActionAssign           Action = "assign"
	ActionBulkAssign       Action = "bulk_assign"
	ActionLogCommunication Action = "log_communication"
	ActionSecurityClear    Action = "security_clearance"
	ActionLegalReview      Action = "legal_review"
	ActionApprove          Action = "approve"
	ActionReject           Action = "reject"
	ActionSubmitAppeal     Action = "submit_appeal"
	ActionHandleAppeal     Action = "handle_appeal"
	ActionIssueCertificate Action = "issue_certificate"
)

// Actions lists every action in a stable order.
var Actions = []Action{
	ActionCreate,
	ActionView,
	ActionList,
	ActionViewHistory,
	ActionCompleteIntake,
	ActionAssign,
	ActionBulkAssign,
	ActionLogCommunication,
	ActionSecurityClear,
	ActionLegalReview,
	ActionApprove,
	ActionReject,
	ActionSubmitAppeal,
	ActionHandleAppeal,
	ActionIssueCertificate,
}

func (a Action) String() string {
	return string(a)
}
