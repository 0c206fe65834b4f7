package models

import id "coopreg/pkg/domain"

// ResultError is the per-item failure in a bulk response.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkAssignResult reports the outcome for one id of a bulk assignment.
// Exactly one of Application and Error is set.
type BulkAssignResult struct {
	ApplicationID id.ApplicationID `json:"applicationId"`
	Application   *Application     `json:"application,omitempty"`
	Error         *ResultError     `json:"error,omitempty"`
}

// Succeeded reports whether the assignment for this id was persisted.
func (r BulkAssignResult) Succeeded() bool {
	return r.Error == nil
}

// DecisionResponse wraps the application after a decision-bearing transition.
type DecisionResponse struct {
	Message     string       `json:"message"`
	Application *Application `json:"application"`
}

type CertificateResponse struct {
	Message     string       `json:"message"`
	Certificate *Certificate `json:"certificate"`
}

type ApplicationsResponse struct {
	Applications []*Application `json:"applications"`
}

type HistoryResponse struct {
	History []*StatusHistoryEntry `json:"history"`
}

type CommunicationsResponse struct {
	Communications []*Communication `json:"communications"`
}

type BulkAssignResponse struct {
	Results []BulkAssignResult `json:"results"`
}
