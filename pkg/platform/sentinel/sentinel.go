package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrConflict: a uniqueness constraint or optimistic version check failed
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
