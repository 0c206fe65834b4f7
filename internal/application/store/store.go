// Package store persists applications with their history, communications and
// outbox events.
//
// Both implementations expose Execute, which holds the application lock (a
// mutex in memory, SELECT ... FOR UPDATE in Postgres) across the caller's
// validate and mutate callbacks. The status history entry and the outbox
// event are written in the same unit of work as the mutation: either all three
// persist or none do.
package store

import (
	"encoding/json"
	"fmt"

	"coopreg/internal/application/models"
	audit "coopreg/pkg/platform/audit"
)

// AggregateType tags outbox events produced by this store.
const AggregateType = "application"

// ValidateFunc checks preconditions against the locked application.
type ValidateFunc func(*models.Application) error

// MutateFunc applies the change to the locked application.
type MutateFunc func(*models.Application)

func statusEvent(app *models.Application, entry *models.StatusHistoryEntry) (audit.Event, error) {
	payload, err := json.Marshal(models.StatusChanged(app.TenantID, entry))
	if err != nil {
		return audit.Event{}, fmt.Errorf("marshal status event: %w", err)
	}
	return audit.NewEvent(
		AggregateType,
		app.ID.String(),
		app.TenantID.String(),
		models.EventTypeStatusChanged,
		payload,
		entry.Timestamp,
	), nil
}
