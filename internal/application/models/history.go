package models

import (
	"time"

	"github.com/google/uuid"

	id "coopreg/pkg/domain"
)

// StatusHistoryEntry is one append-only record of a status change.
// FromStatus is empty for the creation entry.
type StatusHistoryEntry struct {
	ID            id.HistoryEntryID `json:"id"`
	ApplicationID id.ApplicationID  `json:"applicationId"`
	FromStatus    Status            `json:"fromStatus"`
	ToStatus      Status            `json:"toStatus"`
	Action        Action            `json:"action"`
	ActorID       id.UserID         `json:"actorId"`
	Notes         string            `json:"notes,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Change describes who performs a transition and why. Stores combine it with
// the observed before/after statuses to write the history entry.
type Change struct {
	Action  Action
	ActorID id.UserID
	Notes   string
	At      time.Time
}

// NewHistoryEntry builds the entry for a change from one status to another.
func NewHistoryEntry(appID id.ApplicationID, from, to Status, c Change) *StatusHistoryEntry {
	return &StatusHistoryEntry{
		ID:            id.HistoryEntryID(uuid.New()),
		ApplicationID: appID,
		FromStatus:    from,
		ToStatus:      to,
		Action:        c.Action,
		ActorID:       c.ActorID,
		Notes:         c.Notes,
		Timestamp:     c.At,
	}
}

// StatusChangedEvent is the notification payload emitted for every history entry.
type StatusChangedEvent struct {
	EventID       string    `json:"eventId"`
	TenantID      string    `json:"tenantId"`
	ApplicationID string    `json:"applicationId"`
	Action        string    `json:"action"`
	FromStatus    string    `json:"fromStatus,omitempty"`
	ToStatus      string    `json:"toStatus"`
	ActorID       string    `json:"actorId"`
	Notes         string    `json:"notes,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// EventTypeStatusChanged is the outbox event type for StatusChangedEvent.
const EventTypeStatusChanged = "application.status_changed"

// StatusChanged derives the notification payload from a history entry.
func StatusChanged(tenantID id.TenantID, e *StatusHistoryEntry) StatusChangedEvent {
	return StatusChangedEvent{
		EventID:       e.ID.String(),
		TenantID:      tenantID.String(),
		ApplicationID: e.ApplicationID.String(),
		Action:        string(e.Action),
		FromStatus:    string(e.FromStatus),
		ToStatus:      string(e.ToStatus),
		ActorID:       e.ActorID.String(),
		Notes:         e.Notes,
		OccurredAt:    e.Timestamp,
	}
}

type Channel string

const (
	ChannelEmail   Channel = "EMAIL"
	ChannelPhone   Channel = "PHONE"
	ChannelLetter  Channel = "LETTER"
	ChannelMeeting Channel = "MEETING"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelPhone, ChannelLetter, ChannelMeeting:
		return true
	}
	return false
}

// Communication is correspondence an officer logged against an application.
// It never changes status.
type Communication struct {
	ID            id.CommunicationID `json:"id"`
	ApplicationID id.ApplicationID   `json:"applicationId"`
	ActorID       id.UserID          `json:"actorId"`
	Channel       Channel            `json:"channel"`
	Subject       string             `json:"subject"`
	Message       string             `json:"message"`
	CreatedAt     time.Time          `json:"createdAt"`
}

func NewCommunication(appID id.ApplicationID, actor id.UserID, req *LogCommunicationRequest, now time.Time) *Communication {
	return &Communication{
		ID:            id.CommunicationID(uuid.New()),
		ApplicationID: appID,
		ActorID:       actor,
		Channel:       req.Channel,
		Subject:       req.Subject,
		Message:       req.Message,
		CreatedAt:     now,
	}
}
