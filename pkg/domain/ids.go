// Package domain holds typed identifiers shared across bounded contexts.
//
// Every identifier is a distinct named UUID type so that an ApplicationID can
// never be passed where a UserID is expected. Parse functions are the trust
// boundary: they reject empty, malformed and nil UUIDs.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "coopreg/pkg/domain-errors"
)

type (
	TenantID        uuid.UUID
	UserID          uuid.UUID
	ApplicationID   uuid.UUID
	DocumentID      uuid.UUID
	CertificateID   uuid.UUID
	CommunicationID uuid.UUID
	HistoryEntryID  uuid.UUID
	EventID         uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" || strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	if !utf8.ValidString(s) || len(s) > 64 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID("tenant id", s)
	return TenantID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

func ParseApplicationID(s string) (ApplicationID, error) {
	u, err := parseUUID("application id", s)
	return ApplicationID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID("document id", s)
	return DocumentID(u), err
}

func (id TenantID) String() string        { return uuid.UUID(id).String() }
func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id ApplicationID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string      { return uuid.UUID(id).String() }
func (id CertificateID) String() string   { return uuid.UUID(id).String() }
func (id CommunicationID) String() string { return uuid.UUID(id).String() }
func (id HistoryEntryID) String() string  { return uuid.UUID(id).String() }
func (id EventID) String() string         { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// JSON encodes IDs as their canonical string form.

func (id TenantID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id UserID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id CertificateID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id CommunicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id HistoryEntryID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *UserID) UnmarshalText(b []byte) error          { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ApplicationID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *DocumentID) UnmarshalText(b []byte) error      { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CertificateID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CommunicationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *HistoryEntryID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error         { return (*uuid.UUID)(id).UnmarshalText(b) }
