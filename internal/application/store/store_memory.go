package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	audit "coopreg/pkg/platform/audit"
	"coopreg/pkg/platform/sentinel"
)

// InMemory is a single-process store. One mutex guards applications, history
// and communications, so Execute serializes every transition.
type InMemory struct {
	mu           sync.RWMutex
	applications map[id.ApplicationID]*models.Application
	history      map[id.ApplicationID][]*models.StatusHistoryEntry
	comms        map[id.ApplicationID][]*models.Communication
	certificates map[string]id.ApplicationID
	outbox       audit.Outbox
}

type MemoryOption func(*InMemory)

// WithMemoryOutbox appends a status event for every history entry.
func WithMemoryOutbox(o audit.Outbox) MemoryOption {
	return func(s *InMemory) {
		s.outbox = o
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{
		applications: make(map[id.ApplicationID]*models.Application),
		history:      make(map[id.ApplicationID][]*models.StatusHistoryEntry),
		comms:        make(map[id.ApplicationID][]*models.Communication),
		certificates: make(map[string]id.ApplicationID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Create(ctx context.Context, app *models.Application, entry *models.StatusHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.applications[app.ID]; exists {
		return fmt.Errorf("application %s: %w", app.ID, sentinel.ErrConflict)
	}
	if err := s.appendEvent(ctx, app, entry); err != nil {
		return err
	}
	s.applications[app.ID] = app.Clone()
	s.history[app.ID] = append(s.history[app.ID], cloneEntry(entry))
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[appID]
	if !ok || app.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

// List returns matching applications newest first.
func (s *InMemory) List(_ context.Context, tenantID id.TenantID, filter models.ListFilter) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Application, 0)
	for _, app := range s.applications {
		if app.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.ApplicantID != nil && app.ApplicantID != *filter.ApplicantID {
			continue
		}
		out = append(out, app.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Application) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Execute runs validate then mutate on a copy while holding the write lock.
// The copy replaces the stored application only when every write succeeds.
func (s *InMemory) Execute(
	ctx context.Context,
	tenantID id.TenantID,
	appID id.ApplicationID,
	change models.Change,
	validate ValidateFunc,
	mutate MutateFunc,
) (*models.Application, *models.StatusHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.applications[appID]
	if !ok || current.TenantID != tenantID {
		return nil, nil, sentinel.ErrNotFound
	}
	working := current.Clone()
	if err := validate(working); err != nil {
		return nil, nil, err
	}
	from := working.Status
	mutate(working)
	working.Version = current.Version + 1

	if working.Certificate != nil && current.Certificate == nil {
		if owner, taken := s.certificates[working.Certificate.Number]; taken && owner != appID {
			return nil, nil, fmt.Errorf("certificate number %s: %w", working.Certificate.Number, sentinel.ErrConflict)
		}
	}

	entry := models.NewHistoryEntry(appID, from, working.Status, change)
	if err := s.appendEvent(ctx, working, entry); err != nil {
		return nil, nil, err
	}

	s.applications[appID] = working
	s.history[appID] = append(s.history[appID], entry)
	if working.Certificate != nil {
		s.certificates[working.Certificate.Number] = appID
	}
	return working.Clone(), cloneEntry(entry), nil
}

func (s *InMemory) ListHistory(_ context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.StatusHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[appID]
	if !ok || app.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.StatusHistoryEntry, 0, len(s.history[appID]))
	for _, e := range s.history[appID] {
		out = append(out, cloneEntry(e))
	}
	return out, nil
}

func (s *InMemory) AddCommunication(_ context.Context, tenantID id.TenantID, c *models.Communication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[c.ApplicationID]
	if !ok || app.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	v := *c
	s.comms[c.ApplicationID] = append(s.comms[c.ApplicationID], &v)
	return nil
}

func (s *InMemory) ListCommunications(_ context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[appID]
	if !ok || app.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	out := make([]*models.Communication, 0, len(s.comms[appID]))
	for _, c := range s.comms[appID] {
		v := *c
		out = append(out, &v)
	}
	return out, nil
}

func (s *InMemory) appendEvent(ctx context.Context, app *models.Application, entry *models.StatusHistoryEntry) error {
	if s.outbox == nil {
		return nil
	}
	event, err := statusEvent(app, entry)
	if err != nil {
		return err
	}
	if err := s.outbox.Append(ctx, event); err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	return nil
}

func cloneEntry(e *models.StatusHistoryEntry) *models.StatusHistoryEntry {
	v := *e
	return &v
}
