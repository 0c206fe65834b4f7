package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	dErrors "coopreg/pkg/domain-errors"
	audit "coopreg/pkg/platform/audit"
	outboxmemory "coopreg/pkg/platform/audit/store/memory"
	"coopreg/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	outbox *outboxmemory.InMemoryStore
	store  *InMemory
	ctx    context.Context
	tenant id.TenantID
	now    time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.outbox = outboxmemory.NewInMemoryStore()
	s.store = NewInMemory(WithMemoryOutbox(s.outbox))
	s.ctx = context.Background()
	s.tenant = id.TenantID(uuid.New())
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) create() *models.Application {
	applicant := id.UserID(uuid.New())
	app, err := models.NewApplication(s.tenant, applicant, &models.CreateApplicationRequest{
		ApplicationType: models.ApplicationTypeCooperative,
		ProposedName:    "Mwanga SACCOS",
		PrimaryContact:  models.Contact{Name: "Neema", Email: "neema@example.com", Phone: "+255700000001"},
		PhysicalAddress: "Plot 4, Dodoma",
		Documents:       []models.DocumentInput{{Type: "constitution", URL: "https://docs.example.com/c.pdf"}},
	}, s.now)
	s.Require().NoError(err)
	entry := models.NewHistoryEntry(app.ID, "", app.Status, models.Change{Action: models.ActionCreate, ActorID: applicant, At: s.now})
	s.Require().NoError(s.store.Create(s.ctx, app, entry))
	return app
}

func (s *InMemoryStoreSuite) change(action models.Action) models.Change {
	return models.Change{Action: action, ActorID: id.UserID(uuid.New()), At: s.now.Add(time.Minute)}
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	s.Run("round trips and records creation history", func() {
		app := s.create()

		found, err := s.store.FindByID(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.Len(found.Documents, 1)

		history, err := s.store.ListHistory(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		s.Require().Len(history, 1)
		s.Equal(models.Status(""), history[0].FromStatus)
		s.Equal(models.StatusSubmitted, history[0].ToStatus)
	})

	s.Run("hides applications of other tenants", func() {
		app := s.create()
		_, err := s.store.FindByID(s.ctx, id.TenantID(uuid.New()), app.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned copies do not alias stored state", func() {
		app := s.create()
		found, err := s.store.FindByID(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		found.Status = models.StatusApproved
		found.Documents[0].Verified = true

		again, err := s.store.FindByID(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, again.Status)
		s.False(again.Documents[0].Verified)
	})
}

func (s *InMemoryStoreSuite) TestExecute() {
	s.Run("applies mutation with history and outbox event", func() {
		app := s.create()
		before := len(s.outbox.Pending())

		updated, entry, err := s.store.Execute(s.ctx, s.tenant, app.ID, s.change(models.ActionCompleteIntake),
			func(a *models.Application) error { return a.CanCompleteIntake(true, nil) },
			func(a *models.Application) { a.ApplyIntake(id.UserID(uuid.New()), true, "missing bylaws", nil, s.now) },
		)
		s.Require().NoError(err)
		s.Equal(models.StatusIncomplete, updated.Status)
		s.Equal(2, updated.Version)
		s.Equal(models.StatusSubmitted, entry.FromStatus)
		s.Equal(models.StatusIncomplete, entry.ToStatus)

		history, err := s.store.ListHistory(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		s.Len(history, 2)

		pending := s.outbox.Pending()
		s.Require().Len(pending, before+1)
		last := pending[len(pending)-1]
		s.Equal(models.EventTypeStatusChanged, last.EventType)
		s.Equal(app.ID.String(), last.AggregateID)
	})

	s.Run("validation failure leaves state and history untouched", func() {
		app := s.create()
		before := len(s.outbox.Pending())

		_, _, err := s.store.Execute(s.ctx, s.tenant, app.ID, s.change(models.ActionApprove),
			func(a *models.Application) error { return a.CanApprove() },
			func(a *models.Application) { a.ApplyApproval(id.UserID(uuid.New()), "", s.now) },
		)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		found, err := s.store.FindByID(s.ctx, s.tenant, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, found.Status)
		s.Equal(1, found.Version)
		history, _ := s.store.ListHistory(s.ctx, s.tenant, app.ID)
		s.Len(history, 1)
		s.Len(s.outbox.Pending(), before)
	})

	s.Run("outbox failure aborts the transition", func() {
		store := NewInMemory(WithMemoryOutbox(failingOutbox{}))
		app, err := models.NewApplication(s.tenant, id.UserID(uuid.New()), &models.CreateApplicationRequest{
			ApplicationType: models.ApplicationTypeSociety,
			ProposedName:    "Umoja",
		}, s.now)
		s.Require().NoError(err)
		entry := models.NewHistoryEntry(app.ID, "", app.Status, s.change(models.ActionCreate))
		s.Require().Error(store.Create(s.ctx, app, entry))

		_, err = store.FindByID(s.ctx, s.tenant, app.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown application", func() {
		_, _, err := s.store.Execute(s.ctx, s.tenant, id.ApplicationID(uuid.New()), s.change(models.ActionApprove),
			func(*models.Application) error { return nil },
			func(*models.Application) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentApprove verifies only one of many racing approvals succeeds.
func (s *InMemoryStoreSuite) TestConcurrentApprove() {
	app := s.create()
	_, _, err := s.store.Execute(s.ctx, s.tenant, app.ID, s.change(models.ActionCompleteIntake),
		func(a *models.Application) error { return nil },
		func(a *models.Application) {
			a.SecurityClearance = &models.SecurityClearance{Decision: models.ClearanceCleared}
			a.Status = models.StatusPendingDecision
		},
	)
	s.Require().NoError(err)

	const goroutines = 20
	var wg sync.WaitGroup
	var succeeded, conflicted atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.store.Execute(s.ctx, s.tenant, app.ID, s.change(models.ActionApprove),
				func(a *models.Application) error { return a.CanApprove() },
				func(a *models.Application) { a.ApplyApproval(id.UserID(uuid.New()), "", s.now) },
			)
			switch {
			case err == nil:
				succeeded.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(goroutines-1), conflicted.Load())
}

func (s *InMemoryStoreSuite) TestList() {
	first := s.create()
	second := s.create()
	_, _, err := s.store.Execute(s.ctx, s.tenant, second.ID, s.change(models.ActionCompleteIntake),
		func(a *models.Application) error { return nil },
		func(a *models.Application) { a.ApplyIntake(id.UserID(uuid.New()), true, "", nil, s.now) },
	)
	s.Require().NoError(err)

	s.Run("filters by status", func() {
		apps, err := s.store.List(s.ctx, s.tenant, models.ListFilter{Status: models.StatusSubmitted})
		s.Require().NoError(err)
		s.Require().Len(apps, 1)
		s.Equal(first.ID, apps[0].ID)
	})

	s.Run("filters by applicant", func() {
		applicant := first.ApplicantID
		apps, err := s.store.List(s.ctx, s.tenant, models.ListFilter{ApplicantID: &applicant})
		s.Require().NoError(err)
		s.Require().Len(apps, 1)
		s.Equal(first.ID, apps[0].ID)
	})

	s.Run("scoped to tenant", func() {
		apps, err := s.store.List(s.ctx, id.TenantID(uuid.New()), models.ListFilter{})
		s.Require().NoError(err)
		s.Empty(apps)
	})
}

func (s *InMemoryStoreSuite) TestCommunications() {
	app := s.create()
	comm := models.NewCommunication(app.ID, id.UserID(uuid.New()), &models.LogCommunicationRequest{
		Channel: models.ChannelPhone,
		Subject: "Missing bylaws",
		Message: "Called the contact person",
	}, s.now)

	s.Require().NoError(s.store.AddCommunication(s.ctx, s.tenant, comm))
	comms, err := s.store.ListCommunications(s.ctx, s.tenant, app.ID)
	s.Require().NoError(err)
	s.Require().Len(comms, 1)
	s.Equal("Missing bylaws", comms[0].Subject)

	s.Run("rejects unknown application", func() {
		other := *comm
		other.ApplicationID = id.ApplicationID(uuid.New())
		s.ErrorIs(s.store.AddCommunication(s.ctx, s.tenant, &other), sentinel.ErrNotFound)
	})
}

type failingOutbox struct{}

func (failingOutbox) Append(context.Context, audit.Event) error {
	return errors.New("outbox unavailable")
}
