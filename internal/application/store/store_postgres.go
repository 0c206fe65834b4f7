package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"coopreg/internal/application/models"
	id "coopreg/pkg/domain"
	audit "coopreg/pkg/platform/audit"
	"coopreg/pkg/platform/sentinel"
	txcontext "coopreg/pkg/platform/tx"
)

const uniqueViolation = "23505"

const applicationColumns = `id, tenant_id, applicant_id, application_type, proposed_name, primary_contact,
	physical_address, status, assigned_intelligence_officer_id, assigned_legal_officer_id,
	intake, security_clearance, legal_review, decision, appeal, certificate,
	version, created_at, updated_at`

// Postgres persists applications in PostgreSQL. Detail records that are
// written once per stage are stored as JSONB columns on the application row.
type Postgres struct {
	db     *sql.DB
	outbox audit.Outbox
}

type PostgresOption func(*Postgres)

// WithPostgresOutbox appends a status event inside each transaction.
// The outbox must join the transaction carried in ctx.
func WithPostgresOutbox(o audit.Outbox) PostgresOption {
	return func(s *Postgres) {
		s.outbox = o
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	s := &Postgres{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) Create(ctx context.Context, app *models.Application, entry *models.StatusHistoryEntry) error {
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertApplication(ctx, tx, app); err != nil {
			return err
		}
		for i, doc := range app.Documents {
			if err := insertDocument(ctx, tx, app.ID, i, doc); err != nil {
				return err
			}
		}
		if err := insertHistory(ctx, tx, app.TenantID, entry); err != nil {
			return err
		}
		return s.appendEvent(ctx, app, entry)
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("create application: %w", sentinel.ErrConflict)
	}
	return err
}

func (s *Postgres) FindByID(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND tenant_id = $2`,
		appID.String(), tenantID.String())
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	if err := loadDocuments(ctx, s.db, []*models.Application{app}); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns matching applications newest first.
func (s *Postgres) List(ctx context.Context, tenantID id.TenantID, filter models.ListFilter) ([]*models.Application, error) {
	var applicant any
	if filter.ApplicantID != nil {
		applicant = filter.ApplicantID.String()
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE tenant_id = $1
		  AND ($2::text = '' OR status = $2::text)
		  AND ($3::uuid IS NULL OR applicant_id = $3::uuid)
		ORDER BY created_at DESC, id
	`, tenantID.String(), string(filter.Status), applicant)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	if err := loadDocuments(ctx, s.db, apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// Execute locks the application row with SELECT ... FOR UPDATE, runs validate
// and mutate, then writes the row, changed documents, the history entry and
// the outbox event before committing.
func (s *Postgres) Execute(
	ctx context.Context,
	tenantID id.TenantID,
	appID id.ApplicationID,
	change models.Change,
	validate ValidateFunc,
	mutate MutateFunc,
) (*models.Application, *models.StatusHistoryEntry, error) {
	var (
		result *models.Application
		entry  *models.StatusHistoryEntry
	)
	err := txcontext.RunInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND tenant_id = $2 FOR UPDATE`,
			appID.String(), tenantID.String())
		current, err := scanApplication(row)
		if err != nil {
			return err
		}
		if err := loadDocuments(ctx, tx, []*models.Application{current}); err != nil {
			return err
		}

		working := current.Clone()
		if err := validate(working); err != nil {
			return err
		}
		from := working.Status
		mutate(working)
		working.Version = current.Version + 1

		if err := updateApplication(ctx, tx, working, current.Version); err != nil {
			return err
		}
		for i, doc := range working.Documents {
			if documentChanged(current.Documents[i], doc) {
				if err := updateDocument(ctx, tx, doc); err != nil {
					return err
				}
			}
		}
		entry = models.NewHistoryEntry(appID, from, working.Status, change)
		if err := insertHistory(ctx, tx, tenantID, entry); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, working, entry); err != nil {
			return err
		}
		result = working
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, fmt.Errorf("update application: %w", sentinel.ErrConflict)
		}
		return nil, nil, err
	}
	return result, entry, nil
}

func (s *Postgres) ListHistory(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.StatusHistoryEntry, error) {
	if err := s.requireApplication(ctx, tenantID, appID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, from_status, to_status, action, actor_id, notes, created_at
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY seq
	`, appID.String())
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.StatusHistoryEntry, 0)
	for rows.Next() {
		var (
			e                      models.StatusHistoryEntry
			entryID, applicationID uuid.UUID
			actorID                uuid.UUID
			from, to, action       string
		)
		if err := rows.Scan(&entryID, &applicationID, &from, &to, &action, &actorID, &e.Notes, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.ID = id.HistoryEntryID(entryID)
		e.ApplicationID = id.ApplicationID(applicationID)
		e.FromStatus = models.Status(from)
		e.ToStatus = models.Status(to)
		e.Action = models.Action(action)
		e.ActorID = id.UserID(actorID)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// AddCommunication inserts only when the application exists in the tenant.
func (s *Postgres) AddCommunication(ctx context.Context, tenantID id.TenantID, c *models.Communication) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO application_communications (id, application_id, tenant_id, actor_id, channel, subject, message, created_at)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::uuid, $5, $6, $7, $8::timestamptz
		WHERE EXISTS (SELECT 1 FROM applications WHERE id = $2::uuid AND tenant_id = $3::uuid)
	`,
		c.ID.String(),
		c.ApplicationID.String(),
		tenantID.String(),
		c.ActorID.String(),
		string(c.Channel),
		c.Subject,
		c.Message,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert communication: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert communication: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListCommunications(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) ([]*models.Communication, error) {
	if err := s.requireApplication(ctx, tenantID, appID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, actor_id, channel, subject, message, created_at
		FROM application_communications
		WHERE application_id = $1
		ORDER BY created_at, id
	`, appID.String())
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Communication, 0)
	for rows.Next() {
		var (
			c                            models.Communication
			commID, applicationID, actor uuid.UUID
			channel                      string
		)
		if err := rows.Scan(&commID, &applicationID, &actor, &channel, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		c.ID = id.CommunicationID(commID)
		c.ApplicationID = id.ApplicationID(applicationID)
		c.ActorID = id.UserID(actor)
		c.Channel = models.Channel(channel)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communications: %w", err)
	}
	return out, nil
}

func (s *Postgres) requireApplication(ctx context.Context, tenantID id.TenantID, appID id.ApplicationID) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1 AND tenant_id = $2)`,
		appID.String(), tenantID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check application: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) appendEvent(ctx context.Context, app *models.Application, entry *models.StatusHistoryEntry) error {
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

// -----------------------------------------------------------------------------
// Rows
// -----------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                                                  models.Application
		appID, tenantID, applicantID                         uuid.UUID
		intelligence, legal                                  uuid.NullUUID
		appType, status                                      string
		contact                                              []byte
		intake, clearance, review, decision, appeal, certRaw []byte
	)
	err := row.Scan(
		&appID, &tenantID, &applicantID, &appType, &app.ProposedName, &contact,
		&app.PhysicalAddress, &status, &intelligence, &legal,
		&intake, &clearance, &review, &decision, &appeal, &certRaw,
		&app.Version, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.TenantID = id.TenantID(tenantID)
	app.ApplicantID = id.UserID(applicantID)
	app.ApplicationType = models.ApplicationType(appType)
	app.Status = models.Status(status)
	app.AssignedIntelligenceOfficerID = userPtr(intelligence)
	app.AssignedLegalOfficerID = userPtr(legal)
	app.Documents = []models.Document{}

	if err := json.Unmarshal(contact, &app.PrimaryContact); err != nil {
		return nil, fmt.Errorf("decode primary contact: %w", err)
	}
	if app.Intake, err = decodeColumn[models.Intake](intake); err != nil {
		return nil, err
	}
	if app.SecurityClearance, err = decodeColumn[models.SecurityClearance](clearance); err != nil {
		return nil, err
	}
	if app.LegalReview, err = decodeColumn[models.LegalReview](review); err != nil {
		return nil, err
	}
	if app.Decision, err = decodeColumn[models.FinalDecision](decision); err != nil {
		return nil, err
	}
	if app.Appeal, err = decodeColumn[models.Appeal](appeal); err != nil {
		return nil, err
	}
	if app.Certificate, err = decodeColumn[models.Certificate](certRaw); err != nil {
		return nil, err
	}
	return &app, nil
}

// loadDocuments fills Documents for every application with one query.
func loadDocuments(ctx context.Context, q querier, apps []*models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]string, len(apps))
	byID := make(map[id.ApplicationID]*models.Application, len(apps))
	for i, app := range apps {
		ids[i] = app.ID.String()
		byID[app.ID] = app
	}
	rows, err := q.QueryContext(ctx, `
		SELECT id, application_id, type, url, verified, verified_by, verified_at
		FROM application_documents
		WHERE application_id = ANY($1::uuid[])
		ORDER BY application_id, position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			doc          models.Document
			docID, appID uuid.UUID
			verifiedBy   uuid.NullUUID
			verifiedAt   sql.NullTime
		)
		if err := rows.Scan(&docID, &appID, &doc.Type, &doc.URL, &doc.Verified, &verifiedBy, &verifiedAt); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		doc.ID = id.DocumentID(docID)
		doc.VerifiedBy = userPtr(verifiedBy)
		if verifiedAt.Valid {
			t := verifiedAt.Time
			doc.VerifiedAt = &t
		}
		if app, ok := byID[id.ApplicationID(appID)]; ok {
			app.Documents = append(app.Documents, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate documents: %w", err)
	}
	return nil
}

func insertApplication(ctx context.Context, q querier, app *models.Application) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, args...)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// updateApplication writes the mutable columns guarded by the version read
// under the row lock.
func updateApplication(ctx context.Context, q querier, app *models.Application, expectedVersion int) error {
	details, err := detailColumns(app)
	if err != nil {
		return err
	}
	args := []any{
		app.ID.String(),
		app.TenantID.String(),
		expectedVersion,
		string(app.Status),
		nullableUser(app.AssignedIntelligenceOfficerID),
		nullableUser(app.AssignedLegalOfficerID),
	}
	args = append(args, details...)
	args = append(args, app.Version, app.UpdatedAt)
	res, err := q.ExecContext(ctx, `
		UPDATE applications SET
			status = $4,
			assigned_intelligence_officer_id = $5,
			assigned_legal_officer_id = $6,
			intake = $7,
			security_clearance = $8,
			legal_review = $9,
			decision = $10,
			appeal = $11,
			certificate = $12,
			version = $13,
			updated_at = $14
		WHERE id = $1 AND tenant_id = $2 AND version = $3
	`, args...)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %s version %d: %w", app.ID, expectedVersion, sentinel.ErrConflict)
	}
	return nil
}

// applicationArgs orders values to match applicationColumns.
func applicationArgs(app *models.Application) ([]any, error) {
	contact, err := json.Marshal(app.PrimaryContact)
	if err != nil {
		return nil, fmt.Errorf("encode primary contact: %w", err)
	}
	details, err := detailColumns(app)
	if err != nil {
		return nil, err
	}
	args := []any{
		app.ID.String(),
		app.TenantID.String(),
		app.ApplicantID.String(),
		string(app.ApplicationType),
		app.ProposedName,
		string(contact),
		app.PhysicalAddress,
		string(app.Status),
		nullableUser(app.AssignedIntelligenceOfficerID),
		nullableUser(app.AssignedLegalOfficerID),
	}
	args = append(args, details...)
	return append(args, app.Version, app.CreatedAt, app.UpdatedAt), nil
}

// detailColumns encodes the JSONB stage records in column order.
func detailColumns(app *models.Application) ([]any, error) {
	details := make([]any, 0, 6)
	for _, v := range []any{app.Intake, app.SecurityClearance, app.LegalReview, app.Decision, app.Appeal, app.Certificate} {
		col, err := encodeColumn(v)
		if err != nil {
			return nil, err
		}
		details = append(details, col)
	}
	return details, nil
}

func insertDocument(ctx context.Context, q querier, appID id.ApplicationID, position int, doc models.Document) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO application_documents (id, application_id, position, type, url, verified, verified_by, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, doc.ID.String(), appID.String(), position, doc.Type, doc.URL, doc.Verified, nullableUser(doc.VerifiedBy), nullableTime(doc.VerifiedAt))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func updateDocument(ctx context.Context, q querier, doc models.Document) error {
	_, err := q.ExecContext(ctx,
		`UPDATE application_documents SET verified = $2, verified_by = $3, verified_at = $4 WHERE id = $1`,
		doc.ID.String(), doc.Verified, nullableUser(doc.VerifiedBy), nullableTime(doc.VerifiedAt))
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, q querier, tenantID id.TenantID, e *models.StatusHistoryEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO application_status_history (id, application_id, tenant_id, from_status, to_status, action, actor_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		e.ID.String(),
		e.ApplicationID.String(),
		tenantID.String(),
		string(e.FromStatus),
		string(e.ToStatus),
		string(e.Action),
		e.ActorID.String(),
		e.Notes,
		e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func documentChanged(before, after models.Document) bool {
	if before.Verified != after.Verified {
		return true
	}
	if (before.VerifiedBy == nil) != (after.VerifiedBy == nil) {
		return true
	}
	return before.VerifiedBy != nil && *before.VerifiedBy != *after.VerifiedBy
}

// encodeColumn marshals a detail record, keeping nil pointers as SQL NULL.
func encodeColumn(v any) (any, error) {
	switch t := v.(type) {
	case *models.Intake:
		if t == nil {
			return nil, nil
		}
	case *models.SecurityClearance:
		if t == nil {
			return nil, nil
		}
	case *models.LegalReview:
		if t == nil {
			return nil, nil
		}
	case *models.FinalDecision:
		if t == nil {
			return nil, nil
		}
	case *models.Appeal:
		if t == nil {
			return nil, nil
		}
	case *models.Certificate:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode column: %w", err)
	}
	return string(b), nil
}

func decodeColumn[T any](raw []byte) (*T, error) {
	if raw == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return &v, nil
}

func userPtr(u uuid.NullUUID) *id.UserID {
	if !u.Valid {
		return nil
	}
	v := id.UserID(u.UUID)
	return &v
}

func nullableUser(u *id.UserID) any {
	if u == nil {
		return nil
	}
	return u.String()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
