package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	audit "coopreg/pkg/platform/audit"
	txcontext "coopreg/pkg/platform/tx"
)

// Store implements the transactional outbox on the outbox table.
// Append joins the transaction in ctx when one is present.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, tenant_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		event.AggregateType,
		event.AggregateID,
		event.TenantID,
		event.EventType,
		event.Payload,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Drain locks up to limit pending rows with SKIP LOCKED so several relay
// workers can run against the same table without double delivery.
func (s *Store) Drain(ctx context.Context, limit int, publish audit.PublishFunc) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox drain: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, tenant_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return 0, fmt.Errorf("query pending outbox: %w", err)
	}
	var pending []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.TenantID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox entry: %w", err)
		}
		pending = append(pending, e)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("close outbox rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}

	published := 0
	var publishErr error
	for _, e := range pending {
		if err := publish(ctx, e); err != nil {
			publishErr = err
			if _, err := tx.ExecContext(ctx,
				`UPDATE outbox SET attempts = attempts + 1, last_error = $2 WHERE id = $1`,
				e.ID, truncate(err.Error(), 500)); err != nil {
				return 0, fmt.Errorf("record outbox failure: %w", err)
			}
			break
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE outbox SET published_at = $2 WHERE id = $1`,
			e.ID, s.now()); err != nil {
			return 0, fmt.Errorf("mark outbox published: %w", err)
		}
		published++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox drain: %w", err)
	}
	return published, publishErr
}

// DeletePublishedBefore prunes delivered rows older than cutoff.
func (s *Store) DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune outbox: %w", err)
	}
	return res.RowsAffected()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
