package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the subset of pgxpool.Pool used by PostgresStore.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists entries in the moderation_audit table.
type PostgresStore struct {
	db db
}

func NewPostgresStore(db db) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("audit: database handle is required")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Record(ctx context.Context, entry Entry) error {
	const q = `
		INSERT INTO moderation_audit (action, target_id, operator, outcome, detail)
		VALUES (@action, @target_id, @operator, @outcome, @detail)`

	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{
		"action":    string(entry.Action),
		"target_id": entry.TargetID,
		"operator":  entry.Operator,
		"outcome":   string(entry.Outcome),
		"detail":    entry.Detail,
	})
	if err != nil {
		return fmt.Errorf("audit.Record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	const q = `
		SELECT id, action, target_id, operator, outcome, detail, created_at
		FROM moderation_audit
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	if limit < 1 {
		return []Entry{}, nil
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, q, pgx.NamedArgs{"limit": limit, "offset": offset})
	if err != nil {
		return nil, fmt.Errorf("audit.List: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			action  string
			outcome string
		)
		if err := rows.Scan(&e.ID, &action, &e.TargetID, &e.Operator, &outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit.List: scan: %w", err)
		}
		e.Action = Action(action)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit.List: rows: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM moderation_audit`).Scan(&n); err != nil {
		return 0, fmt.Errorf("audit.Count: %w", err)
	}
	return n, nil
}
