package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkellerman/gutlog/internal/db"
	"github.com/mkellerman/gutlog/internal/nlu"
)

// SQLiteEntryRepo implements EntryRepo using a SQLite database.
type SQLiteEntryRepo struct {
	db db.DBTX
}

// NewSQLiteEntryRepo creates a new SQLiteEntryRepo.
func NewSQLiteEntryRepo(conn db.DBTX) *SQLiteEntryRepo {
	return &SQLiteEntryRepo{db: conn}
}

func (r *SQLiteEntryRepo) Create(ctx context.Context, e *Entry) error {
	query := `INSERT INTO entries (id, ref, user_id, intent, text, notes, confidence, decision, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Ref,
		e.UserID,
		string(e.Intent),
		e.Text,
		e.Notes,
		e.Confidence,
		string(e.Decision),
		e.OccurredAt.UTC().Format(time.RFC3339),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

func (r *SQLiteEntryRepo) ExistsByRef(ctx context.Context, ref string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM entries WHERE ref = ?`, ref).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking entry ref: %w", err)
	}
	return n > 0, nil
}

const entryColumns = `id, ref, user_id, intent, text, notes, confidence, decision, occurred_at, created_at`

func (r *SQLiteEntryRepo) GetByRef(ctx context.Context, ref string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE ref = ?`, ref)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("entry %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteEntryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = ? ORDER BY occurred_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *SQLiteEntryRepo) ListByIntent(ctx context.Context, userID string, intent nlu.Intent, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries
		WHERE user_id = ? AND intent = ? ORDER BY occurred_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, userID, string(intent), limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries by intent: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *SQLiteEntryRepo) DeleteByRef(ctx context.Context, ref string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE ref = ?`, ref); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var e Entry
	var intent, decision, occurredAt, createdAt string
	if err := row.Scan(
		&e.ID, &e.Ref, &e.UserID, &intent, &e.Text, &e.Notes,
		&e.Confidence, &decision, &occurredAt, &createdAt,
	); err != nil {
		return nil, err
	}
	e.Intent = nlu.Intent(intent)
	e.Decision = nlu.Decision(decision)

	var err error
	if e.OccurredAt, err = time.Parse(time.RFC3339, occurredAt); err != nil {
		return nil, fmt.Errorf("parsing occurred_at: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}
