package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mkellerman/gutlog/internal/db"
	"github.com/mkellerman/gutlog/internal/nlu"
)

// SQLiteLexiconRepo implements LexiconRepo using a SQLite database.
type SQLiteLexiconRepo struct {
	db db.DBTX
}

// NewSQLiteLexiconRepo creates a new SQLiteLexiconRepo.
func NewSQLiteLexiconRepo(conn db.DBTX) *SQLiteLexiconRepo {
	return &SQLiteLexiconRepo{db: conn}
}

// Learn records one sighting of a phrase, incrementing the hit count
// when the user has used it before.
func (r *SQLiteLexiconRepo) Learn(ctx context.Context, e *LexiconEntry) error {
	phrase := NormalizePhrase(e.Phrase)
	if phrase == "" {
		return fmt.Errorf("learning lexicon phrase: empty phrase")
	}
	query := `INSERT INTO user_lexicon (user_id, phrase, intent, item, hits, last_seen)
		VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(user_id, phrase) DO UPDATE SET
			hits = hits + 1,
			intent = excluded.intent,
			item = excluded.item,
			last_seen = excluded.last_seen`
	_, err := r.db.ExecContext(ctx, query,
		e.UserID,
		phrase,
		string(e.Intent),
		e.Item,
		e.LastSeen.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("learning lexicon phrase: %w", err)
	}
	return nil
}

func (r *SQLiteLexiconRepo) Get(ctx context.Context, userID, phrase string) (*LexiconEntry, error) {
	query := `SELECT user_id, phrase, intent, item, hits, last_seen
		FROM user_lexicon WHERE user_id = ? AND phrase = ?`
	row := r.db.QueryRowContext(ctx, query, userID, NormalizePhrase(phrase))

	e, err := scanLexiconEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("lexicon phrase %q: %w", phrase, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning lexicon entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteLexiconRepo) ListByUser(ctx context.Context, userID string) ([]*LexiconEntry, error) {
	query := `SELECT user_id, phrase, intent, item, hits, last_seen
		FROM user_lexicon WHERE user_id = ? ORDER BY hits DESC, phrase`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing lexicon: %w", err)
	}
	defer rows.Close()

	var entries []*LexiconEntry
	for rows.Next() {
		e, err := scanLexiconEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lexicon row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lexicon: %w", err)
	}
	return entries, nil
}

func (r *SQLiteLexiconRepo) Forget(ctx context.Context, userID, phrase string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_lexicon WHERE user_id = ? AND phrase = ?`,
		userID, NormalizePhrase(phrase)); err != nil {
		return fmt.Errorf("forgetting lexicon phrase: %w", err)
	}
	return nil
}

func scanLexiconEntry(row rowScanner) (*LexiconEntry, error) {
	var e LexiconEntry
	var intent, lastSeen string
	if err := row.Scan(&e.UserID, &e.Phrase, &intent, &e.Item, &e.Hits, &lastSeen); err != nil {
		return nil, err
	}
	e.Intent = nlu.Intent(intent)

	var err error
	if e.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
		return nil, fmt.Errorf("parsing last_seen: %w", err)
	}
	return &e, nil
}

// NormalizePhrase canonicalizes a phrase for lexicon keys: lowercased,
// trimmed, inner whitespace collapsed.
func NormalizePhrase(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
