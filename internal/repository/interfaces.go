// Package repository persists finalized log entries and the per-user
// phrase lexicon in SQLite.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mkellerman/gutlog/internal/nlu"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Entry is a persisted log record.
type Entry struct {
	ID         string
	Ref        string
	UserID     string
	Intent     nlu.Intent
	Text       string
	Notes      string
	Confidence float64
	Decision   nlu.Decision
	OccurredAt time.Time
	CreatedAt  time.Time
}

// LexiconEntry is a learned phrase-to-intent association for one user.
type LexiconEntry struct {
	UserID   string
	Phrase   string
	Intent   nlu.Intent
	Item     string
	Hits     int
	LastSeen time.Time
}

type EntryRepo interface {
	Create(ctx context.Context, e *Entry) error
	ExistsByRef(ctx context.Context, ref string) (bool, error)
	GetByRef(ctx context.Context, ref string) (*Entry, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*Entry, error)
	ListByIntent(ctx context.Context, userID string, intent nlu.Intent, limit int) ([]*Entry, error)
	DeleteByRef(ctx context.Context, ref string) error
}

type LexiconRepo interface {
	Learn(ctx context.Context, e *LexiconEntry) error
	Get(ctx context.Context, userID, phrase string) (*LexiconEntry, error)
	ListByUser(ctx context.Context, userID string) ([]*LexiconEntry, error)
	Forget(ctx context.Context, userID, phrase string) error
}
