package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkellerman/gutlog/internal/db"
	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/nlu"
)

// LoggingSink implements dialog.EntrySink. Saving an intake entry also
// learns the item phrase into the user's lexicon, in the same
// transaction so a failed insert never leaves a half-learned phrase.
type LoggingSink struct {
	entries EntryRepo
	uow     db.UnitOfWork
}

// NewLoggingSink creates a sink over the given read-side repo and unit
// of work.
func NewLoggingSink(entries EntryRepo, uow db.UnitOfWork) *LoggingSink {
	return &LoggingSink{entries: entries, uow: uow}
}

var _ dialog.EntrySink = (*LoggingSink)(nil)

func (s *LoggingSink) Exists(ctx context.Context, ref string) (bool, error) {
	return s.entries.ExistsByRef(ctx, ref)
}

func (s *LoggingSink) Save(ctx context.Context, e dialog.Entry) error {
	now := time.Now().UTC()
	entry := &Entry{
		ID:         uuid.NewString(),
		Ref:        e.Ref,
		UserID:     e.User,
		Intent:     e.Intent,
		Text:       e.Text,
		Notes:      e.Notes,
		Confidence: e.Confidence,
		Decision:   e.Decision,
		OccurredAt: e.OccurredAt,
		CreatedAt:  now,
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := NewSQLiteEntryRepo(tx).Create(ctx, entry); err != nil {
			return err
		}
		if phrase := learnablePhrase(e); phrase != "" {
			lex := &LexiconEntry{
				UserID:   e.User,
				Phrase:   phrase,
				Intent:   e.Intent,
				Item:     phrase,
				LastSeen: now,
			}
			if err := NewSQLiteLexiconRepo(tx).Learn(ctx, lex); err != nil {
				return err
			}
		}
		return nil
	})
}

// learnablePhrase extracts the item of an intake entry from its notes.
// Only food and drink entries feed the lexicon.
func learnablePhrase(e dialog.Entry) string {
	if e.Intent != nlu.IntentFood && e.Intent != nlu.IntentDrink {
		return ""
	}
	return NormalizePhrase(noteValue(e.Notes, string(nlu.SlotItem)))
}

// noteValue pulls one key's value out of the "key=value; ..." notes form.
func noteValue(notes, key string) string {
	for _, part := range strings.Split(notes, ";") {
		if k, v, ok := strings.Cut(strings.TrimSpace(part), "="); ok && k == key {
			return v
		}
	}
	return ""
}
