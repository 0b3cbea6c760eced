// Package lexicon serves the per-user learned phrase lexicon: phrases a
// user has logged repeatedly resolve directly to their intent and item,
// skipping the full parse.
package lexicon

import (
	"context"

	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/repository"
)

// DefaultMinHits is how many sightings a phrase needs before lookups
// trust it. A single sighting may have been a one-off or a typo.
const DefaultMinHits = 2

// Store answers phrase lookups from the persisted lexicon. A nil repo
// disables lookups entirely, so callers need no nil checks of their own.
type Store struct {
	repo    repository.LexiconRepo
	minHits int
}

// NewStore creates a Store. repo may be nil; minHits <= 0 uses the default.
func NewStore(repo repository.LexiconRepo, minHits int) *Store {
	if minHits <= 0 {
		minHits = DefaultMinHits
	}
	return &Store{repo: repo, minHits: minHits}
}

var _ dialog.Lexicon = (*Store)(nil)

// Lookup resolves text to a learned intake phrase. Only food and drink
// phrases short-circuit the parse; anything else misses.
func (s *Store) Lookup(ctx context.Context, userID, text string) (*dialog.LexiconHit, bool) {
	if s.repo == nil || userID == "" {
		return nil, false
	}
	phrase := repository.NormalizePhrase(text)
	if phrase == "" {
		return nil, false
	}

	// Unknown phrase and broken lexicon both miss; parsing never blocks
	// on the lexicon.
	e, err := s.repo.Get(ctx, userID, phrase)
	if err != nil {
		return nil, false
	}
	if e.Hits < s.minHits {
		return nil, false
	}
	if e.Intent != nlu.IntentFood && e.Intent != nlu.IntentDrink {
		return nil, false
	}

	item := e.Item
	if item == "" {
		item = e.Phrase
	}
	return &dialog.LexiconHit{Intent: e.Intent, Item: item}, true
}

// Entries lists everything learned for a user, most-used first.
func (s *Store) Entries(ctx context.Context, userID string) ([]*repository.LexiconEntry, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListByUser(ctx, userID)
}

// Forget removes a learned phrase.
func (s *Store) Forget(ctx context.Context, userID, phrase string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Forget(ctx, userID, phrase)
}
