package lexicon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/repository"
	"github.com/mkellerman/gutlog/internal/testutil"
)

func newStore(t *testing.T) (*Store, repository.LexiconRepo) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteLexiconRepo(database)
	return NewStore(repo, 0), repo
}

func learn(t *testing.T, repo repository.LexiconRepo, user, phrase string, intent nlu.Intent, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		require.NoError(t, repo.Learn(context.Background(), &repository.LexiconEntry{
			UserID: user, Phrase: phrase, Intent: intent, Item: phrase,
			LastSeen: time.Now().UTC(),
		}))
	}
}

func TestLookupHitAfterMinSightings(t *testing.T) {
	s, repo := newStore(t)
	learn(t, repo, "u1", "berry smoothie", nlu.IntentDrink, DefaultMinHits)

	hit, ok := s.Lookup(context.Background(), "u1", "Berry  Smoothie")
	require.True(t, ok)
	assert.Equal(t, nlu.IntentDrink, hit.Intent)
	assert.Equal(t, "berry smoothie", hit.Item)
}

func TestLookupMissesBelowMinHits(t *testing.T) {
	s, repo := newStore(t)
	learn(t, repo, "u1", "berry smoothie", nlu.IntentDrink, 1)

	_, ok := s.Lookup(context.Background(), "u1", "berry smoothie")
	assert.False(t, ok)
}

func TestLookupMissesUnknownPhrase(t *testing.T) {
	s, _ := newStore(t)
	_, ok := s.Lookup(context.Background(), "u1", "never seen this")
	assert.False(t, ok)
}

func TestLookupOnlyServesIntakeIntents(t *testing.T) {
	s, repo := newStore(t)
	learn(t, repo, "u1", "rough night", nlu.IntentSymptom, 5)

	_, ok := s.Lookup(context.Background(), "u1", "rough night")
	assert.False(t, ok)
}

func TestLookupIsPerUser(t *testing.T) {
	s, repo := newStore(t)
	learn(t, repo, "u1", "oats", nlu.IntentFood, 3)

	_, ok := s.Lookup(context.Background(), "u2", "oats")
	assert.False(t, ok)

	_, ok = s.Lookup(context.Background(), "", "oats")
	assert.False(t, ok)
}

func TestNilRepoIsInert(t *testing.T) {
	s := NewStore(nil, 0)

	_, ok := s.Lookup(context.Background(), "u1", "oats")
	assert.False(t, ok)

	entries, err := s.Entries(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Nil(t, entries)

	assert.NoError(t, s.Forget(context.Background(), "u1", "oats"))
}

func TestCustomMinHits(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteLexiconRepo(database)
	s := NewStore(repo, 5)

	learn(t, repo, "u1", "oats", nlu.IntentFood, 4)
	_, ok := s.Lookup(context.Background(), "u1", "oats")
	assert.False(t, ok)

	learn(t, repo, "u1", "oats", nlu.IntentFood, 1)
	_, ok = s.Lookup(context.Background(), "u1", "oats")
	assert.True(t, ok)
}

func TestForgetRemovesPhrase(t *testing.T) {
	s, repo := newStore(t)
	learn(t, repo, "u1", "oats", nlu.IntentFood, 3)

	require.NoError(t, s.Forget(context.Background(), "u1", "oats"))
	_, ok := s.Lookup(context.Background(), "u1", "oats")
	assert.False(t, ok)
}
