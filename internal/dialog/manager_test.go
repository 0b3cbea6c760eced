package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellerman/gutlog/internal/decision"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/ontology"
)

var testScope = Scope{Channel: "cli", User: "u1"}

// memorySink collects saved entries in memory.
type memorySink struct {
	entries   map[string]Entry
	saveErr   error
	existsErr error
}

func newMemorySink() *memorySink {
	return &memorySink{entries: make(map[string]Entry)}
}

func (s *memorySink) Exists(ctx context.Context, ref string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.entries[ref]
	return ok, nil
}

func (s *memorySink) Save(ctx context.Context, e Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries[e.Ref] = e
	return nil
}

// staticLexicon returns a fixed hit for one phrase.
type staticLexicon struct {
	phrase string
	hit    LexiconHit
}

func (l *staticLexicon) Lookup(ctx context.Context, userID, text string) (*LexiconHit, bool) {
	if strings.EqualFold(strings.TrimSpace(text), l.phrase) {
		h := l.hit
		return &h, true
	}
	return nil, false
}

func newTestManager(sink EntrySink) (*Manager, *PendingStore) {
	th := ontology.DefaultThresholds()
	pipeline := nlu.New(ontology.Default(), th)
	engine := decision.NewEngine(th, nil, nil)
	store := NewPendingStore(time.Minute)
	return NewManager(pipeline, engine, store, sink, time.UTC), store
}

func TestHandleAcceptsAndSaves(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	turn, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, turn.State)
	assert.True(t, turn.Saved)
	assert.NotEmpty(t, turn.Ref)
	assert.Equal(t, nlu.DecisionStrict, turn.Result.Decision)
	assert.Equal(t, 0, store.Len())

	saved := sink.entries[turn.Ref]
	assert.Equal(t, "u1", saved.User)
	assert.Equal(t, nlu.IntentFood, saved.Intent)
	assert.Contains(t, saved.Notes, "item=oats")
	assert.Contains(t, saved.Notes, "meal_time=lunch")
}

func TestHandleDuplicateMessageNotSavedTwice(t *testing.T) {
	sink := newMemorySink()
	m, _ := newTestManager(sink)

	first, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.NoError(t, err)
	require.True(t, first.Saved)

	second, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.NoError(t, err)
	assert.False(t, second.Saved)
	assert.Equal(t, first.Ref, second.Ref)
	assert.Len(t, sink.entries, 1)
}

func TestHandleClarifyThenNumberAnswer(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	turn, err := m.Handle(context.Background(), testScope, "acid reflux not feeling well")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingSlot, turn.State)
	assert.Equal(t, nlu.SlotSeverity, turn.Ask)
	assert.Equal(t, "How bad is it, on a scale of 1 to 10?", turn.Prompt)
	assert.False(t, turn.Saved)
	assert.Equal(t, 1, store.Len())

	answer, err := m.Handle(context.Background(), testScope, "7")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, answer.State)
	assert.True(t, answer.Saved)
	assert.True(t, answer.Result.Decision.Accepted())
	assert.Equal(t, 0, store.Len())

	sev, _ := answer.Result.Slots.Get(nlu.SlotSeverity)
	assert.Equal(t, "7", sev)

	saved := sink.entries[answer.Ref]
	assert.Equal(t, nlu.IntentReflux, saved.Intent)
	assert.Equal(t, "acid reflux not feeling well", saved.Text)
	assert.Contains(t, saved.Notes, "severity=7")
}

func TestHandleClarifyThenWordAnswer(t *testing.T) {
	sink := newMemorySink()
	m, _ := newTestManager(sink)

	_, err := m.Handle(context.Background(), testScope, "acid reflux not feeling well")
	require.NoError(t, err)

	// A worded answer goes through the forced re-parse and merges.
	answer, err := m.Handle(context.Background(), testScope, "pretty bad")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, answer.State)
	assert.True(t, answer.Saved)
	assert.Equal(t, nlu.IntentReflux, answer.Result.Intent)

	sev, _ := answer.Result.Slots.Get(nlu.SlotSeverity)
	assert.Equal(t, "7", sev)
}

func TestHandleClarifyCancel(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	_, err := m.Handle(context.Background(), testScope, "acid reflux not feeling well")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	turn, err := m.Handle(context.Background(), testScope, "nevermind")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, turn.State)
	assert.False(t, turn.Saved)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, sink.entries)
}

func TestHandleBMClarifyThenBristolNumber(t *testing.T) {
	sink := newMemorySink()
	m, _ := newTestManager(sink)

	turn, err := m.Handle(context.Background(), testScope, "went number 2 this morning")
	require.NoError(t, err)
	require.Equal(t, StateAwaitingSlot, turn.State)
	assert.Equal(t, nlu.SlotBristol, turn.Ask)

	answer, err := m.Handle(context.Background(), testScope, "4")
	require.NoError(t, err)
	assert.True(t, answer.Saved)

	bristol, _ := answer.Result.Slots.Get(nlu.SlotBristol)
	assert.Equal(t, "4", bristol)
}

func TestHandleUnusableAnswerReParks(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	_, err := m.Handle(context.Background(), testScope, "acid reflux not feeling well")
	require.NoError(t, err)

	// An answer that fills nothing keeps the exchange open.
	turn, err := m.Handle(context.Background(), testScope, "hmm not sure")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingSlot, turn.State)
	assert.Equal(t, nlu.SlotSeverity, turn.Ask)
	assert.Equal(t, 1, store.Len())
	assert.False(t, turn.Saved)
}

func TestHandleConversationalNotSaved(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	// Conversational intents are accepted but never persisted.
	turn, err := m.Handle(context.Background(), testScope, "thanks")
	require.NoError(t, err)
	assert.False(t, turn.Saved)
	assert.Empty(t, turn.Ref)
	assert.Equal(t, 0, store.Len())
}

func TestHandleInvalidScope(t *testing.T) {
	m, _ := newTestManager(newMemorySink())
	_, err := m.Handle(context.Background(), Scope{}, "had oats")
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestHandleNilSinkStillDecides(t *testing.T) {
	m, _ := newTestManager(nil)
	turn, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.NoError(t, err)
	assert.Equal(t, nlu.DecisionStrict, turn.Result.Decision)
	assert.False(t, turn.Saved)
	assert.Empty(t, turn.Ref)
}

func TestHandleSinkErrorSurfaces(t *testing.T) {
	sink := newMemorySink()
	sink.saveErr = errors.New("disk full")
	m, _ := newTestManager(sink)

	turn, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.Error(t, err)
	require.NotNil(t, turn)
	assert.False(t, turn.Saved)
}

func TestHandleLexiconShortcut(t *testing.T) {
	sink := newMemorySink()
	m, _ := newTestManager(sink)
	m.UseLexicon(&staticLexicon{
		phrase: "my usual smoothie",
		hit:    LexiconHit{Intent: nlu.IntentDrink, Item: "berry smoothie"},
	})

	turn, err := m.Handle(context.Background(), testScope, "my usual smoothie")
	require.NoError(t, err)

	assert.True(t, turn.Saved)
	assert.Equal(t, nlu.IntentDrink, turn.Result.Intent)
	assert.Equal(t, "lexicon", turn.Result.Meta.Stage)
	assert.Equal(t, 0.9, turn.Result.Confidence)

	item, _ := turn.Result.Slots.Get(nlu.SlotItem)
	assert.Equal(t, "berry smoothie", item)
}

func TestHandleLexiconMissFallsBackToPipeline(t *testing.T) {
	sink := newMemorySink()
	m, _ := newTestManager(sink)
	m.UseLexicon(&staticLexicon{phrase: "my usual smoothie"})

	turn, err := m.Handle(context.Background(), testScope, "had oats for lunch")
	require.NoError(t, err)
	assert.Equal(t, "intake", turn.Result.Meta.Stage)
	assert.True(t, turn.Saved)
}

func TestScopesDoNotShareState(t *testing.T) {
	sink := newMemorySink()
	m, store := newTestManager(sink)

	_, err := m.Handle(context.Background(), testScope, "acid reflux not feeling well")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	other := Scope{Channel: "cli", User: "u2"}
	turn, err := m.Handle(context.Background(), other, "7")
	require.NoError(t, err)

	// u2 has nothing pending; their "7" is a fresh (unparseable) message.
	assert.NotEqual(t, nlu.IntentReflux, turn.Result.Intent)
	assert.Equal(t, 2, store.Len())
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, "What did you drink?", PromptFor(nlu.IntentDrink, nlu.SlotItem))
	assert.Equal(t, "What did you have?", PromptFor(nlu.IntentFood, nlu.SlotItem))
	assert.Contains(t, PromptFor(nlu.IntentBM, nlu.SlotBristol), "1-7")
	assert.Equal(t, "When was that?", PromptFor(nlu.IntentFood, nlu.SlotMealTime))
	assert.NotEmpty(t, PromptFor(nlu.IntentOther, nlu.SlotClarification))
}
