package dialog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mkellerman/gutlog/internal/decision"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/timenorm"
)

// State is the per-scope conversation state after a turn.
type State string

const (
	StateIdle         State = "idle"
	StateAwaitingSlot State = "awaiting_slot"
)

// Entry is a finalized log record handed to the sink.
type Entry struct {
	Ref        string
	User       string
	Intent     nlu.Intent
	Text       string
	Notes      string
	Confidence float64
	Decision   nlu.Decision
	OccurredAt time.Time
}

// EntrySink persists finalized entries. Exists makes finalization
// idempotent: retrying the same message must not create a duplicate.
type EntrySink interface {
	Exists(ctx context.Context, ref string) (bool, error)
	Save(ctx context.Context, e Entry) error
}

// LexiconHit is a learned phrase resolved without a full parse.
type LexiconHit struct {
	Intent nlu.Intent
	Item   string
}

// Lexicon answers whether the user has logged this exact phrase often
// enough to trust it outright.
type Lexicon interface {
	Lookup(ctx context.Context, userID, text string) (*LexiconHit, bool)
}

// Turn is the outcome of handling one message.
type Turn struct {
	Result *nlu.ParseResult
	State  State
	Ask    nlu.SlotName // set when State is awaiting_slot
	Prompt string       // clarification question to show the user
	Saved  bool
	Ref    string
}

const (
	softMinRemaining = 30 * time.Second
	softExtendBy     = 60 * time.Second
)

// Manager runs the parse/decide/clarify loop across turns. It is safe
// for concurrent use across scopes; turns within one scope are expected
// to arrive sequentially.
type Manager struct {
	pipeline *nlu.Pipeline
	engine   *decision.Engine
	store    *PendingStore
	sink     EntrySink // nil disables persistence
	lex      Lexicon   // nil disables phrase shortcuts
	loc      *time.Location
}

// NewManager wires the dialog loop. sink may be nil.
func NewManager(pipeline *nlu.Pipeline, engine *decision.Engine, store *PendingStore, sink EntrySink, loc *time.Location) *Manager {
	if loc == nil {
		loc = time.Local
	}
	return &Manager{pipeline: pipeline, engine: engine, store: store, sink: sink, loc: loc}
}

// UseLexicon enables learned-phrase shortcuts on fresh parses.
func (m *Manager) UseLexicon(lex Lexicon) { m.lex = lex }

// Handle processes one message within a scope: resuming a pending
// clarification when one exists, otherwise parsing fresh.
func (m *Manager) Handle(ctx context.Context, scope Scope, text string) (*Turn, error) {
	key, err := scope.Key()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	if pending, ok := m.store.GetSoft(key, softMinRemaining, softExtendBy); ok {
		return m.resume(ctx, scope, key, pending, text, now)
	}

	r := m.parse(ctx, scope, text, now)
	m.engine.Decide(ctx, text, r)
	return m.settle(ctx, scope, key, text, r, now)
}

// lexiconConfidence scores a phrase the user has logged verbatim before.
const lexiconConfidence = 0.9

// parse resolves text through the learned lexicon when possible, falling
// back to the full pipeline.
func (m *Manager) parse(ctx context.Context, scope Scope, text string, now time.Time) *nlu.ParseResult {
	if m.lex != nil {
		if hit, ok := m.lex.Lookup(ctx, scope.User, text); ok {
			slots := nlu.NewIntakeSlots(hit.Intent)
			slots.Item = hit.Item
			info := timenorm.Parse(text, m.loc, now)
			slots.MealTime = info.MealTime
			slots.Time = info.Time
			r := &nlu.ParseResult{
				Intent:     hit.Intent,
				Confidence: lexiconConfidence,
				Slots:      slots,
				Meta:       nlu.Meta{Stage: "lexicon", HeadNoun: true, TimeInferred: info.Inferred},
			}
			r.RecomputeMissing()
			return r
		}
	}
	return m.pipeline.Understand(text, nlu.Options{Timezone: m.loc, Now: now})
}

var cancelWords = map[string]bool{
	"cancel": true, "skip": true, "nevermind": true, "never mind": true, "forget it": true,
}

// resume applies the user's answer to the parked parse. Structured
// answers (a bare number, a meal word) fill the asked slot directly;
// anything else is re-parsed with the intent held fixed and merged in,
// pending slots winning on conflict.
func (m *Manager) resume(ctx context.Context, scope Scope, key string, pending Pending, text string, now time.Time) (*Turn, error) {
	answer := strings.ToLower(strings.TrimSpace(text))
	if cancelWords[answer] {
		m.store.Clear(key)
		return &Turn{Result: pending.Result, State: StateIdle}, nil
	}

	r := pending.Result
	if !m.applyDirectAnswer(r, answer) {
		fresh := m.pipeline.Understand(text, nlu.Options{
			Timezone:     m.loc,
			Now:          now,
			ForcedIntent: r.Intent,
		})
		mergeSlots(r, fresh)
	}
	r.RecomputeMissing()

	if len(r.Missing) == 0 {
		m.engine.DecideResumed(r)
		m.store.Clear(key)
		return m.settle(ctx, scope, key, pending.Text, r, now)
	}

	pending.Result = r
	pending.Ask = r.Missing[0]
	m.store.Set(key, pending)
	return &Turn{
		Result: r,
		State:  StateAwaitingSlot,
		Ask:    pending.Ask,
		Prompt: PromptFor(r.Intent, pending.Ask),
	}, nil
}

var bareNumberRe = regexp.MustCompile(`^(\d{1,2})$`)

// applyDirectAnswer fills the first missing slot when the answer is
// unambiguous on its own, avoiding a full re-parse of e.g. "7".
func (m *Manager) applyDirectAnswer(r *nlu.ParseResult, answer string) bool {
	if len(r.Missing) == 0 {
		return false
	}
	ask := r.Missing[0]

	if m := bareNumberRe.FindStringSubmatch(answer); m != nil {
		switch ask {
		case nlu.SlotSeverity, nlu.SlotBristol:
			return r.Slots.Set(ask, m[1])
		}
		return false
	}

	if ask == nlu.SlotMealTime || ask == nlu.SlotTime {
		info := timenorm.Parse(answer, nil, time.Now())
		if info.Inferred {
			return false
		}
		if info.Time != "" {
			r.Slots.Set(nlu.SlotTime, info.Time)
		}
		return r.Slots.Set(nlu.SlotMealTime, string(info.MealTime))
	}
	return false
}

// mergeSlots copies slots from fresh into r wherever r has no value yet.
func mergeSlots(r, fresh *nlu.ParseResult) {
	for _, p := range fresh.Slots.Pairs() {
		if existing, ok := r.Slots.Get(p.Key); ok && existing != "" {
			continue
		}
		r.Slots.Set(p.Key, p.Value)
	}
	if fresh.Confidence > r.Confidence {
		r.Confidence = fresh.Confidence
	}
}

// settle finalizes an accepted result, parks a clarify, or drops a reject.
func (m *Manager) settle(ctx context.Context, scope Scope, key, text string, r *nlu.ParseResult, now time.Time) (*Turn, error) {
	switch {
	case r.Decision.Accepted():
		return m.finalize(ctx, scope, key, text, r, now)

	case r.Decision == nlu.DecisionClarify:
		ask := nlu.SlotClarification
		if len(r.Missing) > 0 {
			ask = r.Missing[0]
		}
		m.store.Set(key, Pending{Result: r, Ask: ask, Text: text})
		return &Turn{
			Result: r,
			State:  StateAwaitingSlot,
			Ask:    ask,
			Prompt: PromptFor(r.Intent, ask),
		}, nil

	default:
		return &Turn{Result: r, State: StateIdle}, nil
	}
}

func (m *Manager) finalize(ctx context.Context, scope Scope, key, text string, r *nlu.ParseResult, now time.Time) (*Turn, error) {
	turn := &Turn{Result: r, State: StateIdle}
	if m.sink == nil || !r.Intent.Loggable() {
		return turn, nil
	}

	ref := entryRef(key, text, now.In(m.loc))
	turn.Ref = ref

	exists, err := m.sink.Exists(ctx, ref)
	if err != nil {
		return turn, fmt.Errorf("checking entry %s: %w", ref, err)
	}
	if exists {
		return turn, nil
	}

	entry := Entry{
		Ref:        ref,
		User:       scope.User,
		Intent:     r.Intent,
		Text:       text,
		Notes:      nlu.EncodeNotes(r),
		Confidence: r.Confidence,
		Decision:   r.Decision,
		OccurredAt: now,
	}
	if err := m.sink.Save(ctx, entry); err != nil {
		return turn, fmt.Errorf("saving entry %s: %w", ref, err)
	}
	turn.Saved = true
	return turn, nil
}

// entryRef derives a stable reference for an utterance within a scope
// and day, so redelivery of the same message dedupes.
func entryRef(key, text string, local time.Time) string {
	h := sha256.Sum256([]byte(key + "\x00" + strings.ToLower(strings.TrimSpace(text)) + "\x00" + local.Format("2006-01-02")))
	return hex.EncodeToString(h[:8])
}

// PromptFor phrases the clarification question for a missing slot.
func PromptFor(intent nlu.Intent, slot nlu.SlotName) string {
	switch slot {
	case nlu.SlotItem:
		if intent == nlu.IntentDrink {
			return "What did you drink?"
		}
		return "What did you have?"
	case nlu.SlotSeverity:
		return "How bad is it, on a scale of 1 to 10?"
	case nlu.SlotBristol:
		return "What type was it? A number 1-7, or a word like loose, normal, hard."
	case nlu.SlotMealTime, nlu.SlotTime:
		return "When was that?"
	default:
		return "I didn't quite get that. Could you say it another way?"
	}
}
