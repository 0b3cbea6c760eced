package nlu

import (
	"strings"
	"time"

	"github.com/mkellerman/gutlog/internal/ontology"
	"github.com/mkellerman/gutlog/internal/portion"
	"github.com/mkellerman/gutlog/internal/spell"
	"github.com/mkellerman/gutlog/internal/timenorm"
)

// Options control a single Understand call.
type Options struct {
	Timezone     *time.Location
	Now          time.Time // zero value means time.Now()
	ForcedIntent Intent    // non-empty when resuming a clarification
}

// Pipeline is the deterministic rules engine. It is stateless aside from
// the read-only ontology, so calls may run concurrently.
type Pipeline struct {
	onto      *ontology.Store
	th        ontology.Thresholds
	corrector *spell.Corrector
	portions  *portion.Parser
	dicts     []spell.Dictionary
}

// New creates a Pipeline over the given ontology and thresholds.
func New(onto *ontology.Store, th ontology.Thresholds) *Pipeline {
	return &Pipeline{
		onto:      onto,
		th:        th,
		corrector: spell.New(onto, th),
		portions:  portion.New(onto),
		dicts:     spell.DefaultDictionaries(onto),
	}
}

// turn is the per-utterance working state threaded through the stages.
type turn struct {
	raw      string
	rawLower string

	cleaned      string
	cleanedLower string
	corrections  []spell.Correction

	time timenorm.Info

	now time.Time
	loc *time.Location
}

// stage is one named step of the extraction pipeline. A stage either
// returns a completed result or nil to continue, making the priority
// order auditable and testable in isolation.
type stage struct {
	name string
	run  func(*Pipeline, *turn) *ParseResult
}

// stages lists the extraction steps in their fixed priority order.
// The bm short-circuit runs against the raw text before spell correction
// because correcting near bowel-movement terms has historically caused
// false reclassification into food/drink intents.
var stages = []stage{
	{"bm_short_circuit", (*Pipeline).stageBMShortCircuit},
	{"preclean", (*Pipeline).stagePreclean},
	{"conversational", (*Pipeline).stageConversational},
	{"negation", (*Pipeline).stageNegation},
	{"time", (*Pipeline).stageTime},
	{"reflux", (*Pipeline).stageReflux},
	{"symptom", (*Pipeline).stageSymptom},
	{"mood", (*Pipeline).stageMood},
	{"intake", (*Pipeline).stageIntake},
	{"fallback", (*Pipeline).stageFallback},
}

// StageNames lists the pipeline stages in evaluation order.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// Understand parses one utterance into a ParseResult. It never returns
// nil: the fallback stage always completes.
func (p *Pipeline) Understand(text string, opts Options) *ParseResult {
	t := p.newTurn(text, opts)

	if opts.ForcedIntent != "" {
		return p.understandForced(t, opts.ForcedIntent)
	}

	for _, s := range stages {
		if r := s.run(p, t); r != nil {
			if r.Meta.Stage == "" {
				r.Meta.Stage = s.name
			}
			r.Meta.Corrections = t.corrections
			return r
		}
	}
	// Unreachable: stageFallback always returns a result.
	return newResult(IntentOther, 0.2, NewEmptySlots(IntentOther), "fallback")
}

func (p *Pipeline) newTurn(text string, opts Options) *turn {
	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	trimmed := strings.TrimSpace(text)
	return &turn{
		raw:          trimmed,
		rawLower:     strings.ToLower(trimmed),
		cleaned:      trimmed,
		cleanedLower: strings.ToLower(trimmed),
		now:          now,
		loc:          loc,
	}
}

// understandForced re-parses in the context of a pending clarification,
// keeping the intent fixed so the answer fills that intent's slots.
func (p *Pipeline) understandForced(t *turn, intent Intent) *ParseResult {
	switch intent {
	case IntentBM:
		r := p.extractBM(t)
		r.Meta.Stage = "forced_bm"
		return r
	case IntentSymptom, IntentReflux:
		r := p.extractSymptom(t, intent, canonicalSymptomFor(intent))
		r.Meta.Stage = "forced_symptom"
		return r
	case IntentFood, IntentDrink:
		p.stagePreclean(t)
		p.stageTime(t)
		r := p.stageIntake(t)
		if r == nil {
			// Terse answers like "greek yogurt" carry no verb or time;
			// take the cleaned text as the item.
			slots := NewIntakeSlots(intent)
			slots.Item = strings.TrimSpace(t.cleanedLower)
			p.tagIntake(t, slots)
			r = newResult(intent, 0.6, slots, "forced_intake")
		} else {
			r.Intent = intent
			if is, ok := r.Slots.(*IntakeSlots); ok {
				is.Retag(intent)
			}
		}
		r.Meta.Corrections = t.corrections
		return r
	case IntentMood:
		slots := NewNoteSlots(IntentMood)
		slots.Note = t.raw
		if mood, ok := p.findMood(t.rawLower); ok {
			slots.Mood = mood
		}
		return newResult(IntentMood, 0.7, slots, "forced_mood")
	default:
		slots := NewNoteSlots(IntentCheckin)
		slots.Note = t.raw
		return newResult(IntentCheckin, 0.7, slots, "forced_checkin")
	}
}

func canonicalSymptomFor(intent Intent) string {
	if intent == IntentReflux {
		return "reflux"
	}
	return ""
}
