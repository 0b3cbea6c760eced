// Package nlu turns free-form health-log utterances into structured
// parse results: an intent, typed slots, a confidence score, and the
// slots still missing.
package nlu

import (
	"time"

	"github.com/mkellerman/gutlog/internal/spell"
)

// Intent classifies what an utterance is trying to log.
type Intent string

const (
	IntentFood     Intent = "food"
	IntentDrink    Intent = "drink"
	IntentSymptom  Intent = "symptom"
	IntentReflux   Intent = "reflux"
	IntentBM       Intent = "bm"
	IntentMood     Intent = "mood"
	IntentCheckin  Intent = "checkin"
	IntentGreeting Intent = "greeting"
	IntentThanks   Intent = "thanks"
	IntentChitChat Intent = "chit_chat"
	IntentFarewell Intent = "farewell"
	IntentOther    Intent = "other"
)

var validIntents = map[Intent]bool{
	IntentFood: true, IntentDrink: true, IntentSymptom: true,
	IntentReflux: true, IntentBM: true, IntentMood: true,
	IntentCheckin: true, IntentGreeting: true, IntentThanks: true,
	IntentChitChat: true, IntentFarewell: true, IntentOther: true,
}

// IsValidIntent returns true if the given name is a known intent.
func IsValidIntent(i Intent) bool { return validIntents[i] }

// Loggable reports whether the intent produces a persisted entry.
func (i Intent) Loggable() bool {
	switch i {
	case IntentFood, IntentDrink, IntentSymptom, IntentReflux, IntentBM, IntentMood, IntentCheckin:
		return true
	}
	return false
}

// Decision is the confidence tier assigned by the decision engine.
type Decision string

const (
	DecisionNone        Decision = ""
	DecisionStrict      Decision = "strict"
	DecisionLenient     Decision = "lenient"
	DecisionMinimalCore Decision = "minimal_core"
	DecisionRescued     Decision = "rescued"
	DecisionRescuedLLM  Decision = "rescued_llm"
	DecisionClarify     Decision = "clarify"
	DecisionReject      Decision = "reject"
)

// Accepted reports whether the decision finalizes the parse without
// further user interaction.
func (d Decision) Accepted() bool {
	switch d {
	case DecisionStrict, DecisionLenient, DecisionMinimalCore, DecisionRescued, DecisionRescuedLLM:
		return true
	}
	return false
}

// RescueStrategy names the heuristic that recovered an otherwise-empty
// parse. At most one strategy fires per result.
type RescueStrategy string

const (
	RescueNone            RescueStrategy = ""
	RescueSwapSides       RescueStrategy = "swap_sides"
	RescuePromoteBeverage RescueStrategy = "promote_beverage"
	RescueLLM             RescueStrategy = "rescued_llm"
)

// Meta carries diagnostic signals about how the parse was produced.
type Meta struct {
	Stage           string
	HeadNoun        bool
	RescuedBy       RescueStrategy
	MinimalCore     bool
	SecondaryIntent bool
	TimeInferred    bool
	RelaxedNoun     bool
	Corrections     []spell.Correction
}

// ParseResult is the central value object: one per utterance, constructed
// by the pipeline, tagged by the decision engine, and completed across
// turns by the dialog manager.
type ParseResult struct {
	Intent     Intent
	Confidence float64
	Slots      Slots
	Missing    []SlotName
	Meta       Meta
	Decision   Decision
	DecidedAt  time.Time
}

// RecomputeMissing refreshes Missing from the current slot payload.
func (r *ParseResult) RecomputeMissing() {
	r.Missing = MissingSlots(r.Slots)
}

func newResult(intent Intent, confidence float64, slots Slots, stage string) *ParseResult {
	r := &ParseResult{
		Intent:     intent,
		Confidence: clamp01(confidence),
		Slots:      slots,
		Meta:       Meta{Stage: stage},
	}
	r.RecomputeMissing()
	return r
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
