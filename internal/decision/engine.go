// Package decision applies confidence tiers to a parse result, deciding
// whether it is accepted, escalated to the external fallback, returned
// for clarification, or rejected.
package decision

import (
	"context"
	"time"

	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/ontology"
)

// Fallback completes missing slots via an external model. Implementations
// must be timeout-bounded; an error or timeout makes the engine fall
// through to the clarify tier silently.
type Fallback interface {
	CompleteSlots(ctx context.Context, text string, r *nlu.ParseResult) (*FallbackResult, error)
}

// FallbackResult is the slot completion returned by a Fallback.
type FallbackResult struct {
	Slots      map[nlu.SlotName]string
	Confidence float64
}

// mergedConfidenceCap bounds how confident a fallback-assisted parse can
// ever be.
const mergedConfidenceCap = 0.85

// Engine assigns decision tags. It is pure over the ParseResult except
// for the optional external fallback call.
type Engine struct {
	th       ontology.Thresholds
	fallback Fallback // nil disables the external tier
	clock    func() time.Time
}

// NewEngine creates an Engine. fallback may be nil; clock defaults to
// time.Now.
func NewEngine(th ontology.Thresholds, fallback Fallback, clock func() time.Time) *Engine {
	if !th.Valid() {
		th = ontology.DefaultThresholds()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{th: th, fallback: fallback, clock: clock}
}

// Decide evaluates the tiers in fixed priority order, first match wins,
// and tags the result in place.
func (e *Engine) Decide(ctx context.Context, text string, r *nlu.ParseResult) *nlu.ParseResult {
	r.Decision = e.decide(ctx, text, r)
	r.DecidedAt = e.clock()
	return r
}

func (e *Engine) decide(ctx context.Context, text string, r *nlu.ParseResult) nlu.Decision {
	missing := len(r.Missing) > 0

	if r.Confidence >= e.th.Strict && !missing {
		return nlu.DecisionStrict
	}
	if r.Confidence >= e.th.Lenient && r.Meta.HeadNoun && timePresent(r) && !missing {
		return nlu.DecisionLenient
	}
	if r.Meta.MinimalCore && timePresent(r) && !missing {
		return nlu.DecisionMinimalCore
	}
	if r.Meta.RescuedBy == nlu.RescueSwapSides || r.Meta.RescuedBy == nlu.RescuePromoteBeverage {
		return nlu.DecisionRescued
	}
	if missing && r.Confidence >= e.th.Rescue && r.Intent.Loggable() && e.fallback != nil {
		if ok := e.tryFallback(ctx, text, r); ok && len(r.Missing) == 0 {
			return nlu.DecisionRescuedLLM
		}
	}
	if missing {
		return nlu.DecisionClarify
	}
	if r.Confidence < e.th.Reject {
		return nlu.DecisionReject
	}
	// Mid-confidence with nothing concrete missing: hand back for
	// clarification rather than silently accepting.
	r.Missing = []nlu.SlotName{nlu.SlotClarification}
	return nlu.DecisionClarify
}

// clarifiedBoost is added when a user's clarification answer fills the
// required slot: the answer resolves the doubt the original confidence
// score priced in.
const clarifiedBoost = 0.15

// DecideResumed tags a result completed through a clarification
// exchange. With the asked slot now filled, the result is accepted at
// strict or lenient depending on its boosted confidence; if slots are
// still missing it stays in clarify.
func (e *Engine) DecideResumed(r *nlu.ParseResult) *nlu.ParseResult {
	if len(r.Missing) > 0 {
		r.Decision = nlu.DecisionClarify
	} else {
		c := r.Confidence + clarifiedBoost
		if c > 0.95 {
			c = 0.95
		}
		r.Confidence = c
		if c >= e.th.Strict {
			r.Decision = nlu.DecisionStrict
		} else {
			r.Decision = nlu.DecisionLenient
		}
	}
	r.DecidedAt = e.clock()
	return r
}

// tryFallback merges externally completed slots under the rule that
// locally-derived slots always win on conflict. Errors and timeouts are
// swallowed: the fallback being down must never block a response.
func (e *Engine) tryFallback(ctx context.Context, text string, r *nlu.ParseResult) bool {
	fb, err := e.fallback.CompleteSlots(ctx, text, r)
	if err != nil || fb == nil {
		return false
	}
	for name, value := range fb.Slots {
		if value == "" {
			continue
		}
		if existing, ok := r.Slots.Get(name); ok && existing != "" {
			continue // local extraction wins
		}
		r.Slots.Set(name, value)
	}
	r.RecomputeMissing()

	merged := r.Confidence
	if fb.Confidence > merged {
		merged = fb.Confidence
	}
	if merged > mergedConfidenceCap {
		merged = mergedConfidenceCap
	}
	r.Confidence = merged
	r.Meta.RescuedBy = nlu.RescueLLM
	return true
}

func timePresent(r *nlu.ParseResult) bool {
	if v, ok := r.Slots.Get(nlu.SlotMealTime); ok && v != "" {
		return true
	}
	if v, ok := r.Slots.Get(nlu.SlotTime); ok && v != "" {
		return true
	}
	return false
}
