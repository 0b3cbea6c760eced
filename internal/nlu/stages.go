package nlu

import (
	"fmt"
	"strings"

	"github.com/mkellerman/gutlog/internal/ontology"
	"github.com/mkellerman/gutlog/internal/spell"
	"github.com/mkellerman/gutlog/internal/timenorm"
)

// SlotClarification marks a fallback result that needs a full re-prompt.
const SlotClarification SlotName = "clarification_needed"

// stageBMShortCircuit routes bowel-movement reports before any spell
// correction touches the text.
func (p *Pipeline) stageBMShortCircuit(t *turn) *ParseResult {
	if !p.onto.ContainsBMKeyword(t.rawLower) {
		return nil
	}
	return p.extractBM(t)
}

func (p *Pipeline) extractBM(t *turn) *ParseResult {
	slots := &BMSlots{}
	confidence := 0.75

	if word, scale, ok := p.findBristol(t.rawLower); ok {
		slots.Bristol = scale
		slots.BristolNote = fmt.Sprintf("auto-detected from %q", word)
		confidence = 0.9
	}
	if daypart, ok := coarseDaypart(t.rawLower); ok {
		slots.Daypart = daypart
	}

	return newResult(IntentBM, confidence, slots, "bm_short_circuit")
}

// stagePreclean spell-corrects the text against the brand/food/beverage
// dictionaries. Always continues.
func (p *Pipeline) stagePreclean(t *turn) *ParseResult {
	ctx := spell.ContextGeneral
	if p.looksSymptomatic(t.rawLower) {
		ctx = spell.ContextSymptomatic
	}
	corrected, corrections := p.corrector.CorrectTokens(t.cleaned, p.dicts, ctx)
	t.cleaned = corrected
	t.cleanedLower = strings.ToLower(corrected)
	t.corrections = corrections
	return nil
}

func (p *Pipeline) looksSymptomatic(lower string) bool {
	for _, kw := range p.onto.RefluxKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for syn := range p.onto.SymptomSynonyms {
		if strings.Contains(lower, syn) {
			return true
		}
	}
	return false
}

// stageConversational short-circuits greetings, thanks, chit-chat, and
// farewells, provided nothing loggable is in the text.
func (p *Pipeline) stageConversational(t *turn) *ParseResult {
	if p.hasLoggableContent(t.cleanedLower) {
		return nil
	}
	lower := strings.Trim(t.cleanedLower, " .,!?")
	check := func(cues []string) bool {
		for _, cue := range cues {
			if lower == cue || strings.HasPrefix(lower, cue+" ") || strings.HasPrefix(lower, cue+",") {
				return true
			}
		}
		return false
	}
	switch {
	case check(p.onto.GreetingWords):
		return newResult(IntentGreeting, 0.95, NewEmptySlots(IntentGreeting), "")
	case check(p.onto.ThanksWords):
		return newResult(IntentThanks, 0.95, NewEmptySlots(IntentThanks), "")
	case check(p.onto.FarewellWords):
		return newResult(IntentFarewell, 0.95, NewEmptySlots(IntentFarewell), "")
	case check(p.onto.ChitChatPhrases):
		return newResult(IntentChitChat, 0.9, NewEmptySlots(IntentChitChat), "")
	}
	return nil
}

func (p *Pipeline) hasLoggableContent(lower string) bool {
	for _, tok := range strings.Fields(lower) {
		tok = strings.Trim(tok, ".,!?")
		if p.onto.IsHeadNoun(tok) {
			return true
		}
	}
	if _, ok := p.onto.BeverageKindOf(lower); ok {
		return true
	}
	return false
}

// stageNegation routes explicit skip/avoidance language to a checkin note
// rather than a structured log.
func (p *Pipeline) stageNegation(t *turn) *ParseResult {
	for _, cue := range p.onto.NegationCues {
		if ontology.ContainsWord(t.cleanedLower, cue) {
			slots := NewNoteSlots(IntentCheckin)
			slots.Note = t.raw
			return newResult(IntentCheckin, 0.8, slots, "")
		}
	}
	return nil
}

// stageTime resolves the time slot early; its presence influences later
// confidence decisions. Always continues.
func (p *Pipeline) stageTime(t *turn) *ParseResult {
	t.time = timenorm.Parse(t.cleaned, t.loc, t.now)
	return nil
}

// stageReflux catches reflux/heartburn reports before generic symptoms.
func (p *Pipeline) stageReflux(t *turn) *ParseResult {
	for _, kw := range p.onto.RefluxKeywords {
		if ontology.ContainsWord(t.cleanedLower, kw) {
			return p.extractSymptom(t, IntentReflux, "reflux")
		}
	}
	return nil
}

// stageSymptom canonicalizes pain/bloat/nausea synonyms into a symptom
// report.
func (p *Pipeline) stageSymptom(t *turn) *ParseResult {
	canonical, ok := p.findSymptom(t.cleanedLower)
	if !ok {
		return nil
	}
	return p.extractSymptom(t, IntentSymptom, canonical)
}

func (p *Pipeline) extractSymptom(t *turn, intent Intent, canonical string) *ParseResult {
	slots := NewSymptomSlots(intent)
	if canonical == "" {
		if found, ok := p.findSymptom(t.rawLower); ok {
			canonical = found
		}
	}
	slots.Symptom = canonical

	confidence := 0.70
	if intent == IntentSymptom {
		confidence = 0.65
	}
	if _, sev, ok := p.findSeverity(t.rawLower); ok {
		slots.Severity = sev
		confidence += 0.15
	}

	inferred := false
	if t.time.MealTime != "" || t.time.Time != "" {
		if !t.time.Inferred {
			confidence += 0.05
		}
		slots.MealTime = t.time.MealTime
		slots.Time = t.time.Time
		inferred = t.time.Inferred
	}

	r := newResult(intent, confidence, slots, "")
	r.Meta.TimeInferred = inferred
	return r
}

// stageMood records mood check-ins ("feeling anxious today").
func (p *Pipeline) stageMood(t *turn) *ParseResult {
	mood, ok := p.findMood(t.cleanedLower)
	if !ok {
		return nil
	}
	// Mood words inside an intake sentence describe the meal, not the
	// user ("great smoothie").
	if p.hasLoggableContent(t.cleanedLower) {
		return nil
	}
	slots := NewNoteSlots(IntentMood)
	slots.Mood = mood
	slots.Note = t.raw
	return newResult(IntentMood, 0.7, slots, "")
}

// stageFallback is the terminal stage: intent other, low confidence,
// clarification required.
func (p *Pipeline) stageFallback(t *turn) *ParseResult {
	r := newResult(IntentOther, 0.3, NewEmptySlots(IntentOther), "")
	r.Missing = []SlotName{SlotClarification}
	return r
}

// findSeverity scans for the longest severity adjective and returns the
// matched word and its 1-10 value.
func (p *Pipeline) findSeverity(lower string) (string, int, bool) {
	best := ""
	value := 0
	for word, sev := range p.onto.SeverityWords {
		if ontology.ContainsWord(lower, word) && len(word) > len(best) {
			best = word
			value = sev
		}
	}
	return best, value, best != ""
}

// findBristol scans for the longest stool-consistency adjective and
// returns the matched word and its Bristol scale value.
func (p *Pipeline) findBristol(lower string) (string, int, bool) {
	best := ""
	value := 0
	for word, scale := range p.onto.BristolWords {
		if ontology.ContainsWord(lower, word) && len(word) > len(best) {
			best = word
			value = scale
		}
	}
	return best, value, best != ""
}

// findSymptom returns the canonical symptom for the longest matching
// synonym.
func (p *Pipeline) findSymptom(lower string) (string, bool) {
	best := ""
	canonical := ""
	for syn, canon := range p.onto.SymptomSynonyms {
		if ontology.ContainsWord(lower, syn) && len(syn) > len(best) {
			best = syn
			canonical = canon
		}
	}
	return canonical, best != ""
}

func (p *Pipeline) findMood(lower string) (string, bool) {
	best := ""
	mood := ""
	for word, canon := range p.onto.MoodWords {
		if ontology.ContainsWord(lower, word) && len(word) > len(best) {
			best = word
			mood = canon
		}
	}
	return mood, best != ""
}

func coarseDaypart(lower string) (string, bool) {
	for _, dp := range []string{"morning", "afternoon", "evening", "night", "midday", "noon"} {
		if ontology.ContainsWord(lower, dp) {
			return dp, true
		}
	}
	return "", false
}
