package nlu

import (
	"strings"

	"github.com/mkellerman/gutlog/internal/ontology"
	"github.com/mkellerman/gutlog/internal/portion"
)

// itemMatch is the outcome of extracting an item from one clause.
type itemMatch struct {
	Item         string
	Brand        string
	HeadNoun     bool
	ImpliedGrams float64 // from a fixed construction, 0 if none
}

// stageIntake runs the food/drink extraction heuristic: clause splitting,
// construction/brand/head-noun anchoring, secondary beverage detection,
// and the rescue strategies.
func (p *Pipeline) stageIntake(t *turn) *ParseResult {
	main, sides := p.splitClauses(t.cleanedLower)

	match := p.extractItem(main)
	var secondary *Secondary
	if sides != "" {
		if item, ok := p.beveragePhrase(sides); ok {
			secondary = &Secondary{Intent: IntentDrink, Item: item, Confidence: 0.8}
		}
	}

	rescued := RescueNone
	if match.Item == "" && sides != "" {
		// Swap rescue: the sides clause holds the head noun the main
		// clause lacks ("with toast, eggs" style inversions).
		if sm := p.extractItem(sides); sm.Item != "" && sm.HeadNoun {
			match = sm
			main, sides = sides, main
			rescued = RescueSwapSides
			secondary = nil
			if item, ok := p.beveragePhrase(sides); ok {
				secondary = &Secondary{Intent: IntentDrink, Item: item, Confidence: 0.75}
			}
		}
	}
	if match.Item == "" && secondary != nil {
		// Promote-beverage rescue: no primary item, but a beverage was
		// waiting in the sides clause.
		match.Item = secondary.Item
		rescued = RescuePromoteBeverage
		secondary = nil
	}
	if match.Item == "" {
		if item, ok := p.beveragePhrase(main); ok {
			match.Item = item
		}
	}
	if match.Item == "" && rescued == RescueNone && p.hasIntakeVerb(t.cleanedLower) {
		// Generic noun fallback only makes sense under an eat/drink verb;
		// verbless text with no known noun is not an intake.
		match.Item = p.genericNoun(main)
	}
	if match.Item == "" {
		return nil
	}

	slots := NewIntakeSlots(IntentFood)
	slots.Item = match.Item
	slots.Brand = match.Brand
	if sides != "" && secondary == nil && rescued != RescuePromoteBeverage {
		slots.Sides = strings.TrimSpace(sides)
	}
	slots.Secondary = secondary

	p.tagIntake(t, slots)
	if slots.Portion == nil && match.ImpliedGrams > 0 {
		g := match.ImpliedGrams
		slots.Portion = &portion.Info{
			Raw:        portionRaw(g),
			Grams:      &g,
			Multiplier: g / portion.RefMassG,
		}
	}

	intent := p.classifyIntake(t, slots.Item)
	slots.Retag(intent)

	slots.MealTime = t.time.MealTime
	slots.Time = t.time.Time

	confidence := p.intakeConfidence(t, slots, match, rescued)
	r := newResult(intent, confidence, slots, "")
	r.Meta.HeadNoun = match.HeadNoun
	r.Meta.RescuedBy = rescued
	r.Meta.SecondaryIntent = secondary != nil
	r.Meta.TimeInferred = t.time.Inferred
	r.Meta.MinimalCore = p.onto.MinimalCore[slots.Item]
	if match.HeadNoun && !p.hasIntakeVerb(t.cleanedLower) &&
		!t.time.Inferred && (t.time.MealTime != "" || t.time.Time != "") {
		// Noun-plus-meal logs like "oatmeal breakfast" are accepted under
		// the relaxed rule; note it so consumers can tell.
		r.Meta.RelaxedNoun = true
	}
	return r
}

// splitClauses splits on the strongest available separator: "with" beats
// "&" beats "and". The "and" split is only honored when the right-hand
// clause itself contains a head noun or beverage, so single dish names
// like "rice and beans" stay whole.
func (p *Pipeline) splitClauses(lower string) (main, sides string) {
	if i := strings.Index(lower, " with "); i >= 0 {
		return lower[:i], lower[i+len(" with "):]
	}
	if i := strings.Index(lower, " & "); i >= 0 {
		return lower[:i], lower[i+len(" & "):]
	}
	if i := strings.Index(lower, " and "); i >= 0 {
		rhs := lower[i+len(" and "):]
		if p.clauseHasAnchor(rhs) {
			return lower[:i], rhs
		}
	}
	return lower, ""
}

func (p *Pipeline) clauseHasAnchor(clause string) bool {
	for _, tok := range strings.Fields(clause) {
		if p.onto.IsHeadNoun(strings.Trim(tok, ".,!?")) {
			return true
		}
	}
	_, ok := p.onto.BeverageKindOf(clause)
	return ok
}

// extractItem anchors an item phrase within one clause. Fixed multi-word
// constructions are checked before brands, brands before generic head
// nouns, because each is more specific than the next.
func (p *Pipeline) extractItem(clause string) itemMatch {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return itemMatch{}
	}

	for _, c := range p.onto.Constructions {
		if strings.Contains(clause, c.Pattern) {
			return itemMatch{Item: c.Canonical, HeadNoun: true, ImpliedGrams: c.Grams}
		}
	}

	tokens := strings.Fields(clause)
	brand := ""
	brandIdx := -1
	for i, tok := range tokens {
		if b, ok := p.onto.LookupBrand(strings.Trim(tok, ".,!?")); ok {
			brand = b
			brandIdx = i
			break
		}
	}

	for i, tok := range tokens {
		word := strings.Trim(tok, ".,!?")
		if !p.onto.IsHeadNoun(word) {
			continue
		}
		// Capture up to two preceding non-stopword tokens as modifiers
		// ("greek yogurt", "brown basmati rice").
		start := i
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			mod := strings.Trim(tokens[j], ".,!?")
			if p.onto.Stopwords[mod] || isDigitToken(mod) || j == brandIdx {
				break
			}
			start = j
		}
		phrase := strings.Trim(strings.Join(tokens[start:i+1], " "), ".,!?")
		return itemMatch{Item: phrase, Brand: brand, HeadNoun: true}
	}

	if brand != "" {
		return itemMatch{Item: strings.ToLower(brand), Brand: brand}
	}
	return itemMatch{}
}

// beveragePhrase returns the canonical beverage phrase contained in a
// clause, expanded to include a preceding modifier ("jasmine tea").
func (p *Pipeline) beveragePhrase(clause string) (string, bool) {
	clause = strings.TrimSpace(clause)
	if _, ok := p.onto.BeverageKindOf(clause); !ok {
		return "", false
	}
	tokens := strings.Fields(clause)
	for i, tok := range tokens {
		word := strings.Trim(tok, ".,!?")
		if _, ok := p.onto.Beverages[word]; !ok {
			continue
		}
		start := i
		if i > 0 {
			prev := strings.Trim(tokens[i-1], ".,!?")
			if !p.onto.Stopwords[prev] && !isDigitToken(prev) {
				start = i - 1
			}
		}
		return strings.Join(tokens[start:i+1], " "), true
	}
	// Multi-word beverage keyword ("cold brew") matched by BeverageKindOf.
	for kw := range p.onto.Beverages {
		if strings.Contains(kw, " ") && ontology.ContainsWord(clause, kw) {
			return kw, true
		}
	}
	return "", false
}

// genericNoun falls back to the longest run of non-stopword tokens in the
// clause, capped at three words.
func (p *Pipeline) genericNoun(clause string) string {
	tokens := strings.Fields(clause)
	var best []string
	var run []string
	flush := func() {
		if len(run) > len(best) {
			best = run
		}
		run = nil
	}
	for _, tok := range tokens {
		word := strings.Trim(tok, ".,!?")
		if word == "" || p.onto.Stopwords[word] || isDigitToken(word) ||
			p.onto.FoodVerbs[word] || p.onto.DrinkVerbs[word] {
			flush()
			continue
		}
		run = append(run, word)
	}
	flush()
	if len(best) == 0 {
		return ""
	}
	if len(best) > 3 {
		best = best[:3]
	}
	return strings.Join(best, " ")
}

// tagIntake applies portion normalization and dairy/caffeine metadata.
// Negative markers (non-dairy, decaf) take precedence over positive ones.
func (p *Pipeline) tagIntake(t *turn, slots *IntakeSlots) {
	itemType := portion.ItemFood
	if _, ok := p.onto.BeverageKindOf(slots.Item); ok {
		itemType = portion.ItemDrink
	}
	unit := portionUnit(t.cleanedLower)
	info := p.portions.Parse(t.cleanedLower, itemType)
	switch {
	case info == nil:
		// "a bowl of oatmeal" carries no numeral; a cup/bowl word alone
		// still supports density inference for a single serving.
		if unit != "" {
			if g := p.portions.InferByCategory(slots.Item, unit, 1); g != nil {
				info = &portion.Info{
					Raw:        portionRaw(*g),
					Grams:      g,
					Multiplier: *g / portion.RefMassG,
				}
			}
		}
	case info.Grams == nil && info.Millilitres == nil:
		if g := p.portions.InferByCategory(slots.Item, unit, info.Multiplier); g != nil {
			info.Grams = g
		}
	case info.Grams == nil && info.Millilitres != nil && itemType == portion.ItemFood && unit != "":
		// A cup/bowl volume of a food still wants a mass estimate.
		if g := p.portions.InferByCategory(slots.Item, "cup", *info.Millilitres/portion.RefCupML); g != nil {
			info.Grams = g
		}
	}
	if info != nil {
		slots.Portion = info
	}

	if matchAny(t.cleanedLower, p.onto.NonDairyMarkers) {
		slots.Dairy = "non_dairy"
	} else if matchAny(t.cleanedLower, p.onto.DairyMarkers) {
		slots.Dairy = "dairy"
	}
	if matchAny(t.cleanedLower, p.onto.DecafMarkers) {
		slots.Caffeine = "decaf"
	} else if matchAny(t.cleanedLower, p.onto.CaffeineMarkers) {
		slots.Caffeine = "caffeinated"
	}
}

// classifyIntake decides food vs drink: beverage taxonomy wins, then a
// drink-action verb without a food-action verb.
func (p *Pipeline) classifyIntake(t *turn, item string) Intent {
	if _, ok := p.onto.BeverageKindOf(item); ok {
		return IntentDrink
	}
	hasDrinkVerb := false
	hasFoodVerb := false
	for _, tok := range strings.Fields(t.cleanedLower) {
		word := strings.Trim(tok, ".,!?")
		if p.onto.DrinkVerbs[word] {
			hasDrinkVerb = true
		}
		if p.onto.FoodVerbs[word] {
			hasFoodVerb = true
		}
	}
	if hasDrinkVerb && !hasFoodVerb {
		return IntentDrink
	}
	return IntentFood
}

// intakeConfidence merges the independent signals into one score. Each
// agreeing signal adds a fixed increment so the value is monotone in the
// number of signals.
func (p *Pipeline) intakeConfidence(t *turn, slots *IntakeSlots, match itemMatch, rescued RescueStrategy) float64 {
	confidence := 0.45
	if match.HeadNoun {
		confidence += 0.20
	}
	if p.hasIntakeVerb(t.cleanedLower) {
		confidence += 0.10
	}
	if !t.time.Inferred && (t.time.MealTime != "" || t.time.Time != "") {
		confidence += 0.12
	}
	if slots.Portion != nil {
		confidence += 0.08
	}
	if slots.Brand != "" {
		confidence += 0.05
	}
	if rescued != RescueNone {
		// Rescued parses sit in the rescue band regardless of other signals.
		if confidence > 0.70 {
			confidence = 0.70
		}
		if confidence < p.th.Rescue {
			confidence = p.th.Rescue
		}
	}
	if confidence > 0.97 {
		confidence = 0.97
	}
	return confidence
}

var genericIntakeVerbs = map[string]bool{
	"had": true, "have": true, "having": true, "got": true, "tried": true,
}

func (p *Pipeline) hasIntakeVerb(lower string) bool {
	for _, tok := range strings.Fields(lower) {
		word := strings.Trim(tok, ".,!?")
		if p.onto.FoodVerbs[word] || p.onto.DrinkVerbs[word] || genericIntakeVerbs[word] {
			return true
		}
	}
	return false
}

// portionUnit pulls the unit word that followed a bare quantity, used for
// category-density inference (only cup/bowl qualify).
func portionUnit(lower string) string {
	for _, unit := range []string{"cups", "cup", "bowls", "bowl"} {
		if ontology.ContainsWord(lower, unit) {
			return unit
		}
	}
	return ""
}

func portionRaw(g float64) string {
	return formatFloat(g) + " g"
}

func matchAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isDigitToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
