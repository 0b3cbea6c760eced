// Package spell provides fuzzy spell correction against ontology
// dictionaries, with domain guards that keep symptom vocabulary from being
// rewritten into food/drink terms.
package spell

import (
	"strings"
	"unicode"

	"github.com/xrash/smetrics"

	"github.com/mkellerman/gutlog/internal/ontology"
)

// Context tells the corrector what kind of utterance it is working on.
type Context int

const (
	ContextGeneral Context = iota
	// ContextSymptomatic raises the bar for cross-domain corrections so a
	// symptom report is never silently turned into a food log.
	ContextSymptomatic
)

// Dictionary is a named word list to correct against. CrossDomain marks
// dictionaries whose words belong to the food/drink domain.
type Dictionary struct {
	Name        string
	Words       []string
	CrossDomain bool
}

// Correction records a single substitution made by CorrectTokens.
type Correction struct {
	From  string
	To    string
	Dict  string
	Score float64
}

// Corrector fuzzy-matches tokens against dictionaries using Jaro-Winkler
// similarity. Zero-value thresholds fall back to the ontology defaults.
type Corrector struct {
	onto *ontology.Store
	th   ontology.Thresholds
}

// New creates a Corrector over the given ontology and thresholds.
func New(onto *ontology.Store, th ontology.Thresholds) *Corrector {
	if !th.Valid() {
		th = ontology.DefaultThresholds()
	}
	return &Corrector{onto: onto, th: th}
}

// Correct returns the best dictionary candidate for word scoring at or
// above threshold, or ok=false when nothing qualifies. An exact match
// returns the word unchanged with score 1.
func (c *Corrector) Correct(word string, dict []string, threshold float64) (string, float64, bool) {
	word = strings.ToLower(word)
	if word == "" {
		return "", 0, false
	}
	best := ""
	bestScore := 0.0
	for _, cand := range dict {
		lc := strings.ToLower(cand)
		if lc == word {
			return cand, 1, true
		}
		score := smetrics.JaroWinkler(word, lc, 0.7, 4)
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	if bestScore >= threshold {
		return best, bestScore, true
	}
	return "", bestScore, false
}

// CorrectTokens applies Correct word-by-word across text, skipping tokens
// shorter than three runes, numbers, and protected vocabulary. It returns
// the corrected text and every substitution made. Internal failures fail
// open: the worst outcome is the input coming back unchanged.
func (c *Corrector) CorrectTokens(text string, dicts []Dictionary, ctx Context) (string, []Correction) {
	tokens := strings.Fields(text)
	var corrections []Correction

	for i, tok := range tokens {
		core, prefix, suffix := trimPunct(tok)
		if len([]rune(core)) < 3 || isNumeric(core) {
			continue
		}
		lower := strings.ToLower(core)
		if c.onto.ProtectedWords[lower] {
			continue
		}
		// A word that is an exact member of any dictionary is already
		// spelled right; checking the union first keeps an earlier
		// dictionary's fuzzy candidate from shadowing a later exact one
		// ("green" must not become "greek").
		if exactMember(lower, dicts) {
			continue
		}

		for _, d := range dicts {
			threshold := c.th.Spell
			if ctx == ContextSymptomatic && d.CrossDomain {
				threshold = c.th.SpellProtected
			}
			corrected, score, ok := c.Correct(lower, d.Words, threshold)
			if !ok {
				continue
			}
			if pluralVariant(lower, strings.ToLower(corrected)) {
				break // "bite" vs "bites" is a number difference, not a typo
			}
			replacement := matchCase(core, corrected)
			tokens[i] = prefix + replacement + suffix
			corrections = append(corrections, Correction{
				From:  core,
				To:    replacement,
				Dict:  d.Name,
				Score: score,
			})
			break
		}
	}

	return strings.Join(tokens, " "), corrections
}

// DefaultDictionaries returns the standard dictionary stack: brands first
// (most specific), then foods, then beverages.
func DefaultDictionaries(onto *ontology.Store) []Dictionary {
	return []Dictionary{
		{Name: "brand", Words: onto.BrandDict(), CrossDomain: true},
		{Name: "food", Words: onto.FoodDict(), CrossDomain: true},
		{Name: "beverage", Words: onto.BeverageDict(), CrossDomain: true},
	}
}

// exactMember reports whether word appears verbatim in any dictionary.
func exactMember(word string, dicts []Dictionary) bool {
	for _, d := range dicts {
		for _, cand := range d.Words {
			if strings.EqualFold(cand, word) {
				return true
			}
		}
	}
	return false
}

// pluralVariant reports whether a and b differ only by a plural suffix.
func pluralVariant(a, b string) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	if b == a+"s" || b == a+"es" {
		return true
	}
	return strings.HasSuffix(a, "y") && b == a[:len(a)-1]+"ies"
}

func trimPunct(tok string) (core, prefix, suffix string) {
	start := 0
	end := len(tok)
	for start < end && isPunctByte(tok[start]) {
		start++
	}
	for end > start && isPunctByte(tok[end-1]) {
		end--
	}
	return tok[start:end], tok[:start], tok[end:]
}

func isPunctByte(c byte) bool {
	switch c {
	case '.', ',', '!', '?', ';', ':', '(', ')', '"', '\'':
		return true
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != '/' {
			return false
		}
	}
	return true
}

// matchCase carries a leading capital from the original token onto the
// replacement, unless the replacement has its own casing (brand names).
func matchCase(original, replacement string) string {
	if replacement != strings.ToLower(replacement) {
		return replacement
	}
	if original == "" || replacement == "" {
		return replacement
	}
	if unicode.IsUpper([]rune(original)[0]) {
		r := []rune(replacement)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return replacement
}
