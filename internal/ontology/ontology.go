// Package ontology holds the static lexicons, conversion tables, and
// tuning constants that drive the extraction pipeline. All tables are
// immutable after construction; nothing in this package mutates at runtime.
package ontology

import "strings"

// BeverageKind classifies a beverage within the taxonomy.
type BeverageKind string

const (
	BeverageTea     BeverageKind = "tea"
	BeverageCoffee  BeverageKind = "coffee"
	BeverageMilk    BeverageKind = "milk"
	BeverageJuice   BeverageKind = "juice"
	BeverageSoda    BeverageKind = "soda"
	BeverageAlcohol BeverageKind = "alcohol"
	BeverageOther   BeverageKind = "other"
)

// DensityEntry maps an item-name substring to a category and its
// grams-per-cup estimate, used when a volume-like unit is given with no
// explicit mass.
type DensityEntry struct {
	Match       string // substring matched against the item name
	Category    string
	GramsPerCup float64
}

// Construction is a fixed multi-word item with a non-obvious canonical
// form. Checked before generic head-noun matching.
type Construction struct {
	Pattern   string // lowercase phrase matched as a substring
	Canonical string
	Grams     float64 // implied portion, 0 if none
}

// Store is the read-only ontology shared by the whole pipeline.
type Store struct {
	HeadNouns map[string]bool

	// Brands maps every known spelling variant (lowercase) to the
	// canonical brand name.
	Brands map[string]string

	Beverages     map[string]BeverageKind
	Constructions []Construction

	VolumeUnitsML map[string]float64
	MassUnitsG    map[string]float64
	CountUnits    map[string]bool
	CafeSizesML   map[string]float64
	Fractions     map[rune]float64

	Density []DensityEntry

	SeverityWords   map[string]int // 1..10
	BristolWords    map[string]int // 1..7
	SymptomSynonyms map[string]string

	BMKeywords     []string
	RefluxKeywords []string
	MoodWords      map[string]string
	NegationCues   []string

	MinimalCore    map[string]bool
	Stopwords      map[string]bool
	ProtectedWords map[string]bool

	DairyMarkers    []string
	NonDairyMarkers []string
	CaffeineMarkers []string
	DecafMarkers    []string

	FoodVerbs  map[string]bool
	DrinkVerbs map[string]bool

	GreetingWords   []string
	ThanksWords     []string
	FarewellWords   []string
	ChitChatPhrases []string

	foodDict     []string
	beverageDict []string
	brandDict    []string
}

var defaultStore = build()

// Default returns the shared immutable ontology.
func Default() *Store { return defaultStore }

// IsHeadNoun reports whether w (singular or plural) anchors item extraction.
func (s *Store) IsHeadNoun(w string) bool {
	w = strings.ToLower(w)
	if s.HeadNouns[w] {
		return true
	}
	if sing, ok := Singular(w); ok && s.HeadNouns[sing] {
		return true
	}
	return false
}

// BeverageKindOf returns the taxonomy kind for a phrase, matching the
// longest beverage keyword contained in it.
func (s *Store) BeverageKindOf(phrase string) (BeverageKind, bool) {
	phrase = strings.ToLower(phrase)
	best := ""
	var kind BeverageKind
	for kw, k := range s.Beverages {
		if ContainsWord(phrase, kw) && len(kw) > len(best) {
			best = kw
			kind = k
		}
	}
	return kind, best != ""
}

// LookupBrand resolves a token to a canonical brand name, honoring known
// spelling variants.
func (s *Store) LookupBrand(token string) (string, bool) {
	b, ok := s.Brands[strings.ToLower(token)]
	return b, ok
}

// ContainsBMKeyword checks the raw lowercase text for bowel-movement
// vocabulary. Callers must run this before any spell correction.
func (s *Store) ContainsBMKeyword(raw string) bool {
	raw = strings.ToLower(raw)
	for _, kw := range s.BMKeywords {
		if ContainsWord(raw, kw) {
			return true
		}
	}
	return false
}

// DensityFor returns the density entry whose Match substring occurs in item.
func (s *Store) DensityFor(item string) (DensityEntry, bool) {
	item = strings.ToLower(item)
	for _, d := range s.Density {
		if strings.Contains(item, d.Match) {
			return d, true
		}
	}
	return DensityEntry{}, false
}

// FoodDict is the spell-correction dictionary of food vocabulary.
func (s *Store) FoodDict() []string { return s.foodDict }

// BeverageDict is the spell-correction dictionary of beverage vocabulary.
func (s *Store) BeverageDict() []string { return s.beverageDict }

// BrandDict is the spell-correction dictionary of canonical brand names.
func (s *Store) BrandDict() []string { return s.brandDict }

// Singular strips a trailing plural "s"/"es" where that yields a plausible
// word. Returns false when w is not plural-looking.
func Singular(w string) (string, bool) {
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y", true
	case strings.HasSuffix(w, "es") && len(w) > 3:
		return w[:len(w)-2], true
	case strings.HasSuffix(w, "s") && len(w) > 2:
		return w[:len(w)-1], true
	}
	return w, false
}

// ContainsWord reports whether phrase contains kw on word boundaries.
func ContainsWord(phrase, kw string) bool {
	idx := 0
	for {
		i := strings.Index(phrase[idx:], kw)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(phrase[i-1])
		after := i+len(kw) == len(phrase) || !isWordByte(phrase[i+len(kw)])
		if before && after {
			return true
		}
		idx = i + 1
		if idx >= len(phrase) {
			return false
		}
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
