// Package portion parses quantity+unit expressions into grams or
// millilitres plus a serving multiplier relative to a canonical reference
// quantity (1 cup = 236 ml, or 100 g).
package portion

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mkellerman/gutlog/internal/ontology"
)

// ItemType hints what the portion belongs to.
type ItemType string

const (
	ItemFood  ItemType = "food"
	ItemDrink ItemType = "drink"
)

// Reference quantities the multiplier is expressed against, so downstream
// calorie/macro scaling is unit-agnostic.
const (
	RefCupML = 236.0
	RefMassG = 100.0
	bowlCups = 400.0 / RefCupML
)

// Info is a normalized portion. Raw is a canonical rendering that Parse
// accepts back, yielding the same normalized values.
type Info struct {
	Raw         string
	Grams       *float64
	Millilitres *float64
	Multiplier  float64
}

// Parser resolves portion expressions against the ontology unit tables.
type Parser struct {
	onto *ontology.Store
}

// New creates a Parser over the given ontology.
func New(onto *ontology.Store) *Parser {
	return &Parser{onto: onto}
}

var qtyUnitRe = regexp.MustCompile(`(\d+\s*/\s*\d+|\d+(?:\.\d+)?|[\x{00BC}-\x{00BE}\x{2150}-\x{215E}])\s*(fl\s*oz|[a-zA-Z]+)`)
var bareNumberRe = regexp.MustCompile(`(?:^|\s)(\d+(?:\.\d+)?|\d+\s*/\s*\d+)(?:\s|$)`)

// Parse extracts the first recognizable portion expression from text.
// Priority: named café/bowl sizes, quantity+volume, quantity+mass or
// count, bare-number multiplier. Returns nil when nothing matches.
func (p *Parser) Parse(text string, itemType ItemType) *Info {
	lower := strings.ToLower(text)

	if info := p.parseCafeSize(lower, itemType); info != nil {
		return info
	}

	for _, m := range qtyUnitRe.FindAllStringSubmatch(lower, -1) {
		qty, ok := p.parseQuantity(m[1])
		if !ok || qty <= 0 {
			continue
		}
		unit := normalizeUnit(m[2])

		if perML, ok := p.onto.VolumeUnitsML[unit]; ok {
			ml := round1(qty * perML)
			return &Info{
				Raw:         formatAmount(ml, "ml"),
				Millilitres: &ml,
				Multiplier:  round2(ml / RefCupML),
			}
		}
		if perG, ok := p.onto.MassUnitsG[unit]; ok {
			g := round1(qty * perG)
			return &Info{
				Raw:        formatAmount(g, "g"),
				Grams:      &g,
				Multiplier: round2(g / RefMassG),
			}
		}
		if p.onto.CountUnits[unit] {
			return &Info{
				Raw:        fmt.Sprintf("%s %s", trimFloat(qty), unit),
				Multiplier: round2(qty),
			}
		}
	}

	if m := bareNumberRe.FindStringSubmatch(lower); m != nil {
		if qty, ok := p.parseQuantity(strings.TrimSpace(m[1])); ok && qty > 0 {
			return &Info{
				Raw:        trimFloat(qty),
				Multiplier: round2(qty),
			}
		}
	}

	return nil
}

// InferByCategory estimates grams for an item with no explicit mass, when
// the item matches a density category and the unit is volume-like (cup or
// bowl). It never fabricates a mass for incompatible pairs.
func (p *Parser) InferByCategory(item, unit string, qty float64) *float64 {
	if qty <= 0 {
		return nil
	}
	d, ok := p.onto.DensityFor(item)
	if !ok {
		return nil
	}
	var cups float64
	switch normalizeUnit(unit) {
	case "cup", "cups":
		cups = qty
	case "bowl", "bowls":
		cups = qty * bowlCups
	default:
		return nil
	}
	g := round1(d.GramsPerCup * cups)
	return &g
}

// genericSizes are plain size adjectives, meaningful as portions only for
// drinks ("large latte"); a large salad is not 473 ml.
var genericSizes = map[string]bool{"small": true, "medium": true, "large": true}

func (p *Parser) parseCafeSize(lower string, itemType ItemType) *Info {
	for _, tok := range strings.Fields(lower) {
		tok = strings.Trim(tok, ".,!?")
		if genericSizes[tok] && itemType != ItemDrink {
			continue
		}
		if ml, ok := p.onto.CafeSizesML[tok]; ok {
			v := round1(ml)
			return &Info{
				Raw:         formatAmount(v, "ml"),
				Millilitres: &v,
				Multiplier:  round2(v / RefCupML),
			}
		}
	}
	return nil
}

func (p *Parser) parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	runes := []rune(s)
	if len(runes) == 1 {
		if v, ok := p.onto.Fractions[runes[0]]; ok {
			return v, true
		}
	}
	if strings.Contains(s, "/") {
		parts := strings.SplitN(s, "/", 2)
		n, errN := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if errN != nil || errD != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.Join(strings.Fields(u), " ")
	if u == "fl oz" {
		return "floz"
	}
	return u
}

func formatAmount(v float64, unit string) string {
	return fmt.Sprintf("%s %s", trimFloat(v), unit)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
