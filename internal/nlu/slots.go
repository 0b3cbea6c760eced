package nlu

import (
	"strconv"
	"strings"

	"github.com/mkellerman/gutlog/internal/portion"
	"github.com/mkellerman/gutlog/internal/timenorm"
)

// SlotName identifies a typed field extracted for an intent.
type SlotName string

const (
	SlotItem        SlotName = "item"
	SlotBrand       SlotName = "brand_variant"
	SlotMealTime    SlotName = "meal_time"
	SlotTime        SlotName = "time"
	SlotPortionG    SlotName = "portion_g"
	SlotPortionML   SlotName = "portion_ml"
	SlotMultiplier  SlotName = "multiplier"
	SlotDairy       SlotName = "dairy"
	SlotCaffeine    SlotName = "caffeine"
	SlotSides       SlotName = "sides"
	SlotSymptom     SlotName = "symptom"
	SlotSeverity    SlotName = "severity"
	SlotBristol     SlotName = "bristol"
	SlotBristolNote SlotName = "bristol_note"
	SlotDaypart     SlotName = "daypart"
	SlotNote        SlotName = "note"
	SlotMood        SlotName = "mood"
)

// Pair is one key=value token of the persisted notes representation.
type Pair struct {
	Key   SlotName
	Value string
}

// Slots is the tagged union of per-intent slot payloads. Get returns the
// current value of a slot; Set fills a slot from its string form and
// reports whether the name applies to this payload.
type Slots interface {
	Kind() Intent
	Required() []SlotName
	Get(SlotName) (string, bool)
	Set(SlotName, string) bool
	Pairs() []Pair
}

// MissingSlots lists required slots that are not yet filled, in the
// payload's declared order.
func MissingSlots(s Slots) []SlotName {
	var missing []SlotName
	for _, name := range s.Required() {
		if v, ok := s.Get(name); !ok || v == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Secondary is a second loggable entity found in the same utterance,
// typically a beverage mentioned alongside a food.
type Secondary struct {
	Intent     Intent
	Item       string
	Confidence float64
}

// IntakeSlots is the payload for food and drink intents.
type IntakeSlots struct {
	intent    Intent
	Item      string
	Brand     string
	MealTime  timenorm.MealWindow
	Time      string
	Portion   *portion.Info
	Dairy     string // "dairy" or "non_dairy"
	Caffeine  string // "caffeinated" or "decaf"
	Sides     string
	Secondary *Secondary
}

// NewIntakeSlots creates an intake payload tagged food or drink.
func NewIntakeSlots(intent Intent) *IntakeSlots {
	return &IntakeSlots{intent: intent}
}

func (s *IntakeSlots) Kind() Intent { return s.intent }

// Retag switches the payload between food and drink.
func (s *IntakeSlots) Retag(intent Intent) { s.intent = intent }

func (s *IntakeSlots) Required() []SlotName { return []SlotName{SlotItem} }

func (s *IntakeSlots) Get(name SlotName) (string, bool) {
	switch name {
	case SlotItem:
		return s.Item, true
	case SlotBrand:
		return s.Brand, true
	case SlotMealTime:
		return string(s.MealTime), true
	case SlotTime:
		return s.Time, true
	case SlotDairy:
		return s.Dairy, true
	case SlotCaffeine:
		return s.Caffeine, true
	case SlotSides:
		return s.Sides, true
	case SlotPortionG:
		if s.Portion != nil && s.Portion.Grams != nil {
			return formatFloat(*s.Portion.Grams), true
		}
		return "", true
	case SlotPortionML:
		if s.Portion != nil && s.Portion.Millilitres != nil {
			return formatFloat(*s.Portion.Millilitres), true
		}
		return "", true
	case SlotMultiplier:
		if s.Portion != nil {
			return formatFloat(s.Portion.Multiplier), true
		}
		return "", true
	}
	return "", false
}

func (s *IntakeSlots) Set(name SlotName, value string) bool {
	switch name {
	case SlotItem:
		s.Item = value
	case SlotBrand:
		s.Brand = value
	case SlotMealTime:
		s.MealTime = timenorm.MealWindow(value)
	case SlotTime:
		s.Time = value
	case SlotDairy:
		s.Dairy = value
	case SlotCaffeine:
		s.Caffeine = value
	case SlotSides:
		s.Sides = value
	default:
		return false
	}
	return true
}

func (s *IntakeSlots) Pairs() []Pair {
	var pairs []Pair
	add := func(k SlotName, v string) {
		if v != "" {
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
	}
	add(SlotItem, s.Item)
	add(SlotBrand, s.Brand)
	add(SlotMealTime, string(s.MealTime))
	add(SlotTime, s.Time)
	if s.Portion != nil {
		if s.Portion.Grams != nil {
			add(SlotPortionG, formatFloat(*s.Portion.Grams))
		}
		if s.Portion.Millilitres != nil {
			add(SlotPortionML, formatFloat(*s.Portion.Millilitres))
		}
		add(SlotMultiplier, formatFloat(s.Portion.Multiplier))
	}
	add(SlotDairy, s.Dairy)
	add(SlotCaffeine, s.Caffeine)
	add(SlotSides, s.Sides)
	return pairs
}

// SymptomSlots is the payload for symptom and reflux intents.
type SymptomSlots struct {
	intent   Intent
	Symptom  string
	Severity int // 1..10, 0 when unknown
	MealTime timenorm.MealWindow
	Time     string
}

// NewSymptomSlots creates a symptom payload tagged symptom or reflux.
func NewSymptomSlots(intent Intent) *SymptomSlots {
	return &SymptomSlots{intent: intent}
}

func (s *SymptomSlots) Kind() Intent         { return s.intent }
func (s *SymptomSlots) Required() []SlotName { return []SlotName{SlotSeverity} }

func (s *SymptomSlots) Get(name SlotName) (string, bool) {
	switch name {
	case SlotSymptom:
		return s.Symptom, true
	case SlotSeverity:
		if s.Severity == 0 {
			return "", true
		}
		return strconv.Itoa(s.Severity), true
	case SlotMealTime:
		return string(s.MealTime), true
	case SlotTime:
		return s.Time, true
	}
	return "", false
}

func (s *SymptomSlots) Set(name SlotName, value string) bool {
	switch name {
	case SlotSymptom:
		s.Symptom = value
	case SlotSeverity:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 10 {
			return false
		}
		s.Severity = n
	case SlotMealTime:
		s.MealTime = timenorm.MealWindow(value)
	case SlotTime:
		s.Time = value
	default:
		return false
	}
	return true
}

func (s *SymptomSlots) Pairs() []Pair {
	var pairs []Pair
	if s.Symptom != "" {
		pairs = append(pairs, Pair{SlotSymptom, s.Symptom})
	}
	if s.Severity > 0 {
		pairs = append(pairs, Pair{SlotSeverity, strconv.Itoa(s.Severity)})
	}
	if s.MealTime != "" {
		pairs = append(pairs, Pair{SlotMealTime, string(s.MealTime)})
	}
	if s.Time != "" {
		pairs = append(pairs, Pair{SlotTime, s.Time})
	}
	return pairs
}

// BMSlots is the payload for bowel-movement reports.
type BMSlots struct {
	Bristol     int // 1..7, 0 when unknown
	BristolNote string
	Daypart     string
}

func (s *BMSlots) Kind() Intent         { return IntentBM }
func (s *BMSlots) Required() []SlotName { return []SlotName{SlotBristol} }

func (s *BMSlots) Get(name SlotName) (string, bool) {
	switch name {
	case SlotBristol:
		if s.Bristol == 0 {
			return "", true
		}
		return strconv.Itoa(s.Bristol), true
	case SlotBristolNote:
		return s.BristolNote, true
	case SlotDaypart:
		return s.Daypart, true
	}
	return "", false
}

func (s *BMSlots) Set(name SlotName, value string) bool {
	switch name {
	case SlotBristol:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > 7 {
			return false
		}
		s.Bristol = n
	case SlotBristolNote:
		s.BristolNote = value
	case SlotDaypart:
		s.Daypart = value
	default:
		return false
	}
	return true
}

func (s *BMSlots) Pairs() []Pair {
	var pairs []Pair
	if s.Bristol > 0 {
		pairs = append(pairs, Pair{SlotBristol, strconv.Itoa(s.Bristol)})
	}
	if s.BristolNote != "" {
		pairs = append(pairs, Pair{SlotBristolNote, s.BristolNote})
	}
	if s.Daypart != "" {
		pairs = append(pairs, Pair{SlotDaypart, s.Daypart})
	}
	return pairs
}

// NoteSlots is the payload for checkin and mood intents: a free-text note
// rather than a structured log.
type NoteSlots struct {
	intent Intent
	Note   string
	Mood   string
}

// NewNoteSlots creates a note payload tagged checkin or mood.
func NewNoteSlots(intent Intent) *NoteSlots {
	return &NoteSlots{intent: intent}
}

func (s *NoteSlots) Kind() Intent         { return s.intent }
func (s *NoteSlots) Required() []SlotName { return nil }

func (s *NoteSlots) Get(name SlotName) (string, bool) {
	switch name {
	case SlotNote:
		return s.Note, true
	case SlotMood:
		return s.Mood, true
	}
	return "", false
}

func (s *NoteSlots) Set(name SlotName, value string) bool {
	switch name {
	case SlotNote:
		s.Note = value
	case SlotMood:
		s.Mood = value
	default:
		return false
	}
	return true
}

func (s *NoteSlots) Pairs() []Pair {
	var pairs []Pair
	if s.Mood != "" {
		pairs = append(pairs, Pair{SlotMood, s.Mood})
	}
	if s.Note != "" {
		pairs = append(pairs, Pair{SlotNote, s.Note})
	}
	return pairs
}

// EmptySlots is the payload for conversational intents with nothing to log.
type EmptySlots struct {
	intent Intent
}

// NewEmptySlots creates an empty payload for a conversational intent.
func NewEmptySlots(intent Intent) *EmptySlots { return &EmptySlots{intent: intent} }

func (s *EmptySlots) Kind() Intent              { return s.intent }
func (s *EmptySlots) Required() []SlotName      { return nil }
func (s *EmptySlots) Get(SlotName) (string, bool) { return "", false }
func (s *EmptySlots) Set(SlotName, string) bool { return false }
func (s *EmptySlots) Pairs() []Pair             { return nil }

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
