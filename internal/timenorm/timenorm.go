// Package timenorm resolves absolute, relative, and clock-inferred time
// expressions into a canonical time-of-day / meal-window slot.
package timenorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MealWindow names the five clock-bounded meal periods.
type MealWindow string

const (
	MealBreakfast MealWindow = "breakfast"
	MealLunch     MealWindow = "lunch"
	MealSnack     MealWindow = "snack"
	MealDinner    MealWindow = "dinner"
	MealLate      MealWindow = "late"
)

// Info is the resolved time slot for an utterance. Inferred marks values
// guessed from the caller's clock rather than stated in the text, so
// downstream consumers can tell the two apart.
type Info struct {
	Time      string // "HH:MM", empty when only a meal window is known
	Timestamp *time.Time
	MealTime  MealWindow
	Approx    bool
	Inferred  bool
}

var (
	clockRe  = regexp.MustCompile(`\b(?:at\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	clock24Re = regexp.MustCompile(`\b(?:at\s+)(\d{1,2}):(\d{2})\b`)
)

// mealWords maps explicit meal mentions to windows.
var mealWords = map[string]MealWindow{
	"breakfast": MealBreakfast, "brekkie": MealBreakfast, "brunch": MealBreakfast,
	"lunch": MealLunch, "lunchtime": MealLunch,
	"snack": MealSnack,
	"dinner": MealDinner, "supper": MealDinner,
	"late night": MealLate, "midnight snack": MealLate,
}

// daypartWords maps relative daypart expressions to windows.
var daypartWords = map[string]MealWindow{
	"this morning": MealBreakfast, "morning": MealBreakfast,
	"midday": MealLunch, "noon": MealLunch, "midmorning": MealBreakfast,
	"this afternoon": MealSnack, "afternoon": MealSnack,
	"this evening": MealDinner, "evening": MealDinner, "tonight": MealDinner,
	"last night": MealLate, "late night": MealLate, "before bed": MealLate,
}

// Parse resolves the time slot for text. It tries, in order: absolute
// clock times, explicit meal words, relative dayparts, then silent
// inference from now in the given location.
func Parse(text string, loc *time.Location, now time.Time) Info {
	if loc == nil {
		loc = time.Local
	}
	lower := strings.ToLower(text)
	local := now.In(loc)

	if info, ok := parseClock(lower, local); ok {
		return info
	}

	if mw, ok := matchPhrase(lower, mealWords); ok {
		return Info{MealTime: mw, Approx: true}
	}

	if mw, ok := matchPhrase(lower, daypartWords); ok {
		return Info{MealTime: mw, Approx: true}
	}

	return Info{MealTime: WindowFor(local), Approx: true, Inferred: true}
}

// WindowFor maps a local clock time into a meal window. The late window
// wraps past midnight; the quiet hours before dawn also resolve to late.
func WindowFor(t time.Time) MealWindow {
	h := t.Hour()
	switch {
	case h >= 5 && h < 11:
		return MealBreakfast
	case h >= 11 && h < 15:
		return MealLunch
	case h >= 15 && h < 17:
		return MealSnack
	case h >= 17 && h < 22:
		return MealDinner
	default: // 22:00–05:00
		return MealLate
	}
}

// Daypart returns a coarse daypart word for a window, used in note text.
func Daypart(mw MealWindow) string {
	switch mw {
	case MealBreakfast:
		return "morning"
	case MealLunch:
		return "midday"
	case MealSnack:
		return "afternoon"
	case MealDinner:
		return "evening"
	case MealLate:
		return "night"
	}
	return ""
}

func parseClock(lower string, local time.Time) (Info, bool) {
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return clockInfo(hour, minute, local)
	}
	if m := clock24Re.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clockInfo(hour, minute, local)
	}
	return Info{}, false
}

func clockInfo(hour, minute int, local time.Time) (Info, bool) {
	if hour > 23 || minute > 59 {
		return Info{}, false
	}
	ts := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	// A stated time later than now refers to earlier today only if it is
	// plausibly the same day; otherwise assume yesterday evening.
	if ts.After(local.Add(2 * time.Hour)) {
		ts = ts.AddDate(0, 0, -1)
	}
	return Info{
		Time:      fmt.Sprintf("%02d:%02d", hour, minute),
		Timestamp: &ts,
		MealTime:  WindowFor(ts),
	}, true
}

func matchPhrase(lower string, table map[string]MealWindow) (MealWindow, bool) {
	best := ""
	var win MealWindow
	for phrase, mw := range table {
		if strings.Contains(lower, phrase) && len(phrase) > len(best) {
			best = phrase
			win = mw
		}
	}
	return win, best != ""
}
