// Package formatter renders parse results, entries, and lexicon listings
// for terminal output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/mkellerman/gutlog/internal/nlu"
)

// FormatParseResult renders one parse result: intent, decision tier,
// confidence, the filled slots, and anything still missing.
func FormatParseResult(r *nlu.ParseResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n",
		DecisionIndicator(r.Decision),
		Bold(string(r.Intent)),
		Dim(fmt.Sprintf("confidence %.2f", r.Confidence)),
	)

	pairs := r.Slots.Pairs()
	if len(pairs) > 0 {
		rows := make([][]string, 0, len(pairs))
		for _, p := range pairs {
			rows = append(rows, []string{string(p.Key), StyleFg.Render(p.Value)})
		}
		b.WriteString(RenderTable([]string{"slot", "value"}, rows))
	}

	if len(r.Missing) > 0 {
		names := make([]string, len(r.Missing))
		for i, m := range r.Missing {
			names[i] = string(m)
		}
		fmt.Fprintf(&b, "%s %s\n",
			StyleYellow.Render("missing:"),
			strings.Join(names, ", "),
		)
	}

	if len(r.Meta.Corrections) > 0 {
		var fixes []string
		for _, c := range r.Meta.Corrections {
			fixes = append(fixes, fmt.Sprintf("%s→%s", c.From, c.To))
		}
		b.WriteString(Dim("corrected: "+strings.Join(fixes, ", ")) + "\n")
	}

	return b.String()
}

// FormatSaved renders the confirmation line after an entry is persisted.
func FormatSaved(ref string) string {
	return StyleGreen.Render("✓ logged") + " " + Dim(ref)
}

// FormatDuplicate renders the line shown when an entry already existed.
func FormatDuplicate(ref string) string {
	return Dim("already logged (" + ref + ")")
}

// FormatPrompt renders a clarification question.
func FormatPrompt(prompt string) string {
	return StyleBlue.Render("? ") + StyleFg.Render(prompt)
}

// FormatRejected renders the response to an unparseable message.
func FormatRejected() string {
	return StyleRed.Render("✗ ") + Dim("couldn't make sense of that; try rephrasing")
}
