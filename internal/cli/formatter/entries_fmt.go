package formatter

import (
	"fmt"
	"strings"

	"github.com/mkellerman/gutlog/internal/repository"
)

// FormatEntryList renders persisted entries as a table, newest first.
func FormatEntryList(entries []*repository.Entry) string {
	if len(entries) == 0 {
		return Dim("No entries yet.") + "\n"
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			Dim(e.OccurredAt.Local().Format("Jan 02 15:04")),
			DecisionStyle(e.Decision).Render(string(e.Intent)),
			StyleFg.Render(truncate(e.Text, 40)),
			Dim(truncate(e.Notes, 60)),
		})
	}
	return RenderTable([]string{"when", "intent", "text", "notes"}, rows)
}

// FormatLexicon renders a user's learned phrases, most used first.
func FormatLexicon(entries []*repository.LexiconEntry) string {
	if len(entries) == 0 {
		return Dim("Nothing learned yet.") + "\n"
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			StyleFg.Render(e.Phrase),
			StylePurple.Render(string(e.Intent)),
			fmt.Sprintf("%d", e.Hits),
			Dim(e.LastSeen.Local().Format("Jan 02")),
		})
	}
	return RenderTable([]string{"phrase", "intent", "hits", "last seen"}, rows)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
