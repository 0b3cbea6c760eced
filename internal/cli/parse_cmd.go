package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mkellerman/gutlog/internal/cli/formatter"
	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/nlu"
)

// maxClarifyRounds bounds interactive follow-up questions per message.
const maxClarifyRounds = 3

func newParseCmd(app *App) *cobra.Command {
	var asJSON bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "parse <message>",
		Short: "Parse one message and log it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if dryRun {
				return runDryParse(app, text, asJSON)
			}
			return runParse(cmd.Context(), app, text, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the parse result as JSON")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse without persisting or asking follow-ups")
	return cmd
}

// runDryParse runs the pipeline only: no decision side effects beyond
// tagging, no persistence, no dialog state.
func runDryParse(app *App, text string, asJSON bool) error {
	r := app.Pipeline.Understand(text, nlu.Options{Timezone: app.Timezone})
	if asJSON {
		return printJSON(r)
	}
	fmt.Print(formatter.FormatParseResult(r))
	return nil
}

func runParse(ctx context.Context, app *App, text string, asJSON bool) error {
	turn, err := app.Manager.Handle(ctx, app.Scope, text)
	if err != nil {
		return err
	}

	// Follow up interactively while the manager is waiting on a slot.
	for rounds := 0; turn.State == dialog.StateAwaitingSlot && app.interactive() && rounds < maxClarifyRounds; rounds++ {
		answer, ok := askSlot(turn.Prompt)
		if !ok {
			break
		}
		turn, err = app.Manager.Handle(ctx, app.Scope, answer)
		if err != nil {
			return err
		}
	}

	if asJSON {
		return printJSON(turn)
	}
	printTurn(turn)
	return nil
}

// askSlot collects one clarification answer. Returns ok=false when the
// user aborts the form.
func askSlot(prompt string) (string, bool) {
	var answer string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(prompt).
				Value(&answer).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("enter a value, or press ctrl+c to cancel")
					}
					return nil
				}),
		),
	).WithTheme(gutlogHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		return "", false
	}
	return answer, true
}

func printTurn(turn *dialog.Turn) {
	fmt.Print(formatter.FormatParseResult(turn.Result))
	switch {
	case turn.Saved:
		fmt.Println(formatter.FormatSaved(turn.Ref))
	case turn.Result.Decision.Accepted() && turn.Ref != "":
		fmt.Println(formatter.FormatDuplicate(turn.Ref))
	case turn.State == dialog.StateAwaitingSlot:
		fmt.Println(formatter.FormatPrompt(turn.Prompt))
	case turn.Result.Decision == nlu.DecisionReject:
		fmt.Println(formatter.FormatRejected())
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(jsonView(v), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// parseJSON is the stable JSON shape for scripted consumers.
type parseJSON struct {
	Intent     nlu.Intent        `json:"intent"`
	Confidence float64           `json:"confidence"`
	Decision   nlu.Decision      `json:"decision"`
	Slots      map[string]string `json:"slots"`
	Missing    []string          `json:"missing"`
	Stage      string            `json:"stage"`
	Saved      bool              `json:"saved,omitempty"`
	Ref        string            `json:"ref,omitempty"`
	Prompt     string            `json:"prompt,omitempty"`
	DecidedAt  *time.Time        `json:"decided_at,omitempty"`
}

func jsonView(v any) parseJSON {
	var r *nlu.ParseResult
	out := parseJSON{}

	switch t := v.(type) {
	case *dialog.Turn:
		r = t.Result
		out.Saved = t.Saved
		out.Ref = t.Ref
		out.Prompt = t.Prompt
	case *nlu.ParseResult:
		r = t
	default:
		return out
	}

	out.Intent = r.Intent
	out.Confidence = r.Confidence
	out.Decision = r.Decision
	out.Stage = r.Meta.Stage

	out.Slots = make(map[string]string)
	for _, p := range r.Slots.Pairs() {
		out.Slots[string(p.Key)] = p.Value
	}
	out.Missing = make([]string, len(r.Missing))
	for i, m := range r.Missing {
		out.Missing[i] = string(m)
	}
	if !r.DecidedAt.IsZero() {
		t := r.DecidedAt
		out.DecidedAt = &t
	}
	return out
}
