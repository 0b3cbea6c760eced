package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkellerman/gutlog/internal/cli/formatter"
	"github.com/mkellerman/gutlog/internal/nlu"
)

func newEntriesCmd(app *App) *cobra.Command {
	var limit int
	var intent string

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List recent log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Entries == nil {
				return fmt.Errorf("no database configured")
			}
			ctx := cmd.Context()

			if intent != "" {
				in := nlu.Intent(intent)
				if !nlu.IsValidIntent(in) {
					return fmt.Errorf("unknown intent %q", intent)
				}
				entries, err := app.Entries.ListByIntent(ctx, app.Scope.User, in, limit)
				if err != nil {
					return err
				}
				fmt.Print(formatter.FormatEntryList(entries))
				return nil
			}

			entries, err := app.Entries.ListRecent(ctx, app.Scope.User, limit)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatEntryList(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show")
	cmd.Flags().StringVar(&intent, "intent", "", "filter by intent (food, drink, symptom, reflux, bm, mood, checkin)")
	return cmd
}
