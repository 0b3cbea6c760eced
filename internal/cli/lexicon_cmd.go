package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkellerman/gutlog/internal/cli/formatter"
)

func newLexiconCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect learned phrases",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show phrases learned for this user",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Lexicon.Entries(cmd.Context(), app.Scope.User)
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatLexicon(entries))
			return nil
		},
	}

	forget := &cobra.Command{
		Use:   "forget <phrase>",
		Short: "Remove a learned phrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			if err := app.Lexicon.Forget(cmd.Context(), app.Scope.User, phrase); err != nil {
				return err
			}
			fmt.Println(formatter.Dim("Forgot " + phrase + "."))
			return nil
		},
	}

	cmd.AddCommand(list, forget)
	return cmd
}
