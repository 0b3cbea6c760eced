// Package cli wires the gutlog commands: one-shot parsing, the
// interactive shell, and entry/lexicon listings.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/lexicon"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/repository"
)

// App holds references to everything CLI commands use.
type App struct {
	Manager  *dialog.Manager
	Pipeline *nlu.Pipeline
	Entries  repository.EntryRepo // nil when running without a database
	Lexicon  *lexicon.Store
	Scope    dialog.Scope
	Timezone *time.Location

	// IsInteractive reports whether stdin is a terminal; clarification
	// forms and the shell need one.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "gutlog" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "gutlog",
		Short: "Log meals, drinks, and symptoms from plain English",
	}

	root.AddCommand(
		newParseCmd(app),
		newShellCmd(app),
		newEntriesCmd(app),
		newLexiconCmd(app),
	)

	return root
}
