package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mkellerman/gutlog/internal/cli/formatter"
	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/nlu"
)

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive logging shell",
		Long: `Start an interactive session. Type what you ate, drank, or felt;
follow-up questions appear inline when something is unclear.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("shell requires an interactive terminal")
			}
			return runShell(app)
		},
	}
}

func runShell(app *App) error {
	p := tea.NewProgram(newShellModel(app))
	_, err := p.Run()
	return err
}

// turnMsg carries the manager's response back into the update loop.
type turnMsg struct {
	input string
	turn  *dialog.Turn
	err   error
}

type shellModel struct {
	app      *App
	input    textinput.Model
	history  []string
	awaiting bool
	quitting bool
}

func newShellModel(app *App) shellModel {
	ti := textinput.New()
	ti.Placeholder = "had oats for breakfast…"
	ti.Prompt = formatter.StylePurple.Render("gutlog ❯ ")
	ti.Focus()
	ti.CharLimit = 280

	return shellModel{
		app:   app,
		input: ti,
		history: []string{
			formatter.Header("gutlog"),
			formatter.Dim("Log meals, drinks, and symptoms in plain English. Type 'exit' to leave."),
			"",
		},
	}
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if text == "exit" || text == "quit" {
				m.quitting = true
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.history = append(m.history, formatter.StylePurple.Render("❯ ")+text)
			return m, m.handle(text)
		}

	case turnMsg:
		m.history = append(m.history, m.renderTurn(msg)...)
		m.history = append(m.history, "")
		m.awaiting = msg.err == nil && msg.turn.State == dialog.StateAwaitingSlot
		if m.awaiting {
			m.input.Placeholder = ""
		} else {
			m.input.Placeholder = "had oats for breakfast…"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handle runs the dialog manager off the UI goroutine.
func (m shellModel) handle(text string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		turn, err := app.Manager.Handle(context.Background(), app.Scope, text)
		return turnMsg{input: text, turn: turn, err: err}
	}
}

func (m shellModel) renderTurn(msg turnMsg) []string {
	if msg.err != nil {
		return []string{formatter.StyleRed.Render("Error: " + msg.err.Error())}
	}

	turn := msg.turn
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(formatter.FormatParseResult(turn.Result), "\n"), "\n") {
		lines = append(lines, l)
	}
	switch {
	case turn.Saved:
		lines = append(lines, formatter.FormatSaved(turn.Ref))
	case turn.Result.Decision.Accepted() && turn.Ref != "":
		lines = append(lines, formatter.FormatDuplicate(turn.Ref))
	case turn.State == dialog.StateAwaitingSlot:
		lines = append(lines, formatter.FormatPrompt(turn.Prompt))
	case turn.Result.Decision == nlu.DecisionReject:
		lines = append(lines, formatter.FormatRejected())
	}
	return lines
}

func (m shellModel) View() string {
	if m.quitting {
		return formatter.Dim("Goodbye.") + "\n"
	}

	var b strings.Builder
	for _, line := range m.history {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}
