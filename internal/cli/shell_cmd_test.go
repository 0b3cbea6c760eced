package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellerman/gutlog/internal/decision"
	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/ontology"
	"github.com/mkellerman/gutlog/internal/teatest"
)

// memorySink keeps saved entries in a map, keyed by ref.
type memorySink struct {
	entries map[string]dialog.Entry
}

func (s *memorySink) Exists(ctx context.Context, ref string) (bool, error) {
	_, ok := s.entries[ref]
	return ok, nil
}

func (s *memorySink) Save(ctx context.Context, e dialog.Entry) error {
	s.entries[e.Ref] = e
	return nil
}

func newTestApp() *App {
	th := ontology.DefaultThresholds()
	pipeline := nlu.New(ontology.Default(), th)
	engine := decision.NewEngine(th, nil, nil)
	store := dialog.NewPendingStore(time.Minute)
	sink := &memorySink{entries: make(map[string]dialog.Entry)}
	manager := dialog.NewManager(pipeline, engine, store, sink, time.UTC)

	return &App{
		Manager:       manager,
		Pipeline:      pipeline,
		Scope:         dialog.Scope{Channel: "cli", User: "tester"},
		Timezone:      time.UTC,
		IsInteractive: func() bool { return true },
	}
}

func newShellDriver(t *testing.T) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newShellModel(newTestApp()))
	d.DrainInit()
	return d
}

func TestShellInitialView(t *testing.T) {
	d := newShellDriver(t)

	view := d.View()
	assert.Contains(t, view, "GUTLOG")
	assert.Contains(t, view, "Type 'exit' to leave")
	assert.Contains(t, view, "gutlog ❯")
}

func TestShellLogsAMeal(t *testing.T) {
	d := newShellDriver(t)

	d.Type("had oats for lunch")
	d.PressEnter()

	view := d.View()
	assert.Contains(t, view, "❯ had oats for lunch")
	assert.Contains(t, view, "food")
	assert.Contains(t, view, "strict")
	assert.Contains(t, view, "logged")
}

func TestShellClarificationFlow(t *testing.T) {
	d := newShellDriver(t)

	d.Type("acid reflux not feeling well")
	d.PressEnter()
	require.Contains(t, d.View(), "How bad is it, on a scale of 1 to 10?")

	d.Type("7")
	d.PressEnter()

	view := d.View()
	assert.Contains(t, view, "reflux")
	assert.Contains(t, view, "severity")
	assert.Contains(t, view, "logged")
}

func TestShellDuplicateMessage(t *testing.T) {
	d := newShellDriver(t)

	d.Type("had oats for lunch")
	d.PressEnter()
	d.Type("had oats for lunch")
	d.PressEnter()

	assert.Contains(t, d.View(), "already logged")
}

func TestShellEmptyInputIsIgnored(t *testing.T) {
	d := newShellDriver(t)
	before := d.View()

	d.PressEnter()
	assert.Equal(t, before, d.View())
}

func TestShellExitCommand(t *testing.T) {
	d := newShellDriver(t)

	d.Type("exit")
	d.PressEnter()

	assert.True(t, d.Quitting)
	assert.Contains(t, d.View(), "Goodbye.")
}

func TestShellCtrlCQuits(t *testing.T) {
	d := newShellDriver(t)
	d.PressCtrlC()
	assert.True(t, d.Quitting)
}

func TestShellEscQuits(t *testing.T) {
	d := newShellDriver(t)
	d.PressEsc()
	assert.True(t, d.Quitting)
}
