package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/mkellerman/gutlog/internal/cli"
	"github.com/mkellerman/gutlog/internal/config"
	"github.com/mkellerman/gutlog/internal/db"
	"github.com/mkellerman/gutlog/internal/decision"
	"github.com/mkellerman/gutlog/internal/dialog"
	"github.com/mkellerman/gutlog/internal/lexicon"
	"github.com/mkellerman/gutlog/internal/llm"
	"github.com/mkellerman/gutlog/internal/nlu"
	"github.com/mkellerman/gutlog/internal/ontology"
	"github.com/mkellerman/gutlog/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	onto := ontology.Default()
	th := cfg.BuildThresholds()
	pipeline := nlu.New(onto, th)

	// The external fallback is wired only when enabled; the deterministic
	// pipeline carries everything else.
	var fallback decision.Fallback
	llmCfg := llm.LoadConfig()
	llmCfg.Enabled = llmCfg.Enabled || cfg.LLM.Enabled
	if llmCfg.Enabled {
		if cfg.LLM.Endpoint != "" {
			llmCfg.Endpoint = cfg.LLM.Endpoint
		}
		if cfg.LLM.Model != "" {
			llmCfg.Model = cfg.LLM.Model
		}
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls || cfg.LLM.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		client := llm.NewOllamaClient(llmCfg, observer)
		fallback = decision.NewSlotFiller(client, llmCfg.CacheTTL(), observer)
	}

	engine := decision.NewEngine(th, fallback, nil)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	entryRepo := repository.NewSQLiteEntryRepo(database)
	lexRepo := repository.NewSQLiteLexiconRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)
	sink := repository.NewLoggingSink(entryRepo, uow)
	lex := lexicon.NewStore(lexRepo, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := dialog.NewPendingStore(cfg.PendingTTL())
	store.StartSweeper(ctx, cfg.PendingTTL())
	manager := dialog.NewManager(pipeline, engine, store, sink, cfg.Location())
	manager.UseLexicon(lex)

	app := &cli.App{
		Manager:  manager,
		Pipeline: pipeline,
		Entries:  entryRepo,
		Lexicon:  lex,
		Scope:    dialog.Scope{Channel: cfg.Channel, User: cfg.User},
		Timezone: cfg.Location(),
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)

	// Bare invocation from a terminal drops into the shell.
	if len(os.Args) == 1 && app.IsInteractive() {
		rootCmd.SetArgs([]string{"shell"})
	}
	return rootCmd.ExecuteContext(ctx)
}
