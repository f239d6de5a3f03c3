package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chris/snug/config"
	"github.com/chris/snug/internal/agent"
	"github.com/chris/snug/internal/db"
	"github.com/chris/snug/internal/input"
	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/render"
	"github.com/chris/snug/internal/session"
)

// loadConfig layers explicitly set flags over the file and environment
// configuration, then validates the result.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	setString := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	setInt := func(name string, dst *int, v int) {
		if changed(name) {
			*dst = v
		}
	}
	setString("provider", &cfg.Provider, f.provider)
	setString("model", &cfg.Model, f.model)
	setString("base-url", &cfg.BaseURL, f.baseURL)
	setString("store", &cfg.Store, f.store)
	setString("output", &cfg.Output, f.output)
	setString("system", &cfg.System, f.system)
	setInt("system-budget", &cfg.Budget.System, f.systemBudget)
	setInt("history-budget", &cfg.Budget.History, f.historyBudget)
	setInt("prompt-budget", &cfg.Budget.Prompt, f.promptBudget)
	setInt("response-headroom", &cfg.Budget.ResponseHeadroom, f.responseHeadroom)
	setInt("context-limit", &cfg.Budget.ContextLimit, f.contextLimit)
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if f.noStream {
		cfg.Stream = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore returns the configured session store and a function to release it.
func openStore(cfg *config.Config) (session.Store, func() error, error) {
	switch cfg.Store {
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		d, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	default:
		s, err := session.NewFileStore(cfg.SessionsDir())
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	}
}

// app is everything one invocation needs to run turns.
type app struct {
	cfg    *config.Config
	agent  *agent.Agent
	sess   *session.Session
	rend   render.Renderer
	logger *slog.Logger
}

// turn runs one prompt through the agent and renders the outcome.
func (a *app) turn(ctx context.Context, prompt string) error {
	a.rend.Context(a.agent.Plan(a.sess, prompt))
	res, err := a.agent.Run(ctx, a.sess, prompt, a.rend.Stream())
	if err != nil {
		return err
	}
	return a.rend.Reply(a.sess.ID, res)
}

func renderOptions(cfg *config.Config, f *flags) render.Options {
	return render.Options{
		Verbose:       f.verbose,
		Stream:        cfg.Stream,
		Pretty:        f.pretty,
		HistoryBudget: cfg.Budget.History,
	}
}

func runPrompt(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	logger := newLogger(stderr, f.verbose)

	rend, err := render.New(cfg.Output, stdout, stderr, renderOptions(cfg, f))
	if err != nil {
		return err
	}

	stdinTTY := input.IsTerminal(os.Stdin)
	prompt, mode, err := input.Resolve(args, cmd.InOrStdin(), stdinTTY)
	if err != nil {
		return reportTo(rend, err)
	}
	interactive := mode == input.ModeInteractive || f.interactive
	if interactive && !stdinTTY {
		return reportTo(rend, &llm.ConfigError{Field: "interactive", Reason: "stdin is not a terminal"})
	}

	client, err := llm.NewClient(cfg.ProviderConfig())
	if err != nil {
		return reportTo(rend, &llm.ConfigError{Field: "provider", Reason: err.Error()})
	}
	ag := agent.New(client, agent.Options{
		System:         cfg.System,
		Budget:         cfg.Budget,
		TruncatePrompt: f.truncatePrompt,
		Timeout:        cfg.Timeout,
	}, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Single prompts are only saved when a session is named; interactive
	// sessions are always saved so they can be resumed.
	sess := session.New(f.session, nil)
	if f.session != "" || interactive {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return reportTo(rend, err)
		}
		defer closeStore()
		if sess, err = session.Open(ctx, store, sess.ID); err != nil {
			return reportTo(rend, err)
		}
		logger.Info("session opened", "id", sess.ID, "turns", sess.Len(), "store", cfg.Store)
	}

	a := &app{cfg: cfg, agent: ag, sess: sess, rend: rend, logger: logger}

	if prompt != "" {
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		err := a.turn(turnCtx, prompt)
		stop()
		if err != nil {
			return reportTo(rend, err)
		}
	}
	if interactive {
		return runRepl(ctx, a, f)
	}
	return nil
}
