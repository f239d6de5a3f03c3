// Package commands implements the snug command line.
package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/chris/snug/internal/llm"
)

// flags holds every command-line option. Only flags the user actually set
// override the loaded configuration.
type flags struct {
	system           string
	systemBudget     int
	historyBudget    int
	promptBudget     int
	responseHeadroom int
	contextLimit     int
	output           string
	pretty           bool
	verbose          bool
	interactive      bool
	session          string
	store            string
	provider         string
	model            string
	baseURL          string
	noStream         bool
	truncatePrompt   bool
	timeout          time.Duration
}

// NewRootCmd builds the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "snug [prompt]",
		Short: "Chat with a small-context model from the terminal",
		Long: `snug sends prompts to a text-generation backend with a small context window,
keeping as much recent conversation as fits the history budget.

Examples:
  snug "what does EAGAIN mean?"
  git diff | snug "write a commit message for this"
  snug -i --session work      # interactive, resumable
  snug -o json "ping" | jq .response`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrompt(cmd, f, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &llm.ConfigError{Field: "flags", Reason: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&f.provider, "provider", "", "backend provider: ollama, openai, anthropic")
	pf.StringVar(&f.model, "model", "", "model name")
	pf.StringVar(&f.baseURL, "base-url", "", "backend base URL")
	pf.StringVar(&f.store, "store", "", "session store: jsonl, sqlite")
	pf.StringVarP(&f.output, "output", "o", "", "output format: text, json")
	pf.BoolVar(&f.pretty, "pretty", false, "pretty-print JSON output")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "show context diagnostics")

	fl := root.Flags()
	fl.StringVarP(&f.system, "system", "s", "", "system instruction")
	fl.IntVar(&f.systemBudget, "system-budget", llm.DefaultSystemBudget, "system instruction ceiling in estimated tokens")
	fl.IntVar(&f.historyBudget, "history-budget", llm.DefaultHistoryBudget, "conversation history ceiling in estimated tokens")
	fl.IntVar(&f.promptBudget, "prompt-budget", llm.DefaultPromptBudget, "prompt ceiling in estimated tokens")
	fl.IntVar(&f.responseHeadroom, "response-headroom", llm.DefaultResponseHeadroom, "tokens reserved for the reply")
	fl.IntVar(&f.contextLimit, "context-limit", llm.DefaultContextLimit, "backend hard context limit in tokens")
	fl.BoolVarP(&f.interactive, "interactive", "i", false, "start an interactive session")
	fl.StringVar(&f.session, "session", "", "session ID to resume and save to")
	fl.BoolVar(&f.noStream, "no-stream", false, "print the reply only once it is complete")
	fl.BoolVar(&f.truncatePrompt, "truncate-prompt", false, "cut an oversized prompt to fit instead of failing")
	fl.DurationVar(&f.timeout, "timeout", 0, "timeout for each backend call (default from config)")

	root.AddCommand(
		newSessionsCmd(f),
		newCheckCmd(f),
	)
	return root
}
