package input

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

const replPrompt = "snug> "

// Repl reads prompts line by line from a terminal.
type Repl struct {
	rl *readline.Instance
}

// NewRepl opens a line editor. historyFile may be empty to disable
// persistent line history.
func NewRepl(historyFile string) (*Repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("starting line editor: %w", err)
	}
	return &Repl{rl: rl}, nil
}

// Next returns the next non-empty line. It returns io.EOF when the user ends
// input. Ctrl-C on an empty line also ends input; on a partial line it
// discards the line.
func (r *Repl) Next() (string, error) {
	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return "", io.EOF
			}
			continue
		}
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// Stdout is the writer to use while the line editor is active.
func (r *Repl) Stdout() io.Writer { return r.rl.Stdout() }

// Stderr is the writer for notices while the line editor is active.
func (r *Repl) Stderr() io.Writer { return r.rl.Stderr() }

func (r *Repl) Close() error { return r.rl.Close() }

// Command is a REPL meta-command.
type Command int

const (
	CmdNone Command = iota
	CmdExit
	CmdClear
	CmdHistory
	CmdBudget
	CmdHelp
)

// ParseCommand recognises REPL meta-commands. Anything else is a prompt.
func ParseCommand(line string) Command {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "/exit", "/quit", "/q", "exit", "quit":
		return CmdExit
	case "/clear", "/c":
		return CmdClear
	case "/history":
		return CmdHistory
	case "/budget":
		return CmdBudget
	case "/help", "/?":
		return CmdHelp
	}
	return CmdNone
}
