package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/chris/snug/internal/input"
	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/render"
)

const replHelp = `Commands:
  /clear     forget the conversation so far (saved turns are kept)
  /history   show the turns the next prompt can draw on
  /budget    show the token budget and current usage
  /help      show this help
  /exit      leave (also Ctrl-D, or Ctrl-C on an empty line)`

func runRepl(ctx context.Context, a *app, f *flags) error {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		a.logger.Warn("line history disabled", "err", err)
	}
	repl, err := input.NewRepl(a.cfg.HistoryFile())
	if err != nil {
		return reportTo(a.rend, err)
	}
	defer repl.Close()

	// The line editor owns the terminal; route output through it.
	if a.rend, err = render.New(a.cfg.Output, repl.Stdout(), repl.Stderr(), renderOptions(a.cfg, f)); err != nil {
		return err
	}
	out := repl.Stderr()
	saved := "not saved"
	if a.sess.Persistent() {
		saved = "saved"
	}
	fmt.Fprintf(out, "session %s (%d turns, %s). /help for commands.\n", a.sess.ID, a.sess.Len(), saved)

	for {
		line, err := repl.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return reportTo(a.rend, err)
		}

		switch input.ParseCommand(line) {
		case input.CmdExit:
			return nil
		case input.CmdClear:
			a.sess.Clear()
			fmt.Fprintln(out, "conversation cleared")
			continue
		case input.CmdHistory:
			printHistory(out, a.sess.Turns())
			continue
		case input.CmdBudget:
			printBudget(out, a.agent.Budget(), a.agent.Plan(a.sess, ""))
			continue
		case input.CmdHelp:
			fmt.Fprintln(out, replHelp)
			continue
		}

		// Ctrl-C during a reply cancels that reply only.
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		err = a.turn(turnCtx, line)
		stop()
		if err != nil {
			a.rend.Error(err, Category(err))
		}
	}
}

func printHistory(w io.Writer, turns []llm.Turn) {
	if len(turns) == 0 {
		fmt.Fprintln(w, "(no turns yet)")
		return
	}
	for i, t := range turns {
		fmt.Fprintf(w, "%d. you: %s\n   assistant: %s\n", i+1, oneLine(t.User, 72), oneLine(t.Assistant, 72))
	}
}

func printBudget(w io.Writer, b llm.Budget, plan llm.Plan) {
	fmt.Fprintf(w, "context limit      %s tokens\n", humanize.Comma(int64(b.ContextLimit)))
	fmt.Fprintf(w, "system             %d / %d\n", plan.SystemTokens, b.System)
	fmt.Fprintf(w, "history            %d / %d (%d turns kept, %d dropped)\n",
		plan.HistoryTokens, b.History, len(plan.Turns), plan.Dropped)
	fmt.Fprintf(w, "full history       ~%s tokens\n", humanize.Comma(int64(plan.FullTokens)))
	fmt.Fprintf(w, "prompt ceiling     %d\n", b.Prompt)
	fmt.Fprintf(w, "response headroom  %d\n", b.ResponseHeadroom)
}

// oneLine flattens s and shortens it to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
