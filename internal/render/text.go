package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/chris/snug/internal/agent"
	"github.com/chris/snug/internal/llm"
)

// Text renders replies as plain text on out and notices on errOut.
type Text struct {
	out    io.Writer
	errOut io.Writer
	opts   Options

	notice lipgloss.Style
	errSty lipgloss.Style
}

func NewText(out, errOut io.Writer, opts Options) *Text {
	r := lipgloss.NewRenderer(errOut)
	return &Text{
		out:    out,
		errOut: errOut,
		opts:   opts,
		notice: r.NewStyle().Faint(true),
		errSty: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (t *Text) Stream() io.Writer {
	if !t.opts.Stream {
		return nil
	}
	return t.out
}

func (t *Text) Context(plan llm.Plan) {
	if !t.opts.Verbose {
		return
	}
	if plan.Truncated {
		t.Notice("dropped %d older %s to fit the %s-token history budget (kept %d, full history ~%s tokens)",
			plan.Dropped, plural(plan.Dropped, "turn", "turns"),
			humanize.Comma(int64(t.opts.HistoryBudget)), len(plan.Turns),
			humanize.Comma(int64(plan.FullTokens)))
	}
	t.Notice("sending ~%s estimated tokens (system %d, history %d, prompt %d)",
		humanize.Comma(int64(plan.Total())), plan.SystemTokens, plan.HistoryTokens, plan.PromptTokens)
}

func (t *Text) Reply(_ string, res *agent.Result) error {
	if t.opts.Stream {
		// Already written; finish the line.
		if !strings.HasSuffix(res.Reply, "\n") {
			if _, err := fmt.Fprintln(t.out); err != nil {
				return err
			}
		}
	} else {
		if _, err := fmt.Fprintln(t.out, strings.TrimRight(res.Reply, "\n")); err != nil {
			return err
		}
	}
	if res.PromptTruncated {
		t.Notice("prompt was cut to fit the context limit")
	}
	if t.opts.Verbose && res.OutputTokens > 0 {
		t.Notice("backend reported %s input / %s output tokens",
			humanize.Comma(res.InputTokens), humanize.Comma(res.OutputTokens))
	}
	return nil
}

// Notice writes an informational line to errOut.
func (t *Text) Notice(format string, args ...any) {
	fmt.Fprintln(t.errOut, t.notice.Render("[context] "+fmt.Sprintf(format, args...)))
}

func (t *Text) Error(err error, _ string) {
	fmt.Fprintln(t.errOut, t.errSty.Render("error:")+" "+err.Error())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
