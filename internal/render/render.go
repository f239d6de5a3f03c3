// Package render writes replies, notices and errors for the terminal or for
// machine consumption.
package render

import (
	"fmt"
	"io"

	"github.com/chris/snug/internal/agent"
	"github.com/chris/snug/internal/llm"
)

type Renderer interface {
	// Stream returns the writer a reply should be streamed to, or nil when
	// the whole reply must be rendered at once.
	Stream() io.Writer
	// Context is called before a generation with the budget plan for it.
	Context(plan llm.Plan)
	// Reply is called after a successful generation.
	Reply(sessionID string, res *agent.Result) error
	Error(err error, category string)
}

// New returns the renderer for format ("text" or "json").
func New(format string, out, errOut io.Writer, opts Options) (Renderer, error) {
	switch format {
	case "text", "":
		return NewText(out, errOut, opts), nil
	case "json":
		return NewJSON(out, opts.Pretty), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

type Options struct {
	Verbose bool
	Stream  bool
	Pretty  bool
	// HistoryBudget is quoted in truncation notices.
	HistoryBudget int
}
