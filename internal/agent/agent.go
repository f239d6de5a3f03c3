package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/session"
)

type Options struct {
	System string
	Budget llm.Budget
	// TruncatePrompt cuts an oversized prompt to fit instead of refusing it.
	TruncatePrompt bool
	// Timeout bounds each backend call. Zero means no limit.
	Timeout time.Duration
}

type Agent struct {
	client   llm.Client
	budgeter *llm.Budgeter
	opts     Options
	logger   *slog.Logger
}

func New(client llm.Client, opts Options, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		client:   client,
		budgeter: llm.NewBudgeter(opts.Budget),
		opts:     opts,
		logger:   logger,
	}
}

// Result describes one completed generation.
type Result struct {
	Reply     string
	Truncated bool
	// Dropped is the number of older turns left out of the context.
	Dropped  int
	Included int
	// EstimatedTokens covers the system instruction, included history and prompt.
	EstimatedTokens int
	// FullTokens is the estimate had the whole history been sent.
	FullTokens      int
	PromptTruncated bool
	InputTokens     int64
	OutputTokens    int64
}

// Plan reports what the next call would include without calling the backend.
func (a *Agent) Plan(sess *session.Session, prompt string) llm.Plan {
	return a.budgeter.Plan(a.opts.System, sess.Turns(), prompt)
}

func (a *Agent) Budget() llm.Budget { return a.opts.Budget }

// Run sends prompt with as much of the session history as fits the budget and
// records the completed turn. When w is non-nil the reply is streamed to it.
func (a *Agent) Run(ctx context.Context, sess *session.Session, prompt string, w io.Writer) (*Result, error) {
	plan := a.Plan(sess, prompt)
	if plan.Truncated {
		a.logger.Debug("context trimmed",
			"session", sess.ID,
			"dropped", plan.Dropped,
			"kept", len(plan.Turns),
			"history_tokens", plan.HistoryTokens,
			"history_budget", a.budgeter.HistoryBudget())
	}
	if plan.SystemTokens > a.budgeter.SystemBudget() {
		a.logger.Warn("system instruction over budget",
			"estimated", plan.SystemTokens, "budget", a.budgeter.SystemBudget())
	}

	req, sent, err := a.buildRequest(plan, prompt)
	if err != nil {
		return nil, err
	}
	promptCut := sent != prompt
	if promptCut {
		a.logger.Warn("prompt truncated to fit context limit",
			"estimated", plan.PromptTokens, "limit", a.opts.Budget.ContextLimit)
	}

	callCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	var resp *llm.Response
	if w != nil {
		resp, err = a.client.Stream(callCtx, req, w)
	} else {
		resp, err = a.client.Generate(callCtx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("llm generate: %w", err)
	}
	a.logger.Debug("generation complete",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"reply", truncate(resp.Content, 80))

	if err := sess.Append(ctx, llm.Turn{User: sent, Assistant: resp.Content}); err != nil {
		a.logger.Warn("saving turn", "err", err)
	}

	return &Result{
		Reply:           resp.Content,
		Truncated:       plan.Truncated,
		Dropped:         plan.Dropped,
		Included:        len(plan.Turns),
		EstimatedTokens: plan.SystemTokens + plan.HistoryTokens + llm.EstimateTokens(sent),
		FullTokens:      plan.FullTokens,
		PromptTruncated: promptCut,
		InputTokens:     resp.InputTokens,
		OutputTokens:    resp.OutputTokens,
	}, nil
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
