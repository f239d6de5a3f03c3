package agent

import "github.com/chris/snug/internal/llm"

// buildRequest turns a budget plan into the backend request. It applies the
// prompt guard: an oversized prompt is refused, or cut when TruncatePrompt is
// set. The returned string is the prompt as actually sent.
func (a *Agent) buildRequest(plan llm.Plan, prompt string) (llm.Request, string, error) {
	b := a.opts.Budget
	if err := b.CheckPrompt(a.opts.System, prompt); err != nil {
		if !a.opts.TruncatePrompt {
			return llm.Request{}, "", err
		}
		prompt, _ = b.FitPrompt(a.opts.System, prompt)
	}

	return llm.Request{
		System:    a.opts.System,
		Prompt:    llm.AssemblePrompt(plan.Turns, prompt),
		MaxTokens: b.ResponseHeadroom,
	}, prompt, nil
}
