package llm

import (
	"fmt"
	"strings"
)

const SystemPrompt = `You are a concise assistant running with a small context window. Answer directly and keep replies short. Earlier parts of the conversation may have been left out to save space; if the user refers to something you cannot see, say so instead of guessing.`

// TruncatedMarker is appended to a prompt that was cut to fit the context limit.
const TruncatedMarker = "\n[truncated]"

// Validate checks that the ceilings are usable and that together they fit
// the hard context limit.
func (b Budget) Validate() error {
	switch {
	case b.ContextLimit <= 0:
		return &ConfigError{Field: "context limit", Reason: "must be positive"}
	case b.History <= 0:
		return &ConfigError{Field: "history budget", Reason: "must be positive"}
	case b.System < 0:
		return &ConfigError{Field: "system budget", Reason: "must not be negative"}
	case b.Prompt < 0:
		return &ConfigError{Field: "prompt budget", Reason: "must not be negative"}
	case b.ResponseHeadroom < 0:
		return &ConfigError{Field: "response headroom", Reason: "must not be negative"}
	}
	if sum := b.System + b.History + b.Prompt + b.ResponseHeadroom; sum > b.ContextLimit {
		return &ConfigError{
			Field:  "budget",
			Reason: fmt.Sprintf("system %d + history %d + prompt %d + response %d = %d exceeds context limit %d", b.System, b.History, b.Prompt, b.ResponseHeadroom, sum, b.ContextLimit),
		}
	}
	return nil
}

// promptRoom is the number of tokens a prompt may use next to the given
// system instruction while leaving room for the response.
func (b Budget) promptRoom(system string) int {
	return b.ContextLimit - b.ResponseHeadroom - EstimateTokens(system)
}

// CheckPrompt reports ErrPromptTooLarge when the system instruction, the
// prompt and the response headroom together exceed the context limit.
func (b Budget) CheckPrompt(system, prompt string) error {
	room := b.promptRoom(system)
	if n := EstimateTokens(prompt); n > room {
		return fmt.Errorf("%w: ~%d tokens, %d available (limit %d, system ~%d, response %d)",
			ErrPromptTooLarge, n, max(room, 0), b.ContextLimit, EstimateTokens(system), b.ResponseHeadroom)
	}
	return nil
}

// FitPrompt cuts prompt so that it passes CheckPrompt, appending
// TruncatedMarker. It reports whether the prompt was cut.
func (b Budget) FitPrompt(system, prompt string) (string, bool) {
	if b.CheckPrompt(system, prompt) == nil {
		return prompt, false
	}
	keep := b.promptRoom(system)*charsPerToken - len([]rune(TruncatedMarker))
	if keep <= 0 {
		return strings.TrimPrefix(TruncatedMarker, "\n"), true
	}
	runes := []rune(prompt)
	return string(runes[:keep]) + TruncatedMarker, true
}

// AssemblePrompt renders the included turns as a transcript followed by the
// new prompt. This is the literal text the backend receives.
func AssemblePrompt(turns []Turn, prompt string) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "User: %s\n\nAssistant: %s\n\n", t.User, t.Assistant)
	}
	b.WriteString(prompt)
	return b.String()
}
