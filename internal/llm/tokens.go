package llm

import "unicode/utf8"

// charsPerToken is the average number of characters per token.
// This is a rough heuristic; real tokenizers vary, but 4 chars/token
// is a well-known approximation for English text and works well enough
// for context budgeting.
const charsPerToken = 4

// EstimateTokens returns a rough token count for a string.
// Characters are counted as Unicode code points, so multi-byte text
// estimates the same way as ASCII of equal length.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	n := utf8.RuneCountInString(s)
	return (n + charsPerToken - 1) / charsPerToken // round up
}

// EstimateTurnTokens returns the estimated token count for one exchange.
func EstimateTurnTokens(t Turn) int {
	return EstimateTokens(t.User) + EstimateTokens(t.Assistant)
}

// EstimateHistoryTokens returns the total estimated tokens for a slice of turns.
func EstimateHistoryTokens(history []Turn) int {
	total := 0
	for _, t := range history {
		total += EstimateTurnTokens(t)
	}
	return total
}

// EstimatePrompt returns the estimated size of everything that would be sent
// if the full history were included: system instruction, every turn, and the
// new prompt.
func EstimatePrompt(system string, history []Turn, prompt string) int {
	return EstimateTokens(system) + EstimateHistoryTokens(history) + EstimateTokens(prompt)
}
