package llm

// Default ceilings, in estimated tokens. Only the history ceiling is enforced
// by the Budgeter; the others are checked by the caller against the hard
// context limit.
const (
	DefaultSystemBudget     = 500
	DefaultHistoryBudget    = 2048
	DefaultPromptBudget     = 1000
	DefaultResponseHeadroom = 548
	DefaultContextLimit     = 4096
)

// Budget is the set of token ceilings for one run.
type Budget struct {
	System           int `yaml:"system"`
	History          int `yaml:"history"`
	Prompt           int `yaml:"prompt"`
	ResponseHeadroom int `yaml:"response_headroom"`
	ContextLimit     int `yaml:"context_limit"`
}

// DefaultBudget returns the ceilings for a 4096-token backend.
func DefaultBudget() Budget {
	return Budget{
		System:           DefaultSystemBudget,
		History:          DefaultHistoryBudget,
		Prompt:           DefaultPromptBudget,
		ResponseHeadroom: DefaultResponseHeadroom,
		ContextLimit:     DefaultContextLimit,
	}
}

// Budgeter selects which history turns accompany a prompt.
//
// The system and history ceilings are independent allocations: the system
// instruction and the prompt are estimated for diagnostics but never reduce
// the room available to history.
type Budgeter struct {
	systemBudget  int
	historyBudget int
}

func NewBudgeter(b Budget) *Budgeter {
	return &Budgeter{systemBudget: b.System, historyBudget: b.History}
}

// HistoryBudget returns the enforced history ceiling.
func (b *Budgeter) HistoryBudget() int { return b.historyBudget }

// SystemBudget returns the advisory system-instruction ceiling.
func (b *Budgeter) SystemBudget() int { return b.systemBudget }

// Plan is the outcome of one selection along with the estimates behind it.
type Plan struct {
	Turns         []Turn
	Truncated     bool
	Dropped       int
	SystemTokens  int
	PromptTokens  int
	HistoryTokens int
	// FullTokens is what the request would have cost had every turn been
	// included.
	FullTokens int
}

// Total is the estimated size of the system instruction, included history
// and prompt together.
func (p Plan) Total() int {
	return p.SystemTokens + p.HistoryTokens + p.PromptTokens
}

// BuildContext returns the most recent turns of history that fit the history
// ceiling, in chronological order, and whether any older turns were left out.
//
// Turns are considered newest first and the walk stops at the first turn that
// does not fit; an older turn is never included past a gap. A turn is kept or
// dropped as a whole. The caller's slice is not modified and the returned
// slice does not share its backing array.
func (b *Budgeter) BuildContext(system string, history []Turn, prompt string) ([]Turn, bool) {
	p := b.Plan(system, history, prompt)
	return p.Turns, p.Truncated
}

// Plan performs the same selection as BuildContext and also reports the
// estimates it was based on.
func (b *Budgeter) Plan(system string, history []Turn, prompt string) Plan {
	p := Plan{
		SystemTokens: EstimateTokens(system),
		PromptTokens: EstimateTokens(prompt),
		FullTokens:   EstimatePrompt(system, history, prompt),
	}

	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		turnTokens := EstimateTurnTokens(history[i])
		if p.HistoryTokens+turnTokens > b.historyBudget {
			break
		}
		p.HistoryTokens += turnTokens
		start = i
	}

	p.Turns = make([]Turn, 0, len(history)-start)
	p.Turns = append(p.Turns, history[start:]...)
	p.Dropped = start
	p.Truncated = len(p.Turns) < len(history)
	return p
}
