package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestBudgetValidate(t *testing.T) {
	tests := []struct {
		name    string
		budget  Budget
		wantErr bool
	}{
		{"defaults", DefaultBudget(), false},
		{"exactly at limit", Budget{System: 1, History: 2, Prompt: 3, ResponseHeadroom: 4, ContextLimit: 10}, false},
		{"over limit", Budget{System: 1, History: 2, Prompt: 3, ResponseHeadroom: 5, ContextLimit: 10}, true},
		{"zero history", Budget{History: 0, ContextLimit: 10}, true},
		{"zero limit", Budget{History: 1}, true},
		{"negative headroom", Budget{History: 1, ResponseHeadroom: -1, ContextLimit: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.budget.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsConfigError(err) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}
}

func TestCheckPrompt(t *testing.T) {
	b := Budget{History: 10, ResponseHeadroom: 10, ContextLimit: 30}
	system := strings.Repeat("s", 20) // 5 tokens, leaves 15 for the prompt

	if err := b.CheckPrompt(system, strings.Repeat("p", 60)); err != nil {
		t.Errorf("15-token prompt should fit, got %v", err)
	}
	err := b.CheckPrompt(system, strings.Repeat("p", 61))
	if !errors.Is(err, ErrPromptTooLarge) {
		t.Errorf("16-token prompt: expected ErrPromptTooLarge, got %v", err)
	}
}

func TestFitPrompt(t *testing.T) {
	b := Budget{History: 10, ResponseHeadroom: 10, ContextLimit: 30}

	t.Run("fits unchanged", func(t *testing.T) {
		got, cut := b.FitPrompt("", "short prompt")
		if cut || got != "short prompt" {
			t.Errorf("FitPrompt() = %q, %v; want unchanged", got, cut)
		}
	})

	t.Run("cut with marker", func(t *testing.T) {
		prompt := strings.Repeat("é", 500)
		got, cut := b.FitPrompt("", prompt)
		if !cut {
			t.Fatal("expected prompt to be cut")
		}
		if !strings.HasSuffix(got, TruncatedMarker) {
			t.Errorf("expected %q suffix, got %q", TruncatedMarker, got)
		}
		if err := b.CheckPrompt("", got); err != nil {
			t.Errorf("fitted prompt still fails the check: %v", err)
		}
		if EstimateTokens(got) != 20 {
			t.Errorf("expected the fitted prompt to use all 20 tokens, got %d", EstimateTokens(got))
		}
	})

	t.Run("no room at all", func(t *testing.T) {
		got, cut := b.FitPrompt(strings.Repeat("s", 200), "anything")
		if !cut || got != "[truncated]" {
			t.Errorf("FitPrompt() = %q, %v; want marker only", got, cut)
		}
	})
}

func TestAssemblePrompt(t *testing.T) {
	turns := []Turn{
		{User: "hi", Assistant: "hello"},
		{User: "what's 2+2?", Assistant: "4"},
	}
	got := AssemblePrompt(turns, "and 3+3?")
	want := "User: hi\n\nAssistant: hello\n\nUser: what's 2+2?\n\nAssistant: 4\n\nand 3+3?"
	if got != want {
		t.Errorf("AssemblePrompt() =\n%q\nwant\n%q", got, want)
	}
}

func TestAssemblePrompt_NoHistory(t *testing.T) {
	if got := AssemblePrompt(nil, "just this"); got != "just this" {
		t.Errorf("AssemblePrompt() = %q, want %q", got, "just this")
	}
}
