package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantContext bool
		wantGen     bool
	}{
		{"openai context length", errors.New(`400 Bad Request {"code":"context_length_exceeded"}`), true, false},
		{"ollama wording", errors.New("This model's maximum context length is 4096 tokens"), true, false},
		{"anthropic wording", errors.New("prompt is too long: 5000 tokens > 4096 maximum"), true, false},
		{"rate limit", errors.New("429 Too Many Requests"), false, true},
		{"connection refused", errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("test", tt.err)
			if errors.Is(got, ErrContextExceeded) != tt.wantContext {
				t.Errorf("errors.Is(ErrContextExceeded) = %v, want %v (err: %v)", !tt.wantContext, tt.wantContext, got)
			}
			if IsGenerationError(got) != tt.wantGen {
				t.Errorf("IsGenerationError = %v, want %v", !tt.wantGen, tt.wantGen)
			}
		})
	}
}

func TestClassifyError_PassesThroughCancellation(t *testing.T) {
	err := fmt.Errorf("request: %w", context.DeadlineExceeded)
	got := classifyError("test", err)
	if got != err {
		t.Errorf("expected the original error back, got %v", got)
	}
	if classifyError("test", nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("calling backend: %w", &GenerationError{Provider: "openai", Err: inner})
	if !errors.Is(err, inner) {
		t.Error("expected GenerationError to unwrap to the provider error")
	}
}
