package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContextExceeded is returned when the backend rejects a prompt as
	// larger than its context window.
	ErrContextExceeded = errors.New("context exceeded")

	// ErrPromptTooLarge is returned when a prompt is refused before sending
	// because it cannot fit alongside the system instruction and response
	// headroom.
	ErrPromptTooLarge = errors.New("prompt too large")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("backend unavailable")
)

// GenerationError wraps a backend failure that is not a context overflow.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError checks if an error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsConfigError checks if an error is a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// Provider messages that mean the prompt did not fit the model's window.
var contextMarkers = []string{
	"context_length_exceeded",
	"maximum context length",
	"context window",
	"prompt is too long",
	"too many tokens",
	"exceeds the context",
}

// classifyError maps a provider error onto ErrContextExceeded or a
// GenerationError. Context cancellation is passed through unchanged.
func classifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, m := range contextMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %s: %v", ErrContextExceeded, provider, err)
		}
	}
	return &GenerationError{Provider: provider, Err: err}
}
