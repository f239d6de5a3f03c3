package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chris/snug/internal/input"
	"github.com/chris/snug/internal/llm"
	"github.com/chris/snug/internal/render"
	"github.com/chris/snug/internal/session"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitContext     = 3
	ExitGeneration  = 4
	ExitUnavailable = 5
	ExitInterrupted = 130
)

// Category names the kind of failure err represents. It is reported in JSON
// error objects.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, llm.ErrPromptTooLarge):
		return "prompt_too_large"
	case errors.Is(err, llm.ErrContextExceeded):
		return "context_exceeded"
	case errors.Is(err, llm.ErrUnavailable):
		return "unavailable"
	case llm.IsConfigError(err), errors.Is(err, input.ErrNoInput):
		return "usage"
	case llm.IsGenerationError(err):
		return "generation"
	case errors.Is(err, session.ErrMalformedTranscript), errors.Is(err, session.ErrNotFound):
		return "session"
	}
	return "error"
}

// ExitCode maps err to the process exit code.
func ExitCode(err error) int {
	switch Category(err) {
	case "":
		return ExitOK
	case "interrupted":
		return ExitInterrupted
	case "usage":
		return ExitUsage
	case "prompt_too_large", "context_exceeded":
		return ExitContext
	case "generation", "timeout":
		return ExitGeneration
	case "unavailable":
		return ExitUnavailable
	}
	return ExitFailure
}

// reported marks an error that has already been shown to the user.
type reported struct{ err error }

func (r *reported) Error() string { return r.err.Error() }
func (r *reported) Unwrap() error { return r.err }

// reportTo renders err through rend so that JSON mode gets a JSON error
// object, and marks it as shown.
func reportTo(rend render.Renderer, err error) error {
	if err == nil {
		return nil
	}
	rend.Error(err, Category(err))
	return &reported{err: err}
}

// Report prints err to w unless it was already rendered, and returns the exit
// code for it.
func Report(w io.Writer, err error) int {
	var r *reported
	if !errors.As(err, &r) {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	return ExitCode(err)
}
