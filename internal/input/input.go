package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when there is no prompt and no terminal to ask for one.
var ErrNoInput = errors.New("no prompt given and stdin is not a terminal")

type Mode int

const (
	ModeArgument Mode = iota
	ModePiped
	ModeInteractive
)

func (m Mode) String() string {
	switch m {
	case ModeArgument:
		return "argument"
	case ModePiped:
		return "piped"
	case ModeInteractive:
		return "interactive"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Resolve works out where the prompt comes from. Argument text wins; piped
// stdin is appended to it after a blank line, so `git diff | snug "review"`
// sends both. With neither, the caller should start an interactive session
// when stdin is a terminal.
func Resolve(args []string, stdin io.Reader, stdinIsTTY bool) (string, Mode, error) {
	arg := strings.TrimSpace(strings.Join(args, " "))

	var piped string
	if !stdinIsTTY && stdin != nil {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", 0, fmt.Errorf("reading stdin: %w", err)
		}
		piped = strings.TrimSpace(string(b))
	}

	switch {
	case arg != "" && piped != "":
		return arg + "\n\n" + piped, ModeArgument, nil
	case arg != "":
		return arg, ModeArgument, nil
	case piped != "":
		return piped, ModePiped, nil
	case stdinIsTTY:
		return "", ModeInteractive, nil
	default:
		return "", 0, ErrNoInput
	}
}
