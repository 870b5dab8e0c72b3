// Package interact provides the blocking human prompts used while planning
// and executing tasks.
package interact

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt (Ctrl+C, Esc)
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks the human for input. Every method blocks until answered,
// cancelled by the user (ErrCancelled), or ctx is done (ctx.Err()).
type Prompter interface {
	// Select returns one of options
	Select(ctx context.Context, message string, options []string) (string, error)
	// Text returns free text; an empty answer yields defaultValue
	Text(ctx context.Context, message, defaultValue string) (string, error)
	// Confirm returns a yes/no answer
	Confirm(ctx context.Context, message string) (bool, error)
}

// New returns a terminal prompter when in is a TTY, otherwise a line-based one
func New(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return NewTTY(in, out)
	}
	return NewLine(in, out)
}
