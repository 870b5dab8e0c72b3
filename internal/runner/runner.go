// Package runner executes shell command batches for dependency installs and
// validation runs of the entry file.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// ExitTimeout is reported when a command exceeds its time limit
const ExitTimeout = 124

// DefaultTimeout bounds a batch when the project config sets none
const DefaultTimeout = 30 * time.Minute

// ExitNotStarted is reported when the shell could not be started
const ExitNotStarted = 127

// Result is the combined outcome of a command batch
type Result struct {
	Log      string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Success reports a zero exit code
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner runs commands sequentially through a shell
type Runner struct {
	Dir     string
	Shell   string
	Timeout time.Duration // per batch; 0 means no limit
	Output  io.Writer     // optional live copy of the combined output
}

// New creates a runner executing in dir with the given batch timeout
func New(dir string, timeout time.Duration) *Runner {
	return &Runner{Dir: dir, Shell: "bash", Timeout: timeout}
}

// Run executes commands in order and stops at the first non-zero exit.
// A timeout is not an error: it yields ExitTimeout so callers can treat it
// like any failed run. The returned error is only set when ctx itself was
// cancelled.
func (r *Runner) Run(ctx context.Context, commands []string) (Result, error) {
	start := time.Now()
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var log bytes.Buffer
	var out io.Writer = &log
	if r.Output != nil {
		out = io.MultiWriter(&log, r.Output)
	}

	result := Result{}
	for _, command := range commands {
		code := r.runOne(runCtx, command, out)

		if err := ctx.Err(); err != nil {
			result.Log = log.String()
			result.ExitCode = code
			result.Duration = time.Since(start)
			return result, err
		}
		if runCtx.Err() != nil {
			fmt.Fprintf(out, "\ncommand timed out after %s: %s\n", r.Timeout, command)
			result.ExitCode = ExitTimeout
			result.TimedOut = true
			break
		}

		result.ExitCode = code
		if code != 0 {
			break
		}
	}

	result.Log = log.String()
	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runOne(ctx context.Context, command string, out io.Writer) int {
	shell := r.Shell
	if shell == "" {
		shell = "bash"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	// Children of the shell may keep the pipes open after it is killed
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// killed by a signal
		return ExitTimeout
	}

	fmt.Fprintf(out, "failed to run %q: %v\n", command, err)
	return ExitNotStarted
}
