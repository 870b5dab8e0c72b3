package chain

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/daydemir/mle/internal/display"
	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/types"
)

// maxLogChars bounds how much of a failure log goes into a repair prompt
const maxLogChars = 8000

// DebugReport describes one pass of the debug loop
type DebugReport struct {
	Code     string
	Runs     int
	Repairs  int
	ExitCode int
	TimedOut bool
	Log      string
}

// DebugLoop generates the entry file, runs it and, on failure, asks the
// model for a fix up to a per-task budget
type DebugLoop struct {
	Session     *Session
	Runner      CommandRunner
	Prompts     *prompts.Library
	Command     string
	Language    string
	Requirement string
	Display     *display.Display
	Logger      *zap.Logger
}

// Run drives Generating -> Executing -> {Success, Repairing, Exhausted}.
// budget is the number of repair rounds allowed; with 0 the file is run
// once and any failure ends the loop. history is extended, never cleared,
// across repair rounds.
func (d *DebugLoop) Run(ctx context.Context, history []types.Message, budget int) (*DebugReport, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &DebugReport{}

	text, err := d.Session.Run(ctx, history)
	if err != nil {
		return report, err
	}
	report.Code, _ = d.Session.Code(text)

	for {
		if d.Display != nil {
			d.Display.RunCommand(d.Command)
		}
		res, err := d.Runner.Run(ctx, []string{d.Command})
		if err != nil {
			return report, err
		}
		if d.Display != nil {
			d.Display.Duration(res.Duration)
		}
		report.Runs++
		report.ExitCode = res.ExitCode
		report.TimedOut = res.TimedOut
		report.Log = res.Log

		logger.Info("validation run",
			zap.Int("attempt", report.Runs),
			zap.Int("exit_code", res.ExitCode),
			zap.Bool("timed_out", res.TimedOut),
			zap.Duration("duration", res.Duration))

		if res.Success() {
			return report, nil
		}

		if report.Repairs >= budget {
			return report, fmt.Errorf("%w after %d repair attempt(s): exit code %d", ErrDebugExhausted, report.Repairs, res.ExitCode)
		}

		repair, err := d.Prompts.Debug(d.Language, d.Requirement, report.Code, tail(res.Log, maxLogChars))
		if err != nil {
			return report, err
		}
		history = append(history, types.Message{Role: types.RoleUser, Content: repair})
		report.Repairs++

		if d.Display != nil {
			d.Display.RepairRound(res.ExitCode, report.Repairs, budget)
		}
		logger.Info("repair round", zap.Int("attempt", report.Repairs), zap.Int("budget", budget))

		text, err = d.Session.Run(ctx, history)
		if err != nil {
			return report, err
		}
		report.Code, _ = d.Session.Code(text)
	}
}

// tail keeps the end of a log, where tracebacks are, starting on a rune
// boundary
func tail(log string, max int) string {
	if len(log) <= max {
		return log
	}
	start := len(log) - max
	for start < len(log) && !utf8.RuneStart(log[start]) {
		start++
	}
	return "...\n" + log[start:]
}
