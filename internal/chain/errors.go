package chain

import (
	"context"
	"errors"

	"github.com/daydemir/mle/internal/interact"
	"github.com/daydemir/mle/internal/workspace"
)

// ErrNotConfigured is returned by New when the project has no plan record
var ErrNotConfigured = workspace.ErrNotConfigured

var (
	// ErrRequirementMissing means the user gave no requirement
	ErrRequirementMissing = errors.New("the user requirement is not provided")
	// ErrEntryFileNamingFailed means no entry file name could be generated
	ErrEntryFileNamingFailed = errors.New("the entry file name is not generated")
	// ErrDatasetUnresolved means neither detection nor the user named a dataset
	ErrDatasetUnresolved = errors.New("the dataset is not provided")
	// ErrTaskListEmpty means the planner produced no usable task
	ErrTaskListEmpty = errors.New("the planner returned no usable task")
	// ErrPlanRejected means the user declined the generated plan
	ErrPlanRejected = errors.New("the plan was rejected")
	// ErrDebugExhausted means the entry file still fails after every repair
	ErrDebugExhausted = errors.New("debugging failed")
	// ErrStreamEmpty means the model produced no extractable code
	ErrStreamEmpty = errors.New("the model returned no code")
	// ErrEntryFileMissing means the entry file vanished after earlier tasks wrote it
	ErrEntryFileMissing = errors.New("the entry file is missing")
	// ErrInterrupted means the user or a signal cancelled the run
	ErrInterrupted = errors.New("the chain has been interrupted")
)

// isInterrupt reports whether err stems from cancellation
func isInterrupt(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, ErrInterrupted) ||
		errors.Is(err, interact.ErrCancelled) ||
		errors.Is(err, context.Canceled)
}

// isAbort reports a graceful stop requested by the user or an empty plan
func isAbort(err error) bool {
	return errors.Is(err, ErrPlanRejected) || errors.Is(err, ErrTaskListEmpty)
}
