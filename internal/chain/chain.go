// Package chain is the resumable task engine: it resolves the requirement,
// plans the project, installs dependencies and works through the task list,
// persisting progress after every completed step.
package chain

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/daydemir/mle/internal/display"
	"github.com/daydemir/mle/internal/generator"
	"github.com/daydemir/mle/internal/interact"
	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/runner"
	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/types"
)

// PlanStore persists the plan record
type PlanStore interface {
	Load() (*types.Plan, error)
	Save(plan *types.Plan) error
}

// CommandRunner runs a batch of shell commands sequentially
type CommandRunner interface {
	Run(ctx context.Context, commands []string) (runner.Result, error)
}

// Generator performs the one-shot planning completions
type Generator interface {
	FileName(ctx context.Context, requirement string) (string, error)
	SelectTask(ctx context.Context, requirement string) (string, error)
	SelectModel(ctx context.Context, requirement string) (string, error)
	DetectDataset(ctx context.Context, requirement string) (string, error)
	SelectDataset(ctx context.Context, requirement string) (string, error)
	GeneratePlan(ctx context.Context, in generator.PlanInput) (*generator.PlanResult, error)
	Dependencies(ctx context.Context, plan *types.Plan) ([]string, error)
}

// Options wires the chain's collaborators. Everything is injected; the
// chain reads no process-wide configuration.
type Options struct {
	Store     PlanStore
	Client    llm.Client
	Generator Generator
	Prompts   *prompts.Library
	Prompter  interact.Prompter
	// Validator runs the entry file; Installer runs dependency commands
	Validator CommandRunner
	Installer CommandRunner

	// Interpreter runs the entry file: "<Interpreter> <entry file>"
	Interpreter string

	Display  *display.Display
	Observer llm.StreamObserver
	Logger   *zap.Logger
}

// Outcome classifies how a run ended
type Outcome string

const (
	Completed   Outcome = "completed"
	Aborted     Outcome = "aborted"
	Interrupted Outcome = "interrupted"
	Failed      Outcome = "failed"
)

// Result is returned by Start; Err is nil only for Completed
type Result struct {
	Outcome   Outcome
	Err       error
	Completed int
	Total     int
}

// Chain drives one project's plan
type Chain struct {
	opts   Options
	plan   *types.Plan
	ui     *display.Display
	logger *zap.Logger
}

// New loads the plan from opts.Store. A missing record yields
// ErrNotConfigured.
func New(opts Options) (*Chain, error) {
	if opts.Store == nil || opts.Client == nil || opts.Generator == nil || opts.Prompter == nil {
		return nil, fmt.Errorf("chain: store, client, generator and prompter are required")
	}
	if opts.Validator == nil || opts.Installer == nil {
		return nil, fmt.Errorf("chain: validator and installer are required")
	}
	if opts.Interpreter == "" {
		opts.Interpreter = "python"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Display == nil {
		opts.Display = display.NewWithOptions(io.Discard, true)
	}

	plan, err := opts.Store.Load()
	if err != nil {
		if errors.Is(err, state.ErrNoPlan) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}

	if opts.Prompts == nil {
		opts.Prompts = prompts.New(plan.ProjectPath)
	}

	return &Chain{
		opts:   opts,
		plan:   plan,
		ui:     opts.Display,
		logger: opts.Logger.With(zap.String("project", plan.ProjectName)),
	}, nil
}

// Plan returns the in-memory plan
func (c *Chain) Plan() *types.Plan {
	return c.plan
}

// Start runs the driver loop until the plan is complete, a stage aborts,
// or ctx is cancelled
func (c *Chain) Start(ctx context.Context) Result {
	c.logger.Info("chain started",
		zap.Int("current_task", c.plan.CurrentTask),
		zap.Int("tasks", len(c.plan.Tasks)))

	if c.plan.CurrentTask > 0 && !c.plan.IsComplete() {
		c.ui.Resume(fmt.Sprintf("Resuming at task %d/%d: %s", c.plan.CurrentTask+1, len(c.plan.Tasks), c.plan.Current().Name))
	}

	err := c.run(ctx)
	res := c.result(ctx, err)

	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.Int("completed", res.Completed),
		zap.Int("total", res.Total),
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(err))
	}
	c.logger.Info("chain finished", fields...)
	return res
}

func (c *Chain) run(ctx context.Context) error {
	for {
		if err := c.ensureRequirement(ctx); err != nil {
			return err
		}
		if err := c.ensureEntryFile(ctx); err != nil {
			return err
		}

		if !c.plan.HasTasks() {
			if err := c.planTasks(ctx); err != nil {
				return err
			}
		}

		if c.plan.IsComplete() {
			c.ui.Success("Looks like all tasks are completed.")
			return nil
		}

		if err := c.installDependencies(ctx); err != nil {
			return err
		}

		if err := c.executeTasks(ctx); err != nil {
			return err
		}
	}
}

func (c *Chain) result(ctx context.Context, err error) Result {
	res := Result{Completed: c.plan.CurrentTask, Total: len(c.plan.Tasks)}
	switch {
	case err == nil:
		res.Outcome = Completed
	case isInterrupt(ctx, err):
		res.Outcome = Interrupted
		res.Err = ErrInterrupted
	case isAbort(err):
		res.Outcome = Aborted
		res.Err = err
	default:
		res.Outcome = Failed
		res.Err = err
	}
	return res
}

// save persists the plan; every caller saves right after the event it records
func (c *Chain) save() error {
	if err := c.opts.Store.Save(c.plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}
