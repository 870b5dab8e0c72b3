package chain

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/types"
	"github.com/daydemir/mle/internal/utils"
)

// executeTasks runs tasks from the cursor to the end. The cursor advances
// and the plan is saved after each successful task only.
func (c *Chain) executeTasks(ctx context.Context) error {
	// params of a multiple-choice answer feed only the next code task
	var params string
	total := len(c.plan.Tasks)

	for !c.plan.IsComplete() {
		index := c.plan.CurrentTask
		task := c.plan.Tasks[index]
		logger := c.logger.With(zap.String("task", task.Name), zap.Int("index", index))

		c.ui.TaskStart(task.Name, index, total)
		logger.Info("task started", zap.String("kind", string(task.Kind)))

		switch task.Kind {
		case types.KindCodeGeneration:
			report, err := c.runCodeTask(ctx, task, params, logger)
			if err != nil {
				if !isInterrupt(ctx, err) {
					logger.Error("task failed", zap.Error(err))
					c.ui.Error(fmt.Sprintf("Task failed. Aborting the chain: %v", err))
				}
				return fmt.Errorf("task %q: %w", task.Name, err)
			}
			logger.Info("code task succeeded", zap.Int("runs", report.Runs), zap.Int("repairs", report.Repairs))
			params = ""

		case types.KindMultipleChoice:
			choice, err := c.askChoice(ctx, task)
			if err != nil {
				return fmt.Errorf("task %q: %w", task.Name, err)
			}
			logger.Info("choice made", zap.String("choice", choice))
			params = choice

		default:
			return fmt.Errorf("task %q: unknown kind %q", task.Name, task.Kind)
		}

		if err := c.plan.Advance(); err != nil {
			return err
		}
		if err := c.save(); err != nil {
			return err
		}
		c.ui.Success(fmt.Sprintf("Task %d/%d done: %s", index+1, total, task.Name))
	}
	return nil
}

// askChoice returns the selected resource, or its selected sub-choice
func (c *Chain) askChoice(ctx context.Context, task types.Task) (string, error) {
	message := task.Description
	if message == "" {
		message = task.Name
	}

	selected, err := c.opts.Prompter.Select(ctx, message, task.ResourceNames())
	if err != nil {
		return "", err
	}
	resource, ok := task.FindResource(selected)
	if !ok {
		return "", fmt.Errorf("unknown choice %q", selected)
	}
	if len(resource.Choices) == 0 {
		return selected, nil
	}
	return c.opts.Prompter.Select(ctx, "Please select", resource.Choices)
}

// runCodeTask builds a fresh chat history for the task and hands it to the
// debug loop
func (c *Chain) runCodeTask(ctx context.Context, task types.Task, params string, logger *zap.Logger) (*DebugReport, error) {
	system, err := c.systemPrompt()
	if err != nil {
		return nil, err
	}
	user, err := c.opts.Prompts.Task(prompts.TaskData{
		Requirement:     c.plan.Requirement,
		Language:        c.plan.Language,
		TaskName:        task.Name,
		TaskDescription: task.Description,
		Resources:       params,
	})
	if err != nil {
		return nil, err
	}

	history := []types.Message{
		{Role: types.RoleSystem, Content: system},
		{Role: types.RoleUser, Content: user},
	}

	entry := c.plan.TrainingEntryFile
	loop := &DebugLoop{
		Session:     NewSession(c.opts.Client, c.opts.Observer, entry, c.plan.Language, logger),
		Runner:      c.opts.Validator,
		Prompts:     c.opts.Prompts,
		Command:     c.opts.Interpreter + " " + utils.ShellQuote(entry),
		Language:    c.plan.Language,
		Requirement: c.plan.Requirement,
		Display:     c.ui,
		Logger:      logger,
	}
	report, err := loop.Run(ctx, history, task.Debug)
	if err != nil {
		return report, err
	}
	c.ui.Success(fmt.Sprintf("Code generated to: %s", entry))
	return report, nil
}

// systemPrompt embeds the current entry file when it has content. A missing
// file past the first two tasks means earlier work is lost.
func (c *Chain) systemPrompt() (string, error) {
	entry := c.plan.TrainingEntryFile
	source, err := utils.ReadFileString(entry)
	if err != nil {
		return "", fmt.Errorf("failed to read entry file: %w", err)
	}
	if source != "" {
		return c.opts.Prompts.Code(c.plan.Language, source)
	}
	if c.plan.CurrentTask > 1 && !utils.FileExists(entry) {
		return "", fmt.Errorf("%w: %s (restore the script or clear training_entry_file in the project record)", ErrEntryFileMissing, entry)
	}
	return c.opts.Prompts.Init(c.plan.Language)
}

// IsTaskFailure reports errors that fail a task without being fatal to the
// project: exhausted repairs, empty model output, a lost entry file
func IsTaskFailure(err error) bool {
	return errors.Is(err, ErrDebugExhausted) ||
		errors.Is(err, ErrStreamEmpty) ||
		errors.Is(err, ErrEntryFileMissing)
}
