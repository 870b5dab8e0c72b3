package chain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/daydemir/mle/internal/generator"
	"github.com/daydemir/mle/internal/types"
	"github.com/daydemir/mle/internal/utils"
)

func (c *Chain) ensureRequirement(ctx context.Context) error {
	if c.plan.Requirement != "" {
		c.ui.Info("User Requirement", c.plan.Requirement)
		return nil
	}

	answer, err := c.opts.Prompter.Text(ctx, "Hi, what are your requirements?", "")
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ErrRequirementMissing
	}

	c.plan.Requirement = answer
	c.logger.Info("requirement captured")
	return c.save()
}

func (c *Chain) ensureEntryFile(ctx context.Context) error {
	if c.plan.TrainingEntryFile != "" {
		return nil
	}

	c.ui.Working("Preparing entry file name...")
	name, err := c.opts.Generator.FileName(ctx, c.plan.Requirement)
	if err != nil {
		if isInterrupt(ctx, err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrEntryFileNamingFailed, err)
	}
	entry := utils.ProjectRelative(c.plan.ProjectPath, name)

	c.ui.Info("Entry file", entry)
	ok, err := c.opts.Prompter.Confirm(ctx, "Do you want to use the file?")
	if err != nil {
		return err
	}
	if !ok {
		answer, err := c.opts.Prompter.Text(ctx, "Please provide a new file name:", filepath.Base(entry))
		if err != nil {
			return err
		}
		if answer = strings.TrimSpace(answer); answer != "" {
			entry = utils.ProjectRelative(c.plan.ProjectPath, answer)
		}
	}

	c.plan.TrainingEntryFile = entry
	if err := c.save(); err != nil {
		return err
	}
	c.logger.Info("entry file named", zap.String("path", entry))
	return nil
}

// planTasks resolves dataset and task list; only runs while no tasks exist
func (c *Chain) planTasks(ctx context.Context) error {
	c.ui.Working(fmt.Sprintf("The project %s has no existing plans. Start planning...", c.plan.ProjectName))
	req := c.plan.Requirement

	taskType, err := c.opts.Generator.SelectTask(ctx, req)
	if err != nil {
		return fmt.Errorf("task selection: %w", err)
	}
	c.ui.Info("Task detected", taskType)

	model, err := c.opts.Generator.SelectModel(ctx, req)
	if err != nil {
		return fmt.Errorf("model selection: %w", err)
	}
	c.ui.Info("Model architecture selected", model)

	if err := c.resolveDataset(ctx); err != nil {
		return err
	}
	c.ui.Info("Dataset", c.plan.Dataset)

	c.ui.Working("Planning the tasks for you...")
	res, err := c.opts.Generator.GeneratePlan(ctx, generator.PlanInput{
		Requirement: req,
		TaskType:    taskType,
		Model:       model,
		Dataset:     c.plan.Dataset,
	})
	if err != nil {
		return fmt.Errorf("plan generation: %w", err)
	}

	if len(res.Discarded) > 0 {
		reasons := make([]string, len(res.Discarded))
		for i, d := range res.Discarded {
			reasons[i] = d.String()
		}
		c.logger.Warn("planner descriptors discarded",
			zap.Int("discarded", len(res.Discarded)),
			zap.Strings("reasons", reasons))
	}
	c.logger.Info("plan generated", zap.Int("tasks", len(res.Tasks)), zap.Int("discarded", len(res.Discarded)))

	if len(res.Tasks) == 0 {
		c.ui.Error("The planner returned no usable task. Aborting the chain.")
		return ErrTaskListEmpty
	}

	c.ui.PlanPreview(res.Tasks, len(res.Discarded))
	ok, err := c.opts.Prompter.Confirm(ctx, "Are you sure to use this plan?")
	if err != nil {
		return err
	}
	if !ok {
		c.ui.Warning("Seems you are not satisfied with the plan. Aborting the chain.")
		return ErrPlanRejected
	}

	if err := c.plan.SetTasks(res.Tasks); err != nil {
		return err
	}
	return c.save()
}

// resolveDataset fills plan.Dataset once; a resolved dataset is kept across
// rejected plans
func (c *Chain) resolveDataset(ctx context.Context) error {
	if c.plan.Dataset != "" {
		return nil
	}
	req := c.plan.Requirement

	dataset, err := c.opts.Generator.DetectDataset(ctx, req)
	if err != nil {
		return c.datasetError(ctx, err)
	}

	switch dataset {
	case types.DatasetNoInformation:
		dataset, err = c.opts.Generator.SelectDataset(ctx, req)
		if err != nil {
			return c.datasetError(ctx, err)
		}
	case types.DatasetCSVTable:
		dataset, err = c.opts.Prompter.Text(ctx, "Please provide the CSV data path:", "")
		if err != nil {
			return err
		}
	}

	dataset = strings.TrimSpace(dataset)
	if dataset == "" {
		c.ui.Error("The dataset is not provided. Aborted.")
		return ErrDatasetUnresolved
	}

	c.plan.Dataset = dataset
	c.logger.Info("dataset resolved", zap.String("dataset", dataset))
	return c.save()
}

func (c *Chain) datasetError(ctx context.Context, err error) error {
	if isInterrupt(ctx, err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDatasetUnresolved, err)
}

// installDependencies asks the model for install commands and runs them
// once the user agrees. Failures here never stop the chain.
func (c *Chain) installDependencies(ctx context.Context) error {
	c.ui.Working("Preparing the dependencies for the plan...")
	commands, err := c.opts.Generator.Dependencies(ctx, c.plan)
	if err != nil {
		if isInterrupt(ctx, err) {
			return err
		}
		c.logger.Warn("dependency generation failed", zap.Error(err))
		c.ui.Warning(fmt.Sprintf("Could not generate the dependency list: %v", err))
		return nil
	}
	if len(commands) == 0 {
		c.ui.Info("Dependencies", "nothing to install")
		return nil
	}

	c.ui.Info("Commands are going to execute", strings.Join(commands, " && "))
	ok, err := c.opts.Prompter.Confirm(ctx, "Are you sure to install the dependencies?")
	if err != nil {
		return err
	}
	if !ok {
		c.ui.Warning("Skipped the dependencies installation.")
		c.logger.Info("dependency install skipped")
		return nil
	}

	for _, command := range commands {
		c.ui.RunCommand(command)
	}
	res, err := c.opts.Installer.Run(ctx, commands)
	if err != nil {
		return err
	}
	c.ui.Duration(res.Duration)
	c.logger.Info("dependencies installed",
		zap.Strings("commands", commands),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration))
	if !res.Success() {
		c.ui.Warning(fmt.Sprintf("Dependency installation exited with code %d", res.ExitCode))
		return nil
	}
	c.ui.Success("Dependencies installed.")
	return nil
}
