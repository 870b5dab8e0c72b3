// Package generator holds the one-shot model calls used while planning:
// naming the entry file, classifying the requirement, resolving a dataset,
// producing the task list and the dependency install commands.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/types"
)

// Generator issues non-streaming completions and decodes their answers
type Generator struct {
	client   llm.Client
	prompts  *prompts.Library
	language string
}

// New creates a generator for a project written in language
func New(client llm.Client, library *prompts.Library, language string) *Generator {
	if language == "" {
		language = types.DefaultLanguage
	}
	return &Generator{client: client, prompts: library, language: language}
}

// PlanInput is everything the planner is told about the project
type PlanInput struct {
	Requirement string
	TaskType    string
	Model       string
	Dataset     string
}

// PlanResult is the decoded task list plus the descriptors that were dropped
type PlanResult struct {
	Tasks     []types.Task
	Discarded []Discard
	Raw       string
}

// FileName asks for the entry file name and returns its base name
func (g *Generator) FileName(ctx context.Context, requirement string) (string, error) {
	system, err := g.prompts.Filename(g.language)
	if err != nil {
		return "", err
	}
	answer, err := g.ask(ctx, system, requirement)
	if err != nil {
		return "", err
	}
	name := llm.ExtractFileName(answer)
	if name == "" {
		return "", fmt.Errorf("no file name in response: %s", display(answer))
	}
	return name, nil
}

// SelectTask classifies the machine learning task of the requirement
func (g *Generator) SelectTask(ctx context.Context, requirement string) (string, error) {
	var out struct {
		Task string `json:"task"`
	}
	if err := g.askJSON(ctx, prompts.TaskSelector, nil, requirement, &out); err != nil {
		return "", err
	}
	return required("task", out.Task)
}

// SelectModel picks a model architecture for the requirement
func (g *Generator) SelectModel(ctx context.Context, requirement string) (string, error) {
	var out struct {
		Model string `json:"model"`
	}
	if err := g.askJSON(ctx, prompts.ModelSelector, nil, requirement, &out); err != nil {
		return "", err
	}
	return required("model", out.Model)
}

// DetectDataset returns the dataset named in the requirement, or one of
// types.DatasetNoInformation and types.DatasetCSVTable
func (g *Generator) DetectDataset(ctx context.Context, requirement string) (string, error) {
	var out struct {
		Dataset string `json:"dataset"`
	}
	if err := g.askJSON(ctx, prompts.DatasetDetector, nil, requirement, &out); err != nil {
		return "", err
	}
	return required("dataset", out.Dataset)
}

// SelectDataset suggests a public dataset for the requirement
func (g *Generator) SelectDataset(ctx context.Context, requirement string) (string, error) {
	var out struct {
		Dataset string `json:"dataset"`
	}
	data := map[string]string{"Language": g.language}
	if err := g.askJSON(ctx, prompts.DatasetSelector, data, requirement, &out); err != nil {
		return "", err
	}
	return required("dataset", out.Dataset)
}

// GeneratePlan asks the planner for an ordered task list. Descriptors that
// fail validation are reported in Discarded rather than returned.
func (g *Generator) GeneratePlan(ctx context.Context, in PlanInput) (*PlanResult, error) {
	system, err := g.prompts.Render(prompts.PlanGenerator, map[string]string{
		"Language": g.language,
		"TaskType": in.TaskType,
		"Model":    in.Model,
		"Dataset":  in.Dataset,
	})
	if err != nil {
		return nil, err
	}
	answer, err := g.ask(ctx, system, in.Requirement)
	if err != nil {
		return nil, err
	}
	tasks, discarded, err := DecodePlan(answer)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Tasks: tasks, Discarded: discarded, Raw: answer}, nil
}

// Dependencies returns the shell commands that install what the plan needs
func (g *Generator) Dependencies(ctx context.Context, plan *types.Plan) ([]string, error) {
	system, err := g.prompts.Render(prompts.DependencyGenerator, map[string]string{
		"Language": g.language,
		"Plan":     describePlan(plan),
	})
	if err != nil {
		return nil, err
	}
	answer, err := g.ask(ctx, system, plan.Requirement)
	if err != nil {
		return nil, err
	}

	var out struct {
		Commands []string `json:"commands"`
	}
	if err := llm.ExtractJSON(answer, &out); err != nil {
		return nil, err
	}

	commands := make([]string, 0, len(out.Commands))
	for _, c := range out.Commands {
		if c = strings.TrimSpace(c); c != "" {
			commands = append(commands, c)
		}
	}
	return commands, nil
}

func (g *Generator) ask(ctx context.Context, system, user string) (string, error) {
	answer, err := g.client.Complete(ctx, []types.Message{
		{Role: types.RoleSystem, Content: system},
		{Role: types.RoleUser, Content: user},
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (g *Generator) askJSON(ctx context.Context, name string, data any, user string, v any) error {
	if data == nil {
		data = map[string]string{"Language": g.language}
	}
	system, err := g.prompts.Render(name, data)
	if err != nil {
		return err
	}
	answer, err := g.ask(ctx, system, user)
	if err != nil {
		return err
	}
	if err := llm.ExtractJSON(answer, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("response has no %s", field)
	}
	return value, nil
}

func describePlan(plan *types.Plan) string {
	var sb strings.Builder
	if plan.Dataset != "" {
		fmt.Fprintf(&sb, "Dataset: %s\n", plan.Dataset)
	}
	for i, t := range plan.Tasks {
		fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, t.Name, t.Description)
	}
	return strings.TrimSpace(sb.String())
}

func display(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 120 {
		return s[:117] + "..."
	}
	return s
}
