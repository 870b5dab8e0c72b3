package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/types"
)

// Discard records a planner descriptor that could not become a Task
type Discard struct {
	Index  int
	Name   string
	Reason string
}

func (d Discard) String() string {
	if d.Name == "" {
		return fmt.Sprintf("tasks[%d]: %s", d.Index, d.Reason)
	}
	return fmt.Sprintf("tasks[%d] %q: %s", d.Index, d.Name, d.Reason)
}

// taskDescriptor is the wire shape of one planner task
type taskDescriptor struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Kind        types.TaskKind       `json:"kind"`
	Debug       *int                 `json:"debug"`
	Resources   []resourceDescriptor `json:"resources"`
}

type resourceDescriptor struct {
	Name    string   `json:"name"`
	Choices []string `json:"choices"`
}

// DecodePlan extracts the {"tasks": [...]} object from a planner answer
func DecodePlan(answer string) ([]types.Task, []Discard, error) {
	var envelope struct {
		Tasks []json.RawMessage `json:"tasks"`
	}
	if err := llm.ExtractJSON(answer, &envelope); err != nil {
		return nil, nil, fmt.Errorf("plan: %w", err)
	}
	tasks, discarded := DecodeTasks(envelope.Tasks)
	return tasks, discarded, nil
}

// DecodeTasks converts raw descriptors into validated tasks. Every
// descriptor either becomes a Task or a Discard; order is kept.
func DecodeTasks(raw []json.RawMessage) ([]types.Task, []Discard) {
	var (
		tasks     []types.Task
		discarded []Discard
	)
	for i, item := range raw {
		task, err := decodeTask(item)
		if err != nil {
			discarded = append(discarded, Discard{Index: i, Name: peekName(item), Reason: err.Error()})
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, discarded
}

func decodeTask(item json.RawMessage) (types.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.DisallowUnknownFields()

	var d taskDescriptor
	if err := dec.Decode(&d); err != nil {
		return types.Task{}, fmt.Errorf("malformed descriptor: %w", err)
	}

	task := types.Task{
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Kind:        d.Kind,
	}

	switch d.Kind {
	case types.KindCodeGeneration:
		if d.Debug != nil {
			task.Debug = *d.Debug
		}
	case types.KindMultipleChoice:
		for _, r := range d.Resources {
			task.Resources = append(task.Resources, types.Resource{
				Name:    strings.TrimSpace(r.Name),
				Choices: r.Choices,
			})
		}
	}

	if err := task.Validate(); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// peekName recovers the name of a descriptor that failed strict decoding
func peekName(item json.RawMessage) string {
	var loose struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(item, &loose); err != nil {
		return ""
	}
	return loose.Name
}
