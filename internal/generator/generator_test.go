package generator

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/testutil"
	"github.com/daydemir/mle/internal/types"
)

func newGenerator(replies ...string) (*Generator, *testutil.Client) {
	client := &testutil.Client{Replies: replies}
	return New(client, prompts.New(""), "python"), client
}

func TestFileName(t *testing.T) {
	g, client := newGenerator("Use `scripts/train_cifar.py` as the entry file.")

	name, err := g.FileName(context.Background(), "train on CIFAR-10")
	require.NoError(t, err)
	assert.Equal(t, "train_cifar.py", name)

	req := client.LastRequest()
	require.Len(t, req, 2)
	assert.Equal(t, types.RoleSystem, req[0].Role)
	assert.Contains(t, req[0].Content, "python")
	assert.Equal(t, "train on CIFAR-10", req[1].Content)
}

func TestFileNameMissing(t *testing.T) {
	g, _ := newGenerator("I cannot name it")
	_, err := g.FileName(context.Background(), "req")
	assert.Error(t, err)
}

func TestSelectors(t *testing.T) {
	g, _ := newGenerator(
		`{"task": "image_classification"}`,
		"```json\n{\"model\": \"ResNet-18\"}\n```",
		`Sure: {"dataset": "no_data_information_provided"}`,
		`{"dataset": "cifar10"}`,
	)
	ctx := context.Background()

	task, err := g.SelectTask(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, "image_classification", task)

	model, err := g.SelectModel(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, "ResNet-18", model)

	detected, err := g.DetectDataset(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, types.DatasetNoInformation, detected)

	selected, err := g.SelectDataset(ctx, "req")
	require.NoError(t, err)
	assert.Equal(t, "cifar10", selected)
}

func TestSelectorEmptyValue(t *testing.T) {
	g, _ := newGenerator(`{"task": "  "}`)
	_, err := g.SelectTask(context.Background(), "req")
	assert.ErrorContains(t, err, "no task")
}

func TestGeneratePlan(t *testing.T) {
	answer := `{"tasks": [
		{"name": "Load data", "description": "download CIFAR-10", "kind": "code_generation", "debug": 2},
		{"name": "Optimizer", "description": "pick one", "kind": "multiple_choice", "resources": [{"name": "Adam"}, {"name": "SGD", "choices": ["momentum"]}]},
		{"name": "Deploy", "kind": "shell"}
	]}`
	g, client := newGenerator(answer)

	res, err := g.GeneratePlan(context.Background(), PlanInput{
		Requirement: "train a classifier",
		TaskType:    "image_classification",
		Model:       "ResNet-18",
		Dataset:     "cifar10",
	})
	require.NoError(t, err)

	require.Len(t, res.Tasks, 2)
	assert.Equal(t, 2, res.Tasks[0].Debug)
	assert.Equal(t, []string{"Adam", "SGD"}, res.Tasks[1].ResourceNames())
	require.Len(t, res.Discarded, 1)
	assert.Equal(t, 2, res.Discarded[0].Index)
	assert.Equal(t, "Deploy", res.Discarded[0].Name)

	system := client.LastRequest()[0].Content
	assert.Contains(t, system, "ResNet-18")
	assert.Contains(t, system, "cifar10")
	assert.Contains(t, system, "image_classification")
}

func TestGeneratePlanNoJSON(t *testing.T) {
	g, _ := newGenerator("no plan today")
	_, err := g.GeneratePlan(context.Background(), PlanInput{Requirement: "r"})
	assert.Error(t, err)
}

func TestDependencies(t *testing.T) {
	g, client := newGenerator(`{"commands": ["pip install torch", " ", "pip install torchvision"]}`)

	plan := &types.Plan{
		Requirement: "train",
		Dataset:     "cifar10",
		Tasks:       []types.Task{{Name: "Load data", Description: "download", Kind: types.KindCodeGeneration}},
	}
	commands, err := g.Dependencies(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"pip install torch", "pip install torchvision"}, commands)
	assert.Contains(t, client.LastRequest()[0].Content, "1. Load data: download")
}

func TestDecodeTasks(t *testing.T) {
	raw := func(s string) json.RawMessage { return json.RawMessage(s) }

	tests := []struct {
		name       string
		item       json.RawMessage
		wantTask   bool
		wantReason string
	}{
		{
			name:     "code generation without debug",
			item:     raw(`{"name": "Train", "kind": "code_generation"}`),
			wantTask: true,
		},
		{
			name:     "code generation drops resources",
			item:     raw(`{"name": "Train", "kind": "code_generation", "resources": [{"name": "x"}]}`),
			wantTask: true,
		},
		{
			name:       "unknown kind",
			item:       raw(`{"name": "Deploy", "kind": "deploy"}`),
			wantReason: "task.kind",
		},
		{
			name:       "unknown field",
			item:       raw(`{"name": "Train", "kind": "code_generation", "priority": 1}`),
			wantReason: "malformed descriptor",
		},
		{
			name:       "negative debug",
			item:       raw(`{"name": "Train", "kind": "code_generation", "debug": -2}`),
			wantReason: "task.debug",
		},
		{
			name:       "choice without resources",
			item:       raw(`{"name": "Pick", "kind": "multiple_choice"}`),
			wantReason: "task.resources",
		},
		{
			name:       "not an object",
			item:       raw(`"Train the model"`),
			wantReason: "malformed descriptor",
		},
		{
			name:       "missing name",
			item:       raw(`{"kind": "code_generation"}`),
			wantReason: "task.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, discarded := DecodeTasks([]json.RawMessage{tt.item})
			if tt.wantTask {
				require.Len(t, tasks, 1)
				assert.Empty(t, discarded)
				assert.Empty(t, tasks[0].Resources)
				return
			}
			assert.Empty(t, tasks)
			require.Len(t, discarded, 1)
			assert.Contains(t, discarded[0].Reason, tt.wantReason)
		})
	}
}

func TestDecodeTasksKeepsOrder(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"name": "a", "kind": "code_generation"}`),
		json.RawMessage(`{"name": "bad", "kind": "?"}`),
		json.RawMessage(`{"name": "b", "kind": "multiple_choice", "resources": [{"name": "r"}]}`),
	}
	tasks, discarded := DecodeTasks(items)

	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0].Name)
	assert.Equal(t, "b", tasks[1].Name)
	require.Len(t, discarded, 1)
	assert.True(t, strings.HasPrefix(discarded[0].String(), `tasks[1] "bad"`))
}
