package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesCoverConstants(t *testing.T) {
	names := Names()
	for _, want := range []string{
		ChainInit, ChainCode, ChainDebug, ChainFilename, ChainTask,
		TaskSelector, ModelSelector, DatasetDetector, DatasetSelector,
		PlanGenerator, DependencyGenerator,
	} {
		assert.Contains(t, names, want)
	}
}

func TestGetAcceptsNameWithOrWithoutExtension(t *testing.T) {
	a, err := Get(ChainInit)
	require.NoError(t, err)
	b, err := Get(ChainInit + ".md")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestGetForWorkspacePrefersLocalCopy(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".mle", "prompts")
	require.NoError(t, os.MkdirAll(local, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(local, "chain_init.md"), []byte("custom {{.Language}}"), 0644))

	got, err := New(dir).Init("python")
	require.NoError(t, err)
	assert.Equal(t, "custom python", got)

	other, err := New(dir).Filename("python")
	require.NoError(t, err)
	assert.Contains(t, other, "`train_classifier.py`")
}

func TestTaskPrompt(t *testing.T) {
	lib := New("")

	t.Run("without resources", func(t *testing.T) {
		got, err := lib.Task(TaskData{
			Requirement:     "train an image classifier on CIFAR-10",
			Language:        "python",
			TaskName:        "Load data",
			TaskDescription: "download and normalize",
		})
		require.NoError(t, err)
		assert.Contains(t, got, "User Requirement: train an image classifier on CIFAR-10")
		assert.Contains(t, got, "Current task: Load data")
		assert.NotContains(t, got, "Resources:")
	})

	t.Run("with resources", func(t *testing.T) {
		got, err := lib.Task(TaskData{
			Requirement: "r", Language: "python", TaskName: "n", TaskDescription: "d",
			Resources: "resnet18",
		})
		require.NoError(t, err)
		assert.Contains(t, got, "Resources: resnet18")
	})
}

func TestDebugPromptCarriesFailureContext(t *testing.T) {
	got, err := New("").Debug("python", "train on iris", "import foo", "ModuleNotFoundError: foo")
	require.NoError(t, err)
	assert.Contains(t, got, "Primary language: python")
	assert.Contains(t, got, "User requirement: train on iris")
	assert.Contains(t, got, "import foo")
	assert.Contains(t, got, "ModuleNotFoundError: foo")
}

func TestCodePromptEmbedsSource(t *testing.T) {
	got, err := New("").Code("python", "print('hi')")
	require.NoError(t, err)
	assert.Contains(t, got, "print('hi')")
}

func TestRenderMissingKey(t *testing.T) {
	_, err := New("").Render(ChainDebug, map[string]string{"Language": "python"})
	assert.Error(t, err)
}
