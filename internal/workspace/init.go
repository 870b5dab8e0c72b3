package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/types"
)

// InitOptions describes a project to create
type InitOptions struct {
	ParentDir string
	Name      string
	Language  string
	Force     bool
}

// Init creates <ParentDir>/<Name> with a .mle/ folder holding config.yaml,
// an empty plan and the prompt templates. It returns the project directory.
func Init(opts InitOptions) (string, error) {
	if opts.Name == "" {
		return "", fmt.Errorf("project name is required")
	}
	if opts.Language == "" {
		opts.Language = types.DefaultLanguage
	}

	projectDir, err := filepath.Abs(filepath.Join(opts.ParentDir, opts.Name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve project directory: %w", err)
	}
	mlePath := Path(projectDir)

	if _, err := os.Stat(mlePath); err == nil {
		if !opts.Force {
			return "", ErrProjectExists
		}
		if err := os.RemoveAll(mlePath); err != nil {
			return "", fmt.Errorf("failed to remove existing project: %w", err)
		}
	}

	dirs := []string{
		mlePath,
		LogsDir(projectDir),
		PromptsDir(projectDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := writeFile(ConfigPath(projectDir), defaultConfig); err != nil {
		return "", err
	}

	plan := &types.Plan{
		ProjectName: opts.Name,
		ProjectPath: projectDir,
		Language:    opts.Language,
	}
	if err := state.NewStore(PlanPath(projectDir)).Save(plan); err != nil {
		return "", fmt.Errorf("failed to write initial plan: %w", err)
	}

	if err := copyPrompts(PromptsDir(projectDir)); err != nil {
		return "", err
	}

	return projectDir, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func copyPrompts(promptsDir string) error {
	for _, name := range prompts.Names() {
		content, err := prompts.Get(name)
		if err != nil {
			return fmt.Errorf("failed to get embedded prompt %s: %w", name, err)
		}
		if err := writeFile(filepath.Join(promptsDir, name+".md"), content); err != nil {
			return err
		}
	}
	return nil
}

const defaultConfig = `# mle configuration
llm:
  backend: openai          # openai | ollama
  model: gpt-4o
  base_url: ""             # empty uses the backend default
  api_key: ""              # or set OPENAI_API_KEY / MLE_LLM_API_KEY
  timeout: 10m

run:
  interpreter: python      # validation runs "<interpreter> <entry_file>"
  validation_timeout: 30m
  install_timeout: 30m

log:
  level: info              # debug | info | warn | error
`
