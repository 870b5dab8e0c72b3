package workspace

import (
	"errors"
	"os"
	"path/filepath"
)

const MLEDir = ".mle"

var ErrNotConfigured = errors.New("you have not set up a project yet (create one with 'mle new <project_name>' and try again)")
var ErrProjectExists = errors.New("project already exists (use --force to overwrite)")

// Find walks up from cwd looking for .mle/ directory
func Find() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindFrom(dir)
}

// FindFrom walks up from dir looking for .mle/ directory
func FindFrom(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		mlePath := filepath.Join(dir, MLEDir)
		if info, err := os.Stat(mlePath); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotConfigured
		}
		dir = parent
	}
}

// Path returns the .mle directory path for a project
func Path(projectDir string) string {
	return filepath.Join(projectDir, MLEDir)
}

// ConfigPath returns the config.yaml path
func ConfigPath(projectDir string) string {
	return filepath.Join(projectDir, MLEDir, "config.yaml")
}

// PlanPath returns the project.yml path holding the persisted plan
func PlanPath(projectDir string) string {
	return filepath.Join(projectDir, MLEDir, "project.yml")
}

// LogsDir returns the directory for run logs
func LogsDir(projectDir string) string {
	return filepath.Join(projectDir, MLEDir, "logs")
}

// PromptsDir returns the directory holding customizable prompt templates
func PromptsDir(projectDir string) string {
	return filepath.Join(projectDir, MLEDir, "prompts")
}
