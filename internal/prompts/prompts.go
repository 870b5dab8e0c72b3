package prompts

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var embeddedPrompts embed.FS

// Template names
const (
	ChainInit           = "chain_init"
	ChainCode           = "chain_code"
	ChainDebug          = "chain_debug"
	ChainFilename       = "chain_filename"
	ChainTask           = "chain_task"
	TaskSelector        = "task_selector"
	ModelSelector       = "model_selector"
	DatasetDetector     = "dataset_detector"
	DatasetSelector     = "dataset_selector"
	PlanGenerator       = "plan_generator"
	DependencyGenerator = "dependency_generator"
)

// Get returns the embedded prompt content
func Get(name string) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	content, err := embeddedPrompts.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt %s not found: %w", name, err)
	}
	return string(content), nil
}

// GetForWorkspace returns prompt content, checking .mle/prompts/ first then embedded
func GetForWorkspace(projectDir, name string) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		name = name + ".md"
	}

	if projectDir != "" {
		localPath := filepath.Join(projectDir, ".mle", "prompts", name)
		if content, err := os.ReadFile(localPath); err == nil {
			return string(content), nil
		}
	}

	return Get(name)
}

// Names lists the embedded template names without extension
func Names() []string {
	entries, err := embeddedPrompts.ReadDir("templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Library renders prompts for one project
type Library struct {
	projectDir string
}

// New creates a library that prefers the project's customized templates
func New(projectDir string) *Library {
	return &Library{projectDir: projectDir}
}

// Render executes the named template with data
func (l *Library) Render(name string, data any) (string, error) {
	content, err := GetForWorkspace(l.projectDir, name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// TaskData fills the per-task user prompt
type TaskData struct {
	Requirement     string
	Language        string
	TaskName        string
	TaskDescription string
	Resources       string
}

// Init is the system prompt used when there is no prior script content
func (l *Library) Init(language string) (string, error) {
	return l.Render(ChainInit, map[string]string{"Language": language})
}

// Code is the system prompt that embeds the current script
func (l *Library) Code(language, source string) (string, error) {
	return l.Render(ChainCode, map[string]string{"Language": language, "Source": source})
}

// Debug is the repair prompt appended after a failed run
func (l *Library) Debug(language, requirement, code, log string) (string, error) {
	return l.Render(ChainDebug, map[string]string{
		"Language":    language,
		"Requirement": requirement,
		"Code":        code,
		"Log":         log,
	})
}

// Filename is the system prompt asking for the entry file name
func (l *Library) Filename(language string) (string, error) {
	return l.Render(ChainFilename, map[string]string{"Language": language})
}

// Task is the user prompt of one code-generation task
func (l *Library) Task(data TaskData) (string, error) {
	return l.Render(ChainTask, data)
}
