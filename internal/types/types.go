package types

import (
	"fmt"
)

// Plan is the persisted record of one project (.mle/project.yml)
type Plan struct {
	ProjectName       string `yaml:"project_name"`
	ProjectPath       string `yaml:"project_path"`
	Language          string `yaml:"language"`
	Requirement       string `yaml:"requirement,omitempty"`
	Dataset           string `yaml:"dataset,omitempty"`
	TrainingEntryFile string `yaml:"training_entry_file,omitempty"`
	Tasks             []Task `yaml:"tasks,omitempty"`
	CurrentTask       int    `yaml:"current_task"`
}

// Task is one unit of plan work
type Task struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Kind        TaskKind   `yaml:"kind"`
	Debug       int        `yaml:"debug,omitempty"`
	Resources   []Resource `yaml:"resources,omitempty"`
}

// Resource is a named choice of a multiple-choice task. Choices holds the
// optional second-level drill-down.
type Resource struct {
	Name    string   `yaml:"name"`
	Choices []string `yaml:"choices,omitempty"`
}

// HasTasks reports whether planning already produced a task list
func (p *Plan) HasTasks() bool {
	return len(p.Tasks) > 0
}

// IsComplete reports whether every task has been executed
func (p *Plan) IsComplete() bool {
	return p.HasTasks() && p.CurrentTask == len(p.Tasks)
}

// Current returns the task under the cursor, or nil when the plan is exhausted
func (p *Plan) Current() *Task {
	if p.CurrentTask < 0 || p.CurrentTask >= len(p.Tasks) {
		return nil
	}
	return &p.Tasks[p.CurrentTask]
}

// Advance moves the cursor past the current task
func (p *Plan) Advance() error {
	if p.CurrentTask >= len(p.Tasks) {
		return fmt.Errorf("plan.current_task: cannot advance past %d tasks", len(p.Tasks))
	}
	p.CurrentTask++
	return nil
}

// SetTasks installs the task list produced by planning. The list is
// append-only once set, so replacing a non-empty list is refused.
func (p *Plan) SetTasks(tasks []Task) error {
	if p.HasTasks() {
		return fmt.Errorf("plan.tasks: already set (%d tasks)", len(p.Tasks))
	}
	if len(tasks) == 0 {
		return fmt.Errorf("plan.tasks: at least one task is required")
	}
	p.Tasks = append([]Task(nil), tasks...)
	p.CurrentTask = 0
	return nil
}

// Reset clears planning output so the next run plans again. With all set,
// requirement, dataset and entry file are cleared too.
func (p *Plan) Reset(all bool) {
	p.Tasks = nil
	p.CurrentTask = 0
	if all {
		p.Requirement = ""
		p.Dataset = ""
		p.TrainingEntryFile = ""
	}
}

// Validate checks the plan record and every task, reporting all problems
// at once. An empty language is defaulted rather than rejected.
func (p *Plan) Validate() error {
	var errs FieldErrors
	if p.ProjectName == "" {
		errs.Add("plan.project_name", "field is required", nil)
	}
	if p.ProjectPath == "" {
		errs.Add("plan.project_path", "field is required", nil)
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.CurrentTask < 0 || p.CurrentTask > len(p.Tasks) {
		errs.Add("plan.current_task", fmt.Sprintf("out of range [0, %d]", len(p.Tasks)), p.CurrentTask)
	}
	for i := range p.Tasks {
		p.Tasks[i].check(&errs, fmt.Sprintf("plan.tasks[%d]", i))
	}
	return errs.Err()
}

// Validate checks a single task
func (t *Task) Validate() error {
	var errs FieldErrors
	t.check(&errs, "task")
	return errs.Err()
}

func (t *Task) check(errs *FieldErrors, prefix string) {
	if t.Name == "" {
		errs.Add(prefix+".name", "field is required", nil)
	}
	if !t.Kind.IsValid() {
		errs.Add(prefix+".kind", fmt.Sprintf("invalid value, must be one of: %v", AllTaskKinds()), t.Kind)
	}
	if t.Debug < 0 {
		errs.Add(prefix+".debug", "must not be negative", t.Debug)
	}
	if t.Kind != KindMultipleChoice {
		return
	}
	if len(t.Resources) == 0 {
		errs.Add(prefix+".resources", "multiple_choice task needs at least one resource", nil)
	}
	for i, r := range t.Resources {
		if r.Name == "" {
			errs.Add(fmt.Sprintf("%s.resources[%d].name", prefix, i), "field is required", nil)
		}
	}
}

// ResourceNames returns the first-level choice labels in order
func (t *Task) ResourceNames() []string {
	names := make([]string, len(t.Resources))
	for i, r := range t.Resources {
		names[i] = r.Name
	}
	return names
}

// FindResource returns the resource with the given name
func (t *Task) FindResource(name string) (*Resource, bool) {
	for i := range t.Resources {
		if t.Resources[i].Name == name {
			return &t.Resources[i], true
		}
	}
	return nil, false
}

// Message is one role-tagged chat entry sent to the model
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
