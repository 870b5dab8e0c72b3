package types

import (
	"errors"
	"strings"
	"testing"
)

func validPlan() Plan {
	return Plan{
		ProjectName: "cifar",
		ProjectPath: "/work/cifar",
		Language:    "python",
		Requirement: "train an image classifier on CIFAR-10",
		Tasks: []Task{
			{Name: "Load data", Description: "load CIFAR-10", Kind: KindCodeGeneration, Debug: 2},
			{Name: "Pick optimizer", Kind: KindMultipleChoice, Resources: []Resource{{Name: "Adam"}, {Name: "SGD", Choices: []string{"momentum", "nesterov"}}}},
		},
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Plan)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid plan",
			mutate:  func(p *Plan) {},
			wantErr: false,
		},
		{
			name:    "cursor at end is valid",
			mutate:  func(p *Plan) { p.CurrentTask = 2 },
			wantErr: false,
		},
		{
			name:    "empty task list with zero cursor",
			mutate:  func(p *Plan) { p.Tasks = nil },
			wantErr: false,
		},
		{
			name:    "missing project name",
			mutate:  func(p *Plan) { p.ProjectName = "" },
			wantErr: true,
			errMsg:  "plan.project_name: field is required",
		},
		{
			name:    "missing project path",
			mutate:  func(p *Plan) { p.ProjectPath = "" },
			wantErr: true,
			errMsg:  "plan.project_path: field is required",
		},
		{
			name:    "negative cursor",
			mutate:  func(p *Plan) { p.CurrentTask = -1 },
			wantErr: true,
			errMsg:  "plan.current_task",
		},
		{
			name:    "cursor beyond tasks",
			mutate:  func(p *Plan) { p.CurrentTask = 3 },
			wantErr: true,
			errMsg:  "plan.current_task",
		},
		{
			name:    "invalid task surfaces index",
			mutate:  func(p *Plan) { p.Tasks[1].Kind = "shell" },
			wantErr: true,
			errMsg:  "plan.tasks[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPlan()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlanValidateDefaultsLanguage(t *testing.T) {
	p := validPlan()
	p.Language = ""
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Language != DefaultLanguage {
		t.Errorf("expected language %q, got %q", DefaultLanguage, p.Language)
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "code generation without debug budget",
			task:    Task{Name: "Train", Kind: KindCodeGeneration},
			wantErr: false,
		},
		{
			name:    "missing name",
			task:    Task{Kind: KindCodeGeneration},
			wantErr: true,
			errMsg:  "task.name: field is required",
		},
		{
			name:    "unknown kind",
			task:    Task{Name: "x", Kind: "shell"},
			wantErr: true,
			errMsg:  "task.kind: invalid value",
		},
		{
			name:    "negative debug",
			task:    Task{Name: "x", Kind: KindCodeGeneration, Debug: -1},
			wantErr: true,
			errMsg:  "task.debug",
		},
		{
			name:    "multiple choice without resources",
			task:    Task{Name: "x", Kind: KindMultipleChoice},
			wantErr: true,
			errMsg:  "task.resources",
		},
		{
			name:    "multiple choice with unnamed resource",
			task:    Task{Name: "x", Kind: KindMultipleChoice, Resources: []Resource{{Name: ""}}},
			wantErr: true,
			errMsg:  "task.resources[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlanCursor(t *testing.T) {
	p := validPlan()

	if p.IsComplete() {
		t.Fatal("fresh plan should not be complete")
	}
	if got := p.Current(); got == nil || got.Name != "Load data" {
		t.Fatalf("expected first task, got %+v", got)
	}

	for i := 0; i < 2; i++ {
		if err := p.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if !p.IsComplete() {
		t.Error("plan should be complete after advancing past every task")
	}
	if p.Current() != nil {
		t.Error("Current should be nil for an exhausted plan")
	}
	if err := p.Advance(); err == nil {
		t.Error("advancing past the end should fail")
	}
	if p.CurrentTask != 2 {
		t.Errorf("cursor moved past the end: %d", p.CurrentTask)
	}
}

func TestPlanSetTasks(t *testing.T) {
	t.Run("refuses to replace existing tasks", func(t *testing.T) {
		p := validPlan()
		err := p.SetTasks([]Task{{Name: "other", Kind: KindCodeGeneration}})
		if err == nil {
			t.Fatal("expected error")
		}
		if len(p.Tasks) != 2 {
			t.Errorf("task list changed: %d", len(p.Tasks))
		}
	})

	t.Run("refuses empty list", func(t *testing.T) {
		p := validPlan()
		p.Tasks = nil
		if err := p.SetTasks(nil); err == nil {
			t.Error("expected error for empty list")
		}
	})

	t.Run("installs and resets cursor", func(t *testing.T) {
		p := validPlan()
		p.Tasks = nil
		if err := p.SetTasks([]Task{{Name: "a", Kind: KindCodeGeneration}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Tasks) != 1 || p.CurrentTask != 0 {
			t.Errorf("unexpected state: %+v", p)
		}
	})
}

func TestPlanReset(t *testing.T) {
	p := validPlan()
	p.Dataset = "cifar10"
	p.CurrentTask = 1

	p.Reset(false)
	if p.HasTasks() || p.CurrentTask != 0 {
		t.Errorf("tasks not cleared: %+v", p)
	}
	if p.Requirement == "" || p.Dataset == "" {
		t.Error("partial reset should keep requirement and dataset")
	}

	p.Reset(true)
	if p.Requirement != "" || p.Dataset != "" || p.TrainingEntryFile != "" {
		t.Errorf("full reset left fields: %+v", p)
	}
}

func TestTaskResources(t *testing.T) {
	task := validPlan().Tasks[1]

	names := task.ResourceNames()
	if len(names) != 2 || names[0] != "Adam" || names[1] != "SGD" {
		t.Errorf("unexpected names: %v", names)
	}

	r, ok := task.FindResource("SGD")
	if !ok || len(r.Choices) != 2 {
		t.Errorf("expected SGD with 2 choices, got %+v %v", r, ok)
	}
	if _, ok := task.FindResource("RMSprop"); ok {
		t.Error("found a resource that does not exist")
	}
}

func TestTaskKindIsValid(t *testing.T) {
	for _, k := range AllTaskKinds() {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if TaskKind("checkpoint").IsValid() {
		t.Error("checkpoint should not be valid")
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	p := validPlan()
	p.ProjectName = ""
	p.Tasks[0].Kind = "shell"
	p.Tasks[1].Resources[0].Name = ""

	err := p.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if len(fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(fields), err)
	}

	want := []string{
		"plan.project_name: field is required",
		`plan.tasks[0].kind: invalid value, must be one of: [code_generation multiple_choice] (got "shell")`,
		"plan.tasks[1].resources[0].name: field is required",
	}
	for i, w := range want {
		if fields[i].Error() != w {
			t.Errorf("field %d: expected %q, got %q", i, w, fields[i].Error())
		}
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
}

func TestFieldErrorsErr(t *testing.T) {
	var errs FieldErrors
	if errs.Err() != nil {
		t.Fatal("empty collection should be nil")
	}
	errs.Add("task.debug", "must not be negative", -1)
	if errs.Err() == nil || errs.Error() != "task.debug: must not be negative (got -1)" {
		t.Errorf("unexpected error: %v", errs.Err())
	}
}
