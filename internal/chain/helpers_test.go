package chain

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daydemir/mle/internal/display"
	"github.com/daydemir/mle/internal/generator"
	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/testutil"
	"github.com/daydemir/mle/internal/types"
	"github.com/daydemir/mle/internal/workspace"
)

// fakeGenerator answers planning calls from fields and records call order
type fakeGenerator struct {
	fileName string
	fileErr  error
	task     string
	model    string
	detected string
	selected string
	plan     *generator.PlanResult
	deps     []string
	depsErr  error

	calls []string
}

func (g *fakeGenerator) FileName(ctx context.Context, requirement string) (string, error) {
	g.calls = append(g.calls, "file_name")
	return g.fileName, g.fileErr
}

func (g *fakeGenerator) SelectTask(ctx context.Context, requirement string) (string, error) {
	g.calls = append(g.calls, "select_task")
	return g.task, nil
}

func (g *fakeGenerator) SelectModel(ctx context.Context, requirement string) (string, error) {
	g.calls = append(g.calls, "select_model")
	return g.model, nil
}

func (g *fakeGenerator) DetectDataset(ctx context.Context, requirement string) (string, error) {
	g.calls = append(g.calls, "detect_dataset")
	return g.detected, nil
}

func (g *fakeGenerator) SelectDataset(ctx context.Context, requirement string) (string, error) {
	g.calls = append(g.calls, "select_dataset")
	return g.selected, nil
}

func (g *fakeGenerator) GeneratePlan(ctx context.Context, in generator.PlanInput) (*generator.PlanResult, error) {
	g.calls = append(g.calls, "generate_plan")
	if g.plan == nil {
		return &generator.PlanResult{}, nil
	}
	return g.plan, nil
}

func (g *fakeGenerator) Dependencies(ctx context.Context, plan *types.Plan) ([]string, error) {
	g.calls = append(g.calls, "dependencies")
	return g.deps, g.depsErr
}

func (g *fakeGenerator) called(name string) bool {
	for _, c := range g.calls {
		if c == name {
			return true
		}
	}
	return false
}

// recordingStore checks the cursor invariant on every save
type recordingStore struct {
	*state.Store
	t       *testing.T
	cursors []int
}

func (s *recordingStore) Save(plan *types.Plan) error {
	if n := len(s.cursors); n > 0 && plan.CurrentTask < s.cursors[n-1] {
		s.t.Errorf("cursor decreased from %d to %d", s.cursors[n-1], plan.CurrentTask)
	}
	if plan.CurrentTask < 0 || plan.CurrentTask > len(plan.Tasks) {
		s.t.Errorf("cursor %d out of range for %d tasks", plan.CurrentTask, len(plan.Tasks))
	}
	s.cursors = append(s.cursors, plan.CurrentTask)
	return s.Store.Save(plan)
}

type harness struct {
	dir       string
	store     *recordingStore
	client    *testutil.Client
	gen       *fakeGenerator
	prompter  *testutil.Prompter
	validator *testutil.Runner
	installer *testutil.Runner
}

func newHarness(t *testing.T, mutate func(p *types.Plan)) *harness {
	t.Helper()
	dir := testutil.SetupTestDir(t)

	plan := &types.Plan{
		ProjectName: "cifar",
		ProjectPath: dir,
		Language:    "python",
	}
	if mutate != nil {
		mutate(plan)
	}
	store := state.NewStore(workspace.PlanPath(dir))
	require.NoError(t, store.Save(plan))

	return &harness{
		dir:   dir,
		store: &recordingStore{Store: store, t: t, cursors: []int{plan.CurrentTask}},
		client: &testutil.Client{},
		gen: &fakeGenerator{
			fileName: "train.py",
			task:     "image_classification",
			model:    "ResNet-18",
			detected: "cifar10",
		},
		prompter:  &testutil.Prompter{},
		validator: &testutil.Runner{},
		installer: &testutil.Runner{},
	}
}

func (h *harness) chain(t *testing.T) *Chain {
	t.Helper()
	c, err := New(Options{
		Store:       h.store,
		Client:      h.client,
		Generator:   h.gen,
		Prompts:     prompts.New(h.dir),
		Prompter:    h.prompter,
		Validator:   h.validator,
		Installer:   h.installer,
		Interpreter: "python",
		Display:     display.NewWithOptions(io.Discard, true),
	})
	require.NoError(t, err)
	return c
}

func (h *harness) entry() string {
	return filepath.Join(h.dir, "train.py")
}

func (h *harness) load(t *testing.T) *types.Plan {
	t.Helper()
	plan, err := h.store.Load()
	require.NoError(t, err)
	return plan
}

func codeTask(name string, debug int) types.Task {
	return types.Task{Name: name, Description: name + " step", Kind: types.KindCodeGeneration, Debug: debug}
}

func choiceTask(name string, resources ...types.Resource) types.Task {
	return types.Task{Name: name, Description: "Choose " + name, Kind: types.KindMultipleChoice, Resources: resources}
}

func yes() testutil.Answer            { return testutil.Answer{Yes: true} }
func no() testutil.Answer             { return testutil.Answer{Yes: false} }
func text(v string) testutil.Answer   { return testutil.Answer{Value: v} }
func choose(v string) testutil.Answer { return testutil.Answer{Value: v} }
