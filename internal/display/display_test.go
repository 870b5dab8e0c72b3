package display

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/daydemir/mle/internal/types"
)

func newTestDisplay() (*Display, *bytes.Buffer) {
	var buf bytes.Buffer
	d := NewWithOptions(&buf, true)
	d.termWidth = 60
	d.now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC) }
	return d, &buf
}

func TestStatusLines(t *testing.T) {
	d, buf := newTestDisplay()

	d.Success("saved plan")
	d.Error("task failed")
	d.Info("Dataset", "cifar10")

	want := "[15:04:05] ✓ saved plan\n" +
		"[15:04:05] ✗ task failed\n" +
		"[15:04:05] Dataset: cifar10\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestBoxWidth(t *testing.T) {
	d, buf := newTestDisplay()
	d.Banner("hello")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], BoxTopLeft+BoxHorizontal+" MLE ") {
		t.Errorf("unexpected top line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "hello") {
		t.Errorf("content line missing text: %q", lines[1])
	}
}

func TestStreamPrinter(t *testing.T) {
	d, buf := newTestDisplay()
	p := d.NewStreamPrinter(false)

	p.OnDelta("first ", "first ")
	p.OnDelta("line\nsecond", "first line\nsecond")
	p.OnStop("first line\nsecond")

	want := GutterGenerate + " first line\n" + GutterGenerate + " second\n"
	if buf.String() != want {
		t.Errorf("unexpected stream output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestStreamPrinterRepairGutter(t *testing.T) {
	d, buf := newTestDisplay()
	p := d.NewStreamPrinter(false)

	d.RepairRound(1, 1, 2)
	buf.Reset()
	p.OnDelta("fixed\n", "fixed\n")
	if got := buf.String(); got != GutterRepair+" fixed\n" {
		t.Errorf("repair round should use the repair gutter, got %q", got)
	}

	d.TaskStart("Train", 1, 3)
	buf.Reset()
	p.OnDelta("next\n", "next\n")
	if got := buf.String(); got != GutterGenerate+" next\n" {
		t.Errorf("a new task should reset the gutter, got %q", got)
	}
}

func TestRunLines(t *testing.T) {
	d, buf := newTestDisplay()

	d.RunCommand("python train.py")
	d.RepairRound(2, 1, 3)
	d.Duration(1500 * time.Millisecond)

	want := "[15:04:05] " + SymbolRun + " python train.py\n" +
		"[15:04:05] " + SymbolResume + " Run failed with exit code 2, debugging the script (1/3)...\n" +
		"  Duration: 2s\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestBoxPadsMultibyteText(t *testing.T) {
	d, buf := newTestDisplay()
	d.Banner("données ✓", strings.Repeat("é", 80))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	width := utf8.RuneCountInString(lines[0])
	for i, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			t.Errorf("line %d has %d runes, want %d: %q", i, n, width, line)
		}
	}
}

func TestPlanMarkdown(t *testing.T) {
	md := PlanMarkdown([]types.Task{
		{Name: "Load data", Kind: types.KindCodeGeneration, Debug: 3},
		{Name: "Pick a|b", Kind: types.KindMultipleChoice},
	})

	if !strings.Contains(md, "| 1 | Load data | code_generation | 3 |") {
		t.Errorf("missing code task row:\n%s", md)
	}
	if !strings.Contains(md, `| 2 | Pick a\|b | multiple_choice | - |`) {
		t.Errorf("missing choice task row:\n%s", md)
	}
}

func TestProgress(t *testing.T) {
	d, buf := newTestDisplay()
	d.Progress(&types.Plan{
		Tasks: []types.Task{
			{Name: "a", Kind: types.KindCodeGeneration},
			{Name: "b", Kind: types.KindCodeGeneration},
			{Name: "c", Kind: types.KindMultipleChoice},
		},
		CurrentTask: 1,
	})

	out := buf.String()
	for _, want := range []string{"Tasks: 1/3 complete", SymbolSuccess + " 1. a", SymbolCurrent + " 2. b", SymbolPending + " 3. c"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("a  b\nc", 10); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate("ééééé", 8); got != "éé..." {
		t.Errorf("cut inside a rune: %q", got)
	}
}
