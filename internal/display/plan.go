package display

import (
	"fmt"
	"strings"

	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/types"
)

// PlanMarkdown renders a task list as a markdown table
func PlanMarkdown(tasks []types.Task) string {
	var sb strings.Builder
	sb.WriteString("| # | Task | Kind | Debug |\n")
	sb.WriteString("|---|------|------|-------|\n")
	for i, t := range tasks {
		debug := "-"
		if t.Kind == types.KindCodeGeneration {
			debug = fmt.Sprintf("%d", t.Debug)
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", i+1, escapeCell(t.Name), t.Kind, debug)
	}
	return sb.String()
}

// maxCellWidth keeps long planner task names from breaking the table
const maxCellWidth = 60

func escapeCell(s string) string {
	return strings.ReplaceAll(Truncate(CleanText(s), maxCellWidth), "|", "\\|")
}

// PlanPreview shows a generated plan before confirmation
func (d *Display) PlanPreview(tasks []types.Task, discarded int) {
	d.Markdown("## Proposed plan\n\n" + PlanMarkdown(tasks))
	if discarded > 0 {
		d.Warning(fmt.Sprintf("%d task descriptor(s) from the planner were discarded", discarded))
	}
}

// Progress prints every task with its position relative to the cursor
func (d *Display) Progress(plan *types.Plan) {
	completed, total := state.Counts(plan)
	fmt.Fprintf(d.out, "Tasks: %d/%d complete\n", completed, total)
	for _, tp := range state.Progress(plan) {
		var symbol string
		switch tp.State {
		case state.TaskDone:
			symbol = d.theme.Success(SymbolSuccess)
		case state.TaskCurrent:
			symbol = d.theme.Info(SymbolCurrent)
		default:
			symbol = d.theme.Dim(SymbolPending)
		}
		fmt.Fprintf(d.out, "  %s %d. %s (%s)\n", symbol, tp.Index+1, tp.Task.Name, d.theme.Kind(string(tp.Task.Kind)))
	}
}
