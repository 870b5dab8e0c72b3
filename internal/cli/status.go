package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/workspace"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the plan and progress",
	Long: `Show the current project's requirement, dataset, entry script and the
task list with the position of the cursor:

  ✓ done   → next   ○ pending`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		plan, err := state.NewStore(workspace.PlanPath(projectDir)).Load()
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		theme := d.Theme()
		orNone := func(s string) string {
			if s == "" {
				return theme.Dim("(not set)")
			}
			return s
		}

		d.Println(fmt.Sprintf("%s - %s", theme.Bold(plan.ProjectName), plan.ProjectPath))
		d.Println("")
		d.Println(fmt.Sprintf("Language:    %s", plan.Language))
		d.Println(fmt.Sprintf("Requirement: %s", orNone(plan.Requirement)))
		d.Println(fmt.Sprintf("Dataset:     %s", orNone(plan.Dataset)))
		d.Println(fmt.Sprintf("Entry file:  %s", orNone(plan.TrainingEntryFile)))
		d.Println("")

		if !plan.HasTasks() {
			d.Println("No plan yet.")
			d.Println(fmt.Sprintf("  Run: %s", theme.Info("mle start")))
			return nil
		}

		completed, total := state.Counts(plan)
		barWidth := 20
		filled := barWidth * completed / total
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		d.Println(fmt.Sprintf("Progress: [%s] %d%%", bar, 100*completed/total))
		d.Progress(plan)

		d.Println("")
		if plan.IsComplete() {
			d.Println(fmt.Sprintf("%s All tasks complete. Run %s to plan again.", theme.Success("✓"), theme.Info("mle reset")))
		} else {
			d.Println(fmt.Sprintf("Next: %s  (run %s)", plan.Current().Name, theme.Info("mle start")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
