package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/interact"
	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/workspace"
)

var (
	resetAll bool
	resetYes bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the task list so the next start plans again",
	Long: `Clear the task list and progress cursor. The requirement, dataset and
entry script are kept, so 'mle start' goes straight to planning.

With --all the requirement, dataset and entry script name are cleared too.
The entry script itself is never deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		store := state.NewStore(workspace.PlanPath(projectDir))
		plan, err := store.Load()
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		if !resetYes {
			prompter := interact.New(os.Stdin, cmd.OutOrStdout())
			ok, err := prompter.Confirm(context.Background(), "Discard the current plan?")
			if err != nil || !ok {
				d.Warning("Reset cancelled.")
				return nil
			}
		}

		plan.Reset(resetAll)
		if err := store.Save(plan); err != nil {
			return err
		}
		d.Success("Plan cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "also clear requirement, dataset and entry file")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}
