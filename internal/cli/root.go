package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/display"
)

var (
	version  = "0.1.0"
	noColor  bool
	debugLog bool
)

var rootCmd = &cobra.Command{
	Use:   "mle",
	Short: "Resumable assistant that builds ML training scripts",
	Long: `mle turns a natural-language requirement into a working machine learning
training script. It plans the work as a list of tasks, generates the script
task by task, runs it, and repairs it when it fails. Progress is saved after
every task so an interrupted run picks up where it stopped.

Get started:
  mle new <project_name>   Create a project
  mle start                Plan and work through the tasks
  mle status               Show the plan and progress`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug entries to the run log")
	rootCmd.SetVersionTemplate(fmt.Sprintf("mle version %s\n", version))
}

func newDisplay(cmd *cobra.Command) *display.Display {
	return display.NewWithOptions(cmd.OutOrStdout(), noColor)
}
