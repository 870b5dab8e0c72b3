package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/logs"
	"github.com/daydemir/mle/internal/workspace"
)

var logsListAll bool

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect the run logs",
	Long: `Inspect the structured logs written by 'mle start' to .mle/logs/.

Every run gets an id; each entry records a step of the chain (requirement,
planning, every validation run and repair round, task results).

Subcommands:
  list     Show recorded runs
  show     Show the entries of one run (default: latest)`,
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		reader := logs.NewReader(workspace.LogsDir(projectDir))
		runs, err := reader.Runs()
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		theme := d.Theme()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Logs folder: %s\n\n", theme.Info(reader.Dir()))

		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs found.")
			return nil
		}

		fmt.Fprintf(out, "Found %d run(s):\n\n", len(runs))

		// Show most recent runs (or all if --all flag)
		showCount := 10
		if logsListAll {
			showCount = len(runs)
		}

		startIdx := len(runs) - showCount
		if startIdx < 0 {
			startIdx = 0
		}

		for i := startIdx; i < len(runs); i++ {
			r := runs[i]
			shortID := r.ID
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			errNote := ""
			if r.Errors > 0 {
				errNote = theme.Error(fmt.Sprintf("  %d error(s)", r.Errors))
			}
			fmt.Fprintf(out, "  %s  %s  %s%s\n",
				r.StartTime.Local().Format("2006-01-02 15:04"),
				theme.Info(shortID),
				theme.Dim(fmt.Sprintf("%d entries, %s", r.Entries, r.EndTime.Sub(r.StartTime).Round(time.Second))),
				errNote)
		}

		if !logsListAll && len(runs) > showCount {
			fmt.Fprintf(out, "\n  ... and %d more (use --all to show all)\n", len(runs)-showCount)
		}

		return nil
	},
}

var logsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the entries of a run",
	Long:  `Show every entry of a run. The id may be abbreviated to any unique prefix.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		reader := logs.NewReader(workspace.LogsDir(projectDir))

		var runID string
		if len(args) == 1 {
			runID = args[0]
		} else {
			latest, err := reader.Latest()
			if err != nil {
				return err
			}
			runID = latest.ID
		}

		entries, err := reader.Entries(runID)
		if err != nil {
			return err
		}

		newDisplay(cmd).Markdown(logs.Markdown(entries))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsShowCmd)

	logsListCmd.Flags().BoolVarP(&logsListAll, "all", "a", false, "Show all runs")
}
