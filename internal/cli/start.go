package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/chain"
	"github.com/daydemir/mle/internal/config"
	"github.com/daydemir/mle/internal/display"
	"github.com/daydemir/mle/internal/generator"
	"github.com/daydemir/mle/internal/interact"
	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/logs"
	"github.com/daydemir/mle/internal/prompts"
	"github.com/daydemir/mle/internal/runner"
	"github.com/daydemir/mle/internal/state"
	"github.com/daydemir/mle/internal/utils"
	"github.com/daydemir/mle/internal/workspace"
)

var (
	startModel    string
	startMarkdown bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Plan the project and work through its tasks",
	Long: `Start or resume the chain for the current project.

On the first run mle asks for your requirement, names the entry script,
detects the dataset and proposes a task list for you to confirm. It then
offers to install dependencies and works through the tasks: code tasks
update the script, run it and repair it on failure; choice tasks ask you to
pick an option that feeds the next code task.

Progress is saved after every task. Press Ctrl+C at any time; the next
'mle start' resumes at the first unfinished task.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		cfg, err := config.Load(projectDir)
		if err != nil {
			return err
		}
		if startModel != "" {
			cfg.LLM.Model = startModel
		}

		level := cfg.Log.Level
		if debugLog {
			level = "debug"
		}
		logger, err := logs.New(workspace.LogsDir(projectDir), level)
		if err != nil {
			return err
		}
		defer logger.Close()

		client, err := llm.New(cfg.LLMOptions())
		if err != nil {
			return err
		}

		interpreter, err := utils.ResolveInterpreter(projectDir, cfg.Run.Interpreter)
		if err != nil {
			return err
		}

		store := state.NewStore(workspace.PlanPath(projectDir))
		plan, err := store.Load()
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		library := prompts.New(projectDir)

		validator := runner.New(projectDir, cfg.Run.ValidationTimeout)
		validator.Output = cmd.OutOrStdout()
		installer := runner.New(projectDir, cfg.Run.InstallTimeout)
		installer.Output = cmd.OutOrStdout()

		c, err := chain.New(chain.Options{
			Store:       store,
			Client:      client,
			Generator:   generator.New(client, library, plan.Language),
			Prompts:     library,
			Prompter:    interact.New(os.Stdin, cmd.OutOrStdout()),
			Validator:   validator,
			Installer:   installer,
			Interpreter: utils.ShellQuote(interpreter),
			Display:     d,
			Observer:    d.NewStreamPrinter(startMarkdown),
			Logger:      logger.Logger,
		})
		if err != nil {
			return err
		}

		d.Banner(
			fmt.Sprintf("Project: %s", plan.ProjectName),
			fmt.Sprintf("Model:   %s (%s)", cfg.LLM.Model, client.Name()),
			fmt.Sprintf("Run:     %s", logger.RunID),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return reportOutcome(d, c.Start(ctx), logger.Path)
	},
}

// reportOutcome prints how the run ended. Only failures become a non-zero
// exit; a failed task also gets the resume hint since progress was saved.
func reportOutcome(d *display.Display, res chain.Result, logPath string) error {
	switch res.Outcome {
	case chain.Completed:
		d.Success(fmt.Sprintf("%d/%d tasks complete", res.Completed, res.Total))
		return nil
	case chain.Interrupted:
		d.Println("The chain has been interrupted.")
		return nil
	case chain.Aborted:
		return nil
	}

	if chain.IsTaskFailure(res.Err) {
		d.Warning(fmt.Sprintf("Stopped at task %d/%d. Fix the script or the plan, then run 'mle start' to resume.", res.Completed+1, res.Total))
	}
	if logPath != "" {
		d.Info("Log", logPath)
	}
	return res.Err
}

func init() {
	startCmd.Flags().StringVarP(&startModel, "model", "m", "", "override llm.model for this run")
	startCmd.Flags().BoolVar(&startMarkdown, "markdown", false, "re-render each finished response as markdown")
	rootCmd.AddCommand(startCmd)
}
