package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daydemir/mle/internal/workspace"
)

var (
	newForce    bool
	newLanguage string
)

var newCmd = &cobra.Command{
	Use:   "new <project_name>",
	Short: "Create a new project",
	Long: `Create a new project in ./<project_name>.

Creates .mle/ folder with:
  - config.yaml   Model backend and run settings
  - project.yml   The plan record (requirement, dataset, tasks, progress)
  - prompts/      Customizable prompt templates
  - logs/         Run logs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		projectDir, err := workspace.Init(workspace.InitOptions{
			ParentDir: cwd,
			Name:      args[0],
			Language:  newLanguage,
			Force:     newForce,
		})
		if err != nil {
			return err
		}

		d := newDisplay(cmd)
		d.Success(fmt.Sprintf("Project created at %s", projectDir))
		d.Println("")
		d.Println("Next steps:")
		d.Println(fmt.Sprintf("  cd %s", args[0]))
		d.Println("  mle config llm.api_key <key>   (or export OPENAI_API_KEY)")
		d.Println("  mle start")
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "overwrite an existing project")
	newCmd.Flags().StringVarP(&newLanguage, "language", "l", "python", "primary language of the generated script")
	rootCmd.AddCommand(newCmd)
}
