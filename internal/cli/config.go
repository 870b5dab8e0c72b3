package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/daydemir/mle/internal/workspace"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or modify configuration",
	Long: `View or modify the project configuration in .mle/config.yaml.

Examples:
  mle config                     Show all config
  mle config llm.model           Get a specific value
  mle config llm.model gpt-4o    Set a value`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := workspace.Find()
		if err != nil {
			return err
		}

		configPath := workspace.ConfigPath(projectDir)

		switch len(args) {
		case 0:
			return showConfig(cmd, configPath)
		case 1:
			return getConfigValue(cmd, configPath, args[0])
		case 2:
			return setConfigValue(cmd, configPath, args[0], args[1])
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(cmd *cobra.Command, configPath string) error {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(content))
	return nil
}

func readConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return v, nil
}

func getConfigValue(cmd *cobra.Command, configPath, key string) error {
	v, err := readConfig(configPath)
	if err != nil {
		return err
	}

	if !v.IsSet(key) {
		return fmt.Errorf("key not found: %s", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func setConfigValue(cmd *cobra.Command, configPath, key, value string) error {
	v, err := readConfig(configPath)
	if err != nil {
		return err
	}

	v.Set(key, value)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	shown := value
	if key == "llm.api_key" && len(value) > 4 {
		shown = value[:4] + "..."
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, shown)
	return nil
}
