package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteYes bool

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by pharmaevents.

If no configuration file is active, the command returns an error. The command
asks for confirmation unless --yes is given.`,
	Example: `
  # Delete active config
  pharmaevents config delete

  # Delete config at a custom path without prompting
  pharmaevents --configFile ./custom-pharmaevents.yaml config delete --yes
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if !configDeleteYes {
			confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, configPath)
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("config delete aborted: confirmation was not 'Y'")
			}
		}

		if err := deleteConfigFile(configPath); err != nil {
			return err
		}
		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func deleteConfigFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error deleting configuration file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("configuration path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("error deleting configuration file: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().BoolVarP(&configDeleteYes, "yes", "y", false, "Delete without asking for confirmation")
}
