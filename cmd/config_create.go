package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pharmaevents/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write the example configuration file.",
	Long: `Write the example pharmaevents configuration to the active config path,
or to $HOME/.pharmaevents.yaml when none is active.

An existing file is never overwritten. Settings that still hold a shipped
secret (session key, admin password) are listed so they can be changed
before "pharmaevents serve".`,
	Example: `
  # Create default config at $HOME/.pharmaevents.yaml
  pharmaevents config create

  # Create a config next to the project
  pharmaevents --configFile ./.pharmaevents.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		return createConfig(cmd.OutOrStdout(), path)
	},
}

// createConfig writes the example config to path unless a file is there.
func createConfig(out io.Writer, path string) error {
	created, err := writeExampleConfig(path)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(out, "Config file already exists at: %s\n", path)
		return nil
	}

	fmt.Fprintf(out, "Created config file: %s\n", path)
	cfg, err := config.ValidateYAMLContent([]byte(config.ExampleYAML()))
	if err != nil {
		return fmt.Errorf("example config is invalid: %w", err)
	}
	warnInsecureDefaults(out, *cfg)
	return nil
}

// configTargetPath picks --configFile, then the loaded config, then the home default.
func configTargetPath(flagPath, activePath string) (string, error) {
	if strings.TrimSpace(flagPath) != "" {
		return flagPath, nil
	}
	if strings.TrimSpace(activePath) != "" {
		return activePath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pharmaevents.yaml"), nil
}

// writeExampleConfig reports false when path already exists.
func writeExampleConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	// Holds the session key and admin password.
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("write example config: %w", err)
	}
	return true, nil
}

func warnInsecureDefaults(out io.Writer, cfg config.Config) {
	keys := cfg.InsecureDefaults()
	if len(keys) == 0 {
		return
	}
	fmt.Fprintln(out, "Warning: these settings still use shipped values:")
	for _, key := range keys {
		fmt.Fprintf(out, "  - %s\n", key)
	}
	fmt.Fprintln(out, "Change them with: pharmaevents config edit")
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
