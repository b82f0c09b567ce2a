package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pharmaevents/config"
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration in $VISUAL or $EDITOR.",
	Long: `Open the pharmaevents configuration in an editor and validate it on exit.

The editor is $VISUAL, then $EDITOR, then vi. A missing config file is first
created from the example. Validation covers the server, database, import,
log and app sections, including role aliases.`,
	Example: `
  # Edit active config
  pharmaevents config edit

  # Edit with a specific editor
  EDITOR="code --wait" pharmaevents config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTargetPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		editor := pickEditor(os.Getenv("VISUAL"), os.Getenv("EDITOR"))
		return editConfig(cmd.OutOrStdout(), editor, path)
	},
}

func editConfig(out io.Writer, editor, path string) error {
	created, err := writeExampleConfig(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Created config file from example: %s\n", path)
	}

	cfg, err := editAndValidateConfig(editor, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Config saved: %s\n", path)
	fmt.Fprintf(out, "Database: %s, Import batch size: %d, Log: %s/%s\n",
		cfg.Database.Driver, cfg.Import.BatchSize, cfg.Log.Level, cfg.Log.Format)
	warnInsecureDefaults(out, *cfg)
	return nil
}

// editAndValidateConfig runs the editor on path and validates the result.
func editAndValidateConfig(editor, path string) (*config.Config, error) {
	command, err := editorCommand(editor, path)
	if err != nil {
		return nil, err
	}
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	if err := command.Run(); err != nil {
		return nil, fmt.Errorf("run editor %q: %w", editor, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edited config: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}

func pickEditor(visual, editor string) string {
	for _, candidate := range []string{visual, editor} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "vi"
}

// editorCommand splits editor into program and flags, then appends path.
func editorCommand(editor, path string) (*exec.Cmd, error) {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], path)...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
