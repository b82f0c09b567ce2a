package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pharmaevents/config"
	"pharmaevents/storage"
)

var (
	deleteDBPath string
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the complete SQLite database file",
	Long: `Destructive database cleanup command.

This command deletes the complete SQLite database file with all users, events,
categories and settings. PostgreSQL databases are never touched.
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the configured SQLite file (requires interactive confirmation)
  pharmaevents delete

  # Delete an explicit SQLite file
  pharmaevents delete --db ./pharmaevents.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		path, err := resolveDeletePath(deleteDBPath, cfg.Database)
		if err != nil {
			return err
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, path)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if err := removeDatabaseFile(path); err != nil {
			return err
		}
		fmt.Printf("Deleted database file: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "", "Path to a SQLite database (default: database.dsn when database.driver is sqlite)")
}

// resolveDeletePath returns the SQLite file to delete.
func resolveDeletePath(dbFlag string, cfg config.DatabaseConfig) (string, error) {
	driver, dsn := resolveDatabase(dbFlag, cfg)
	if driver != storage.DriverSQLite {
		return "", fmt.Errorf("delete only supports sqlite databases, configured driver is %q", driver)
	}
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return "", fmt.Errorf("database %q is not a plain SQLite file path", dsn)
	}
	return dsn, nil
}

func confirmDeletePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %q permanently? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
