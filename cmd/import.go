package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmaevents/config"
	"pharmaevents/importer"
)

var (
	importInputs           []string
	importFormat           string
	importDBPath           string
	importBatchSize        int
	importPasswordRequired string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import user accounts from Excel or CSV sheets",
	Long: `Read user sheets, validate every row, and create the valid accounts in batches.

Columns are matched by keyword: a header containing "email", "password" or "role".
When --format is omitted, the format is inferred from each input file extension.

Rows with an invalid email, an unknown role, or an email that already exists are
reported and skipped. A batch that fails to store is rolled back as a whole and
every user in it is reported. A missing required column stops the import before
any row is stored.`,
	Example: `
  # Import one Excel sheet
  pharmaevents import -i ./users.xlsx

  # Import a CSV file into an explicit SQLite database
  pharmaevents import -i ./users.csv --format csv --db ./pharmaevents.db

  # Import sheets without a password column using the default password
  pharmaevents import -i ./users.xlsx --password-required off

  # Import with smaller batches
  pharmaevents import -i ./users.xlsx --batch-size 10
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		passwordRequired, err := resolvePasswordRequiredMode(importPasswordRequired, cfg.Import.PasswordRequired)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := openStore(importDBPath, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := importOptionsFromConfig(cfg.Import, logger)
		opts.PasswordRequired = passwordRequired
		if importBatchSize > 0 {
			opts.BatchSize = importBatchSize
		}

		failed := 0
		for _, input := range importInputs {
			report, err := runImport(cmd.Context(), store, input, importFormat, opts, os.Stdout)
			if err != nil {
				return err
			}
			if report.Fatal != "" || report.ErrorCount > 0 {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("import finished with errors in %d of %d files", failed, len(importInputs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to a SQLite database (default: database settings from config)")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 0, "Users stored per transaction (default: import.batch_size from config)")
	importCmd.Flags().StringVar(&importPasswordRequired, "password-required", "auto", "Require a password column: auto|on|off")

	_ = importCmd.MarkFlagRequired("input")
}

func importOptionsFromConfig(cfg config.ImportConfig, logger *zap.Logger) importer.Options {
	opts := importer.DefaultOptions()
	opts.BatchSize = cfg.BatchSize
	opts.PasswordRequired = cfg.PasswordRequired
	opts.DefaultPassword = cfg.DefaultPassword
	opts.MaxDisplayedErrors = cfg.MaxDisplayedErrors
	opts.RoleAliases = cfg.RoleAliasMap()
	opts.Logger = logger
	return opts
}

// runImport imports one file and prints its report. Fatal file problems are
// printed as a report, other failures are returned.
func runImport(ctx context.Context, store importer.UserStore, input, format string, opts importer.Options, out io.Writer) (importer.Report, error) {
	report, err := importer.ImportUsers(ctx, input, format, store, opts)
	if err != nil {
		var fatal *importer.FatalError
		if !errors.As(err, &fatal) {
			return report, fmt.Errorf("import %s: %w", input, err)
		}
		report = importer.FatalReport(fatal)
	}

	fmt.Fprintf(out, "Import of %s completed. Created: %d, Failed: %d\n", input, report.SuccessCount, report.ErrorCount)
	for _, line := range report.Summary() {
		fmt.Fprintln(out, line)
	}
	for _, line := range report.Messages() {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return report, nil
}

func resolvePasswordRequiredMode(mode string, configDefault bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return configDefault, nil
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid password-required mode %q (supported: auto|on|off)", mode)
	}
}
