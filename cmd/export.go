package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pharmaevents/config"
	"pharmaevents/event"
	"pharmaevents/output"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportDBPath string
)

type eventLister interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events to CSV/Excel",
	Long: `Export stored events.

Modes:
- raw: export each event with its requester, schedule, status, phase and categories
- monthly: export per-month aggregates (events, online/offline, status counts, attendees)

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw rows to CSV
  pharmaevents export --mode raw --output ./events.csv

  # Export raw rows to Excel from an explicit SQLite database
  pharmaevents export --mode raw --db ./pharmaevents.db --output ./events.xlsx

  # Export monthly summary to CSV
  pharmaevents export --mode monthly --output ./monthly-summary.csv

  # Force Excel format independent of extension
  pharmaevents export --mode monthly --format excel --output ./monthly-summary.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openStore(exportDBPath, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		return runExport(cmd.Context(), store, exportOutput, exportMode, exportFormat, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|monthly")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to a SQLite database (default: database settings from config)")

	_ = exportCmd.MarkFlagRequired("output")
}

func runExport(ctx context.Context, store eventLister, path, mode, format string, out io.Writer) error {
	if strings.TrimSpace(format) == "" {
		format = detectExportFormat(path)
	}

	events, err := store.ListEvents(ctx)
	if err != nil {
		return err
	}

	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "raw":
		if err := output.WriteFile(path, format, events); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(events), format, path)
	case "monthly":
		summaries := output.BuildMonthlySummaries(events, time.Local)
		if err := writeMonthlyFile(path, format, summaries); err != nil {
			return err
		}
		fmt.Fprintf(out, "Export completed. Months: %d, Mode: monthly, Format: %s, File: %s\n", len(summaries), format, path)
	default:
		return fmt.Errorf("unsupported export mode: %s (supported: raw, monthly)", mode)
	}
	return nil
}

func writeMonthlyFile(path, format string, summaries []output.MonthlySummary) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := output.WriteMonthlySummaries(file, format, summaries); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	return nil
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}
