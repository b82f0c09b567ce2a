package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pharmaevents/output"
)

var templateOutput string

var templateCmd = &cobra.Command{
	Use:       "template users|attendees",
	Short:     "Write an example import sheet",
	Long:      `Write the users workbook used by bulk user upload, or the attendees CSV expected by event creation.`,
	ValidArgs: []string{"users", "attendees"},
	Args:      cobra.ExactArgs(1),
	Example: `
  # Users workbook
  pharmaevents template users -o ./users_template.xlsx

  # Attendees CSV
  pharmaevents template attendees -o ./attendees_template.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := writeTemplateFile(args[0], templateOutput)
		if err != nil {
			return err
		}
		fmt.Printf("Template written: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file path (default: the template's download name)")
}

// writeTemplateFile writes the named template and returns the path used.
func writeTemplateFile(kind, path string) (string, error) {
	var (
		write       func(io.Writer) error
		defaultName string
	)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "users":
		write, defaultName = output.WriteUsersTemplate, output.UsersTemplateName
	case "attendees":
		write, defaultName = output.WriteAttendeesTemplate, output.AttendeesTemplateName
	default:
		return "", fmt.Errorf("unknown template %q (supported: users, attendees)", kind)
	}
	if strings.TrimSpace(path) == "" {
		path = defaultName
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create template %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close template %s: %w", path, err)
	}
	return path, nil
}
