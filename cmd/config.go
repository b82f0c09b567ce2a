package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pharmaevents configuration file values.",
	Long: `Create, edit, display, and delete the pharmaevents configuration file.

The configuration stores application-wide values:
- server.port / session_secret / upload_dir / cors_origins / login_rate_limit
- database.driver (sqlite|postgres) and database.dsn
- import.batch_size / password_required / default_password / role_aliases
- log.level and log.format
- app.name / theme_color / admin_email / admin_password`,
	Example: `
  # Create default config in $HOME/.pharmaevents.yaml
  pharmaevents config create

  # Show active config and source file
  pharmaevents config show

  # Open active config in editor (creates example if missing)
  pharmaevents config edit

  # Delete active config file
  pharmaevents config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
