package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pharmaevents/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Secrets are masked.`,
	Example: `
  # Show active configuration
  pharmaevents config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults and environment overrides.")
		}
		printConfig(os.Stdout, *cfg)
	},
}

func printConfig(out io.Writer, cfg config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "server.port: %d\n", cfg.Server.Port)
	fmt.Fprintf(out, "server.session_secret: %s\n", maskSecret(cfg.Server.SessionSecret))
	fmt.Fprintf(out, "server.secure_cookies: %t\n", cfg.Server.SecureCookies)
	fmt.Fprintf(out, "server.cors_origins: %s\n", strings.Join(cfg.Server.CORSOrigins, ", "))
	fmt.Fprintf(out, "server.login_rate_limit: %d\n", cfg.Server.LoginRateLimit)
	fmt.Fprintf(out, "server.upload_dir: %s\n", cfg.Server.UploadDir)
	fmt.Fprintf(out, "server.max_upload_mb: %d\n", cfg.Server.MaxUploadMB)
	fmt.Fprintf(out, "database.driver: %s\n", cfg.Database.Driver)
	fmt.Fprintf(out, "database.dsn: %s\n", redactDSN(cfg.Database.DSN))
	fmt.Fprintf(out, "import.batch_size: %d\n", cfg.Import.BatchSize)
	fmt.Fprintf(out, "import.password_required: %t\n", cfg.Import.PasswordRequired)
	fmt.Fprintf(out, "import.default_password: %s\n", maskSecret(cfg.Import.DefaultPassword))
	fmt.Fprintf(out, "import.max_displayed_errors: %d\n", cfg.Import.MaxDisplayedErrors)
	fmt.Fprintf(out, "import.role_aliases: %d\n", len(cfg.Import.RoleAliases))
	for i, alias := range cfg.Import.RoleAliases {
		fmt.Fprintf(out, "import.role_aliases[%d]: %s -> %s\n", i, alias.Label, alias.Role)
	}
	fmt.Fprintf(out, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "log.format: %s\n", cfg.Log.Format)
	fmt.Fprintf(out, "app.name: %s\n", cfg.App.Name)
	fmt.Fprintf(out, "app.theme_color: %s\n", cfg.App.ThemeColor)
	fmt.Fprintf(out, "app.admin_email: %s\n", cfg.App.AdminEmail)
	fmt.Fprintf(out, "app.admin_password: %s\n", maskSecret(cfg.App.AdminPassword))
}

func maskSecret(value string) string {
	if value == "" {
		return "(empty)"
	}
	return "********"
}

// redactDSN hides the password of a URL-style DSN.
func redactDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.User == nil {
		return dsn
	}
	return parsed.Redacted()
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
