package config

import (
	"bytes"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"pharmaevents/user"
	"strings"
)

const (
	KeyServerPort            = "server.port"
	KeyServerSessionSecret   = "server.session_secret"
	KeyServerSecureCookies   = "server.secure_cookies"
	KeyServerCORSOrigins     = "server.cors_origins"
	KeyServerLoginRateLimit  = "server.login_rate_limit"
	KeyServerUploadDir       = "server.upload_dir"
	KeyServerMaxUploadMB     = "server.max_upload_mb"
	KeyDatabaseDriver        = "database.driver"
	KeyDatabaseDSN           = "database.dsn"
	KeyImportBatchSize       = "import.batch_size"
	KeyImportPasswordReq     = "import.password_required"
	KeyImportDefaultPassword = "import.default_password"
	KeyImportMaxErrors       = "import.max_displayed_errors"
	KeyImportRoleAliases     = "import.role_aliases"
	KeyLogLevel              = "log.level"
	KeyLogFormat             = "log.format"
	KeyAppName               = "app.name"
	KeyAppThemeColor         = "app.theme_color"
	KeyAppAdminEmail         = "app.admin_email"
	KeyAppAdminPassword      = "app.admin_password"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Import   ImportConfig   `mapstructure:"import"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"min=1,max=65535"`
	SessionSecret  string   `mapstructure:"session_secret" validate:"required,min=16"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
	CORSOrigins    []string `mapstructure:"cors_origins" validate:"dive,url"`
	LoginRateLimit int      `mapstructure:"login_rate_limit" validate:"min=0"`
	UploadDir      string   `mapstructure:"upload_dir" validate:"required"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb" validate:"min=1"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

type ImportConfig struct {
	BatchSize          int         `mapstructure:"batch_size" validate:"min=1"`
	PasswordRequired   bool        `mapstructure:"password_required"`
	DefaultPassword    string      `mapstructure:"default_password"`
	MaxDisplayedErrors int         `mapstructure:"max_displayed_errors" validate:"min=1"`
	RoleAliases        []RoleAlias `mapstructure:"role_aliases"`
}

// RoleAlias maps an extra spreadsheet label onto a canonical role.
type RoleAlias struct {
	Label string `mapstructure:"label"`
	Role  string `mapstructure:"role"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type AppConfig struct {
	Name          string `mapstructure:"name" validate:"required"`
	ThemeColor    string `mapstructure:"theme_color" validate:"hexcolor"`
	AdminEmail    string `mapstructure:"admin_email" validate:"required,email"`
	AdminPassword string `mapstructure:"admin_password" validate:"required"`
}

// RoleAliasMap returns the configured aliases keyed by label.
func (c ImportConfig) RoleAliasMap() map[string]user.Role {
	if len(c.RoleAliases) == 0 {
		return nil
	}
	out := make(map[string]user.Role, len(c.RoleAliases))
	for _, alias := range c.RoleAliases {
		out[alias.Label] = user.Role(strings.ToLower(strings.TrimSpace(alias.Role)))
	}
	return out
}

// Shipped values that must be replaced before a deployment.
const (
	DefaultSessionSecret  = "dev-secret-key-for-pharmaevents-2025"
	DefaultAdminPassword  = "admin123"
	DefaultImportPassword = "ChangeMe123!"
)

// InsecureDefaults names the keys that still carry a shipped secret.
func (c Config) InsecureDefaults() []string {
	var keys []string
	if c.Server.SessionSecret == DefaultSessionSecret {
		keys = append(keys, KeyServerSessionSecret)
	}
	if c.App.AdminPassword == DefaultAdminPassword {
		keys = append(keys, KeyAppAdminPassword)
	}
	if !c.Import.PasswordRequired && c.Import.DefaultPassword == DefaultImportPassword {
		keys = append(keys, KeyImportDefaultPassword)
	}
	return keys
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# pharmaevents configuration
server:
  port: 5000
  session_secret: "dev-secret-key-for-pharmaevents-2025"
  secure_cookies: false
  cors_origins: []
  login_rate_limit: 10
  upload_dir: "./uploads"
  max_upload_mb: 32

database:
  driver: "sqlite"
  dsn: "./pharmaevents.db"

import:
  batch_size: 50
  password_required: true
  default_password: "ChangeMe123!"
  max_displayed_errors: 10
  role_aliases: []

log:
  level: "info"
  format: "console"

app:
  name: "PharmaEvents"
  theme_color: "#0f6e84"
  admin_email: "admin@test.com"
  admin_password: "admin123"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Database.Driver = resolveDriver(cfg.Database)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateImport(cfg.Import); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerPort, 5000)
	v.SetDefault(KeyServerSessionSecret, DefaultSessionSecret)
	v.SetDefault(KeyServerSecureCookies, false)
	v.SetDefault(KeyServerCORSOrigins, []string{})
	v.SetDefault(KeyServerLoginRateLimit, 10)
	v.SetDefault(KeyServerUploadDir, "./uploads")
	v.SetDefault(KeyServerMaxUploadMB, 32)
	v.SetDefault(KeyDatabaseDriver, "sqlite")
	v.SetDefault(KeyDatabaseDSN, "./pharmaevents.db")
	v.SetDefault(KeyImportBatchSize, 50)
	v.SetDefault(KeyImportPasswordReq, true)
	v.SetDefault(KeyImportDefaultPassword, DefaultImportPassword)
	v.SetDefault(KeyImportMaxErrors, 10)
	v.SetDefault(KeyImportRoleAliases, []map[string]any{})
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyAppName, "PharmaEvents")
	v.SetDefault(KeyAppThemeColor, "#0f6e84")
	v.SetDefault(KeyAppAdminEmail, "admin@test.com")
	v.SetDefault(KeyAppAdminPassword, DefaultAdminPassword)

	_ = v.BindEnv(KeyDatabaseDSN, "DATABASE_URL")
	_ = v.BindEnv(KeyServerSessionSecret, "SESSION_SECRET")
}

func validateImport(cfg ImportConfig) error {
	if !cfg.PasswordRequired && strings.TrimSpace(cfg.DefaultPassword) == "" {
		return fmt.Errorf("validation failed: import.default_password is required when import.password_required is false")
	}

	seen := make(map[string]struct{}, len(cfg.RoleAliases))
	for i, alias := range cfg.RoleAliases {
		label := strings.TrimSpace(alias.Label)
		if label == "" {
			return fmt.Errorf("validation failed: import.role_aliases[%d].label is required", i)
		}
		key := strings.ToLower(label)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate role alias %q", label)
		}
		seen[key] = struct{}{}

		role := user.Role(strings.ToLower(strings.TrimSpace(alias.Role)))
		if !role.Valid() {
			return fmt.Errorf(
				"validation failed: import.role_aliases[%d].role %q is not supported (valid: %s)",
				i,
				alias.Role,
				user.RoleNames(),
			)
		}
	}
	return nil
}

// resolveDriver switches to postgres when the DSN is a PostgreSQL URL, so a
// DATABASE_URL from the environment works without touching database.driver.
func resolveDriver(cfg DatabaseConfig) string {
	dsn := strings.ToLower(strings.TrimSpace(cfg.DSN))
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return strings.ToLower(strings.TrimSpace(cfg.Driver))
}
