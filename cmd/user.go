package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"pharmaevents/config"
	"pharmaevents/storage"
	"pharmaevents/user"
)

var (
	userDBPath   string
	userEmail    string
	userRole     string
	userPassword string
)

type userStore interface {
	CreateUser(ctx context.Context, newUser user.NewUser) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts.",
	Long: `Create and list user accounts without going through the web application.

Roles: admin, event_manager, medical_rep. Labels such as "Event Manager" or
configured import.role_aliases are accepted too.`,
	Example: `
  # Add an event manager
  pharmaevents user add --email jane@example.com --role "Event Manager" --password Secret123

  # List all accounts
  pharmaevents user list
`,
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create one user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		store, err := openStore(userDBPath, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		created, err := addUser(cmd.Context(), store, userEmail, userRole, userPassword, cfg.Import.RoleAliasMap(), user.HashPassword)
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s)\n", created.Email, created.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		store, err := openStore(userDBPath, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		return listUsers(cmd.Context(), store, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)

	userCmd.PersistentFlags().StringVar(&userDBPath, "db", "", "Path to a SQLite database (default: database settings from config)")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address of the new account")
	userAddCmd.Flags().StringVar(&userRole, "role", "", "Role of the new account")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "Plain password; stored as a bcrypt hash")

	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("role")
	_ = userAddCmd.MarkFlagRequired("password")
}

func addUser(ctx context.Context, store userStore, email, role, password string, aliases map[string]user.Role, hash func(string) (string, error)) (user.User, error) {
	email = user.NormalizeEmail(email)
	if err := validator.New().Var(email, "required,email"); err != nil {
		return user.User{}, fmt.Errorf("invalid email %q", email)
	}
	canonical, err := user.NormalizeRole(role, aliases)
	if err != nil {
		return user.User{}, fmt.Errorf("invalid role %q (valid: %s)", role, user.RoleNames())
	}
	if strings.TrimSpace(password) == "" {
		return user.User{}, errors.New("password is required")
	}

	hashed, err := hash(password)
	if err != nil {
		return user.User{}, err
	}
	created, err := store.CreateUser(ctx, user.NewUser{Email: email, PasswordHash: hashed, Role: canonical})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return user.User{}, fmt.Errorf("user with email %q already exists", email)
	}
	if err != nil {
		return user.User{}, err
	}
	return created, nil
}

func listUsers(ctx context.Context, store userStore, out io.Writer) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Role.Label(), u.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write user list: %w", err)
	}
	fmt.Fprintf(out, "Users: %d\n", len(users))
	return nil
}
