package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmaevents/config"
	"pharmaevents/storage"
	"pharmaevents/user"
	"pharmaevents/web"
)

var (
	servePort   int
	serveDBPath string
	serveOpen   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PharmaEvents web application",
	Long: `Start the HTTP server with the dashboard, event pages, settings and JSON API.

On start the database schema is created, and an empty database is seeded with
the configured admin account, the default categories and the default event types.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	Example: `
  # Start with the configured port and database
  pharmaevents serve

  # Start on a custom port with an explicit SQLite file
  pharmaevents serve --port 9090 --db ./pharmaevents.db

  # Start and open the browser
  pharmaevents serve --open
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := openStore(serveDBPath, cfg.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := seedStore(cmd.Context(), store, *cfg, logger); err != nil {
			return err
		}

		port := resolveServePort(servePort, cfg.Server.Port)
		cfg.Server.Port = port
		handler, err := web.NewServer(store, *cfg, logger)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", port)
		logger.Info("server listening", zap.String("url", listenURL), zap.String("driver", store.Driver()))
		fmt.Printf("Listening on %s\n", listenURL)
		if serveOpen {
			if openErr := openURLInBrowser(listenURL); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: server.port from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to a SQLite database (default: database settings from config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the browser after the server starts")
}

func resolveServePort(flagPort, configPort int) int {
	if flagPort > 0 {
		return flagPort
	}
	if configPort > 0 {
		return configPort
	}
	return 5000
}

// seedStore fills an empty database with the admin account and default taxonomies.
func seedStore(ctx context.Context, store *storage.Store, cfg config.Config, logger *zap.Logger) error {
	hash, err := user.HashPassword(cfg.App.AdminPassword)
	if err != nil {
		return err
	}
	result, err := store.Seed(ctx, storage.SeedOptions{
		AdminEmail:        user.NormalizeEmail(cfg.App.AdminEmail),
		AdminPasswordHash: hash,
		AppName:           cfg.App.Name,
		ThemeColor:        cfg.App.ThemeColor,
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	if result.AdminCreated {
		logger.Info("admin account created", zap.String("email", user.NormalizeEmail(cfg.App.AdminEmail)))
	}
	if result.CategoriesCreated > 0 || result.TypesCreated > 0 {
		logger.Info("default taxonomies created",
			zap.Int("categories", result.CategoriesCreated),
			zap.Int("event_types", result.TypesCreated),
		)
	}
	return nil
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
