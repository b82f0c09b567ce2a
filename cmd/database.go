package cmd

import (
	"strings"

	"pharmaevents/config"
	"pharmaevents/storage"
)

// resolveDatabase picks the driver and DSN for a command. An explicit --db
// path always means a SQLite file; otherwise the configured database is used.
func resolveDatabase(dbFlag string, cfg config.DatabaseConfig) (string, string) {
	if path := strings.TrimSpace(dbFlag); path != "" {
		return storage.DriverSQLite, path
	}
	return cfg.Driver, cfg.DSN
}

func openStore(dbFlag string, cfg config.DatabaseConfig) (*storage.Store, error) {
	driver, dsn := resolveDatabase(dbFlag, cfg)
	return storage.Open(driver, dsn)
}
