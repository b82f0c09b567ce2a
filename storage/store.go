package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateName  = errors.New("name already exists")
	ErrUserHasEvents  = errors.New("user still owns events")
)

// Store persists users, events, taxonomies and settings. Queries are written
// with ? placeholders and rebound for PostgreSQL.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and creates missing tables.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func OpenSQLite(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "_pragma=") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	return newStore(db, DriverSQLite)
}

func OpenPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return newStore(db, DriverPostgres)
}

func newStore(db *sql.DB, driver string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	store := &Store{db: db, driver: driver}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Driver() string {
	return s.driver
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	for _, statement := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, strings.ReplaceAll(statement, "{{id}}", idColumn)); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{`
CREATE TABLE IF NOT EXISTS users (
	id {{id}},
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'medical_rep',
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS categories (
	id {{id}},
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS event_types (
	id {{id}},
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS events (
	id {{id}},
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	event_type_id BIGINT NULL REFERENCES event_types(id),
	is_online BOOLEAN NOT NULL DEFAULT FALSE,
	start_datetime TEXT NOT NULL,
	end_datetime TEXT NULL,
	registration_deadline TEXT NULL,
	venue TEXT NOT NULL DEFAULT '',
	governorate TEXT NOT NULL DEFAULT '',
	image_file TEXT NOT NULL DEFAULT '',
	attendees_file TEXT NOT NULL DEFAULT '',
	attendees_count INTEGER NOT NULL DEFAULT 0,
	user_id BIGINT NOT NULL REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS event_categories (
	event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (event_id, category_id)
);`, `
CREATE TABLE IF NOT EXISTS app_settings (
	setting_key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`,
}

// rebind converts ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", value, err)
	}
	return parsed, nil
}

func parseNullTime(value sql.NullString) (time.Time, error) {
	if !value.Valid {
		return time.Time{}, nil
	}
	return parseTime(value.String)
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func (s *Store) insertReturningID(ctx context.Context, exec execQueryer, query string, args ...any) (int64, error) {
	var id int64
	if err := exec.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

type execQueryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
