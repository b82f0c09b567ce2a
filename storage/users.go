package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmaevents/user"
)

// ExistingEmails returns the lower-cased emails of all users.
func (s *Store) ExistingEmails(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM users`)
	if err != nil {
		return nil, fmt.Errorf("query user emails: %w", err)
	}
	defer rows.Close()

	emails := make(map[string]struct{}, 64)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan user email: %w", err)
		}
		emails[strings.ToLower(email)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user emails: %w", err)
	}
	return emails, nil
}

// InsertUsers creates all users in one transaction. Any failure rolls back
// the whole batch.
func (s *Store) InsertUsers(ctx context.Context, users []user.NewUser) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?);`))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, user.NormalizeEmail(u.Email), u.PasswordHash, string(u.Role), now); err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return fmt.Errorf("insert user %s: %w", u.Email, ErrDuplicateEmail)
			}
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateUser inserts one user and returns it with its id.
func (s *Store) CreateUser(ctx context.Context, newUser user.NewUser) (user.User, error) {
	created := user.User{
		Email:        user.NormalizeEmail(newUser.Email),
		PasswordHash: newUser.PasswordHash,
		Role:         newUser.Role,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	id, err := s.insertReturningID(ctx, s.db,
		`INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)`,
		created.Email, created.PasswordHash, string(created.Role), formatTime(created.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, ErrDuplicateEmail
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	created.ID = id
	return created, nil
}

const userColumns = `id, email, password_hash, role, created_at`

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), user.NormalizeEmail(email))
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]user.User, 0, 32)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// DeleteUser removes a user that does not own any event.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	var owned int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM events WHERE user_id = ?`), id).Scan(&owned); err != nil {
		return fmt.Errorf("count user events: %w", err)
	}
	if owned > 0 {
		return ErrUserHasEvents
	}

	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u         user.User
		role      string
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = user.Role(role)

	parsed, err := parseTime(createdAt)
	if err != nil {
		return user.User{}, err
	}
	u.CreatedAt = parsed
	return u, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
