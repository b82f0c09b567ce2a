package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmaevents/event"
)

func (s *Store) ListCategories(ctx context.Context) ([]event.Category, error) {
	items, err := s.listNamed(ctx, "categories")
	if err != nil {
		return nil, err
	}
	categories := make([]event.Category, 0, len(items))
	for _, item := range items {
		categories = append(categories, event.Category(item))
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, name, description string) (event.Category, error) {
	item, err := s.createNamed(ctx, "categories", name, description)
	if err != nil {
		return event.Category{}, err
	}
	return event.Category(item), nil
}

// DeleteCategory removes a category and unlinks it from events.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteNamed(ctx, "categories", `DELETE FROM event_categories WHERE category_id = ?`, id)
}

func (s *Store) ListEventTypes(ctx context.Context) ([]event.Type, error) {
	items, err := s.listNamed(ctx, "event_types")
	if err != nil {
		return nil, err
	}
	types := make([]event.Type, 0, len(items))
	for _, item := range items {
		types = append(types, event.Type(item))
	}
	return types, nil
}

func (s *Store) CreateEventType(ctx context.Context, name, description string) (event.Type, error) {
	item, err := s.createNamed(ctx, "event_types", name, description)
	if err != nil {
		return event.Type{}, err
	}
	return event.Type(item), nil
}

// DeleteEventType removes a type; events of that type keep existing untyped.
func (s *Store) DeleteEventType(ctx context.Context, id int64) error {
	return s.deleteNamed(ctx, "event_types", `UPDATE events SET event_type_id = NULL WHERE event_type_id = ?`, id)
}

// named mirrors the shared shape of categories and event types.
type named struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

func (s *Store) listNamed(ctx context.Context, table string) ([]named, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM `+table+` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	items := make([]named, 0, 16)
	for rows.Next() {
		var (
			item      named
			createdAt string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return items, nil
}

func (s *Store) createNamed(ctx context.Context, table, name, description string) (named, error) {
	item := named{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if item.Name == "" {
		return named{}, fmt.Errorf("%s name is required", table)
	}

	id, err := s.insertReturningID(ctx, s.db,
		`INSERT INTO `+table+` (name, description, created_at) VALUES (?, ?, ?)`,
		item.Name, item.Description, formatTime(item.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return named{}, ErrDuplicateName
		}
		return named{}, fmt.Errorf("insert into %s: %w", table, err)
	}
	item.ID = id
	return item, nil
}

func (s *Store) deleteNamed(ctx context.Context, table, detach string, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(detach), id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("detach %s %d: %w", table, id, err)
	}
	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if err := requireAffected(result); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
