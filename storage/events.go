package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pharmaevents/event"
)

const eventSelect = `
SELECT
	e.id,
	e.name,
	e.description,
	COALESCE(e.event_type_id, 0),
	COALESCE(t.name, ''),
	e.is_online,
	e.start_datetime,
	e.end_datetime,
	e.registration_deadline,
	e.venue,
	e.governorate,
	e.image_file,
	e.attendees_file,
	e.attendees_count,
	e.user_id,
	COALESCE(u.email, ''),
	e.status,
	e.created_at
FROM events e
LEFT JOIN event_types t ON t.id = e.event_type_id
LEFT JOIN users u ON u.id = e.user_id`

// CreateEvent stores an event with its category links and returns its id.
func (s *Store) CreateEvent(ctx context.Context, e event.Event, categoryIDs []int64) (int64, error) {
	if e.Status == "" {
		e.Status = event.StatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	id, err := s.insertReturningID(ctx, tx, `
INSERT INTO events (
	name,
	description,
	event_type_id,
	is_online,
	start_datetime,
	end_datetime,
	registration_deadline,
	venue,
	governorate,
	image_file,
	attendees_file,
	attendees_count,
	user_id,
	status,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name,
		e.Description,
		nullableID(e.EventTypeID),
		e.IsOnline,
		formatTime(e.StartDateTime),
		nullableTime(e.EndDateTime),
		nullableTime(e.RegistrationDeadline),
		e.Venue,
		e.Governorate,
		e.ImageFile,
		e.AttendeesFile,
		e.AttendeesCount,
		e.UserID,
		string(e.Status),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert event: %w", err)
	}

	if err := s.linkCategories(ctx, tx, id, categoryIDs); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// UpdateEvent overwrites the editable fields of an event. A nil categoryIDs
// keeps the current links; an empty slice clears them.
func (s *Store) UpdateEvent(ctx context.Context, e event.Event, categoryIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(`
UPDATE events SET
	name = ?,
	description = ?,
	event_type_id = ?,
	is_online = ?,
	start_datetime = ?,
	end_datetime = ?,
	registration_deadline = ?,
	venue = ?,
	governorate = ?,
	image_file = ?,
	attendees_file = ?,
	attendees_count = ?
WHERE id = ?`),
		e.Name,
		e.Description,
		nullableID(e.EventTypeID),
		e.IsOnline,
		formatTime(e.StartDateTime),
		nullableTime(e.EndDateTime),
		nullableTime(e.RegistrationDeadline),
		e.Venue,
		e.Governorate,
		e.ImageFile,
		e.AttendeesFile,
		e.AttendeesCount,
		e.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	if err := requireAffected(result); err != nil {
		_ = tx.Rollback()
		return err
	}

	if categoryIDs != nil {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM event_categories WHERE event_id = ?`), e.ID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear event categories: %w", err)
		}
		if err := s.linkCategories(ctx, tx, e.ID, categoryIDs); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) linkCategories(ctx context.Context, tx *sql.Tx, eventID int64, categoryIDs []int64) error {
	seen := make(map[int64]struct{}, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		if categoryID <= 0 {
			continue
		}
		if _, ok := seen[categoryID]; ok {
			continue
		}
		seen[categoryID] = struct{}{}

		if _, err := tx.ExecContext(ctx, s.rebind(`
INSERT INTO event_categories (event_id, category_id) VALUES (?, ?)`), eventID, categoryID); err != nil {
			return fmt.Errorf("link category %d: %w", categoryID, err)
		}
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(eventSelect+` WHERE e.id = ?`), id)
	e, err := scanEvent(row)
	if err != nil {
		return event.Event{}, err
	}

	categories, err := s.eventCategories(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	e.Categories = categories[id]
	return e, nil
}

// ListEvents returns all events, latest start first.
func (s *Store) ListEvents(ctx context.Context) ([]event.Event, error) {
	return s.queryEvents(ctx, eventSelect+` ORDER BY e.start_datetime DESC, e.id DESC`)
}

// RecentEvents returns the most recently created events.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]event.Event, error) {
	return s.queryEvents(ctx, eventSelect+` ORDER BY e.created_at DESC, e.id DESC LIMIT ?`, limit)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	events := make([]event.Event, 0, 64)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	_ = rows.Close()

	categories, err := s.eventCategories(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Categories = categories[events[i].ID]
	}
	return events, nil
}

// eventCategories loads category links for one event, or for all events
// when eventID is 0.
func (s *Store) eventCategories(ctx context.Context, eventID int64) (map[int64][]event.Category, error) {
	query := `
SELECT ec.event_id, c.id, c.name, c.description, c.created_at
FROM event_categories ec
JOIN categories c ON c.id = ec.category_id`
	args := []any{}
	if eventID > 0 {
		query += ` WHERE ec.event_id = ?`
		args = append(args, eventID)
	}
	query += ` ORDER BY c.name ASC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query event categories: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]event.Category)
	for rows.Next() {
		var (
			linkedEventID int64
			category      event.Category
			createdAt     string
		)
		if err := rows.Scan(&linkedEventID, &category.ID, &category.Name, &category.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event category: %w", err)
		}
		if category.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out[linkedEventID] = append(out[linkedEventID], category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event categories: %w", err)
	}
	return out, nil
}

func (s *Store) SetEventStatus(ctx context.Context, id int64, status event.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid event status %q", status)
	}
	result, err := s.db.ExecContext(ctx, s.rebind(`UPDATE events SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	return requireAffected(result)
}

// DeleteEvent removes an event and its category links.
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM event_categories WHERE event_id = ?`), id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete event categories: %w", err)
	}
	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM events WHERE id = ?`), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete event %d: %w", id, err)
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

// CategoryCounts returns every category with its number of events.
func (s *Store) CategoryCounts(ctx context.Context) ([]event.NameCount, error) {
	return s.nameCounts(ctx, `
SELECT c.name, COUNT(ec.event_id) AS event_count
FROM categories c
LEFT JOIN event_categories ec ON ec.category_id = c.id
GROUP BY c.id, c.name
ORDER BY event_count DESC, c.name ASC`)
}

// TypeCounts returns the event types that have at least one event.
func (s *Store) TypeCounts(ctx context.Context) ([]event.NameCount, error) {
	return s.nameCounts(ctx, `
SELECT t.name, COUNT(e.id) AS event_count
FROM event_types t
JOIN events e ON e.event_type_id = t.id
GROUP BY t.id, t.name
ORDER BY event_count DESC, t.name ASC`)
}

// RequesterCounts returns the number of events per creator email.
func (s *Store) RequesterCounts(ctx context.Context) ([]event.NameCount, error) {
	return s.nameCounts(ctx, `
SELECT u.email, COUNT(e.id) AS event_count
FROM users u
JOIN events e ON e.user_id = u.id
GROUP BY u.id, u.email
ORDER BY event_count DESC, u.email ASC`)
}

func (s *Store) nameCounts(ctx context.Context, query string) ([]event.NameCount, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := make([]event.NameCount, 0, 16)
	for rows.Next() {
		var item event.NameCount
		if err := rows.Scan(&item.Name, &item.Count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts = append(counts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

func scanEvent(row rowScanner) (event.Event, error) {
	var (
		e            event.Event
		status       string
		start        string
		end          sql.NullString
		registration sql.NullString
		createdAt    string
	)
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.EventTypeID,
		&e.EventTypeName,
		&e.IsOnline,
		&start,
		&end,
		&registration,
		&e.Venue,
		&e.Governorate,
		&e.ImageFile,
		&e.AttendeesFile,
		&e.AttendeesCount,
		&e.UserID,
		&e.CreatorEmail,
		&status,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, ErrNotFound
		}
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	e.Status = event.Status(status)

	if e.StartDateTime, err = parseTime(start); err != nil {
		return event.Event{}, err
	}
	if e.EndDateTime, err = parseNullTime(end); err != nil {
		return event.Event{}, err
	}
	if e.RegistrationDeadline, err = parseNullTime(registration); err != nil {
		return event.Event{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return event.Event{}, err
	}
	return e, nil
}
