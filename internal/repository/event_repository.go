package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/igestorphone/agent/internal/calendar"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no event exists under the requested id
var ErrNotFound = errors.New("calendar event not found")

// EventRepository persists canonical calendar sale events. The full event
// is stored as JSON; date and status are duplicated into columns for
// querying.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Save inserts or replaces an event. Events arriving without an id are
// assigned one.
func (r *EventRepository) Save(ev calendar.SaleEvent) (calendar.SaleEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt == "" {
		ev.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return calendar.SaleEvent{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO calendar_events (id, event_date, status, event_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_date = excluded.event_date,
			status = excluded.status,
			event_data = excluded.event_data,
			updated_at = excluded.updated_at
	`, ev.ID, ev.Date, string(ev.Status), string(data), time.Now(), time.Now())
	if err != nil {
		return calendar.SaleEvent{}, fmt.Errorf("failed to save event: %w", err)
	}

	return ev, nil
}

// Get returns the event stored under id
func (r *EventRepository) Get(id string) (calendar.SaleEvent, error) {
	var data string
	err := r.db.QueryRow(
		`SELECT event_data FROM calendar_events WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return calendar.SaleEvent{}, ErrNotFound
	}
	if err != nil {
		return calendar.SaleEvent{}, fmt.Errorf("failed to query event: %w", err)
	}

	var ev calendar.SaleEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return calendar.SaleEvent{}, fmt.Errorf("failed to unmarshal event %s: %w", id, err)
	}
	return ev, nil
}

// ListByDateRange returns events whose date falls within [from, to],
// ordered by date. Empty bounds are open.
func (r *EventRepository) ListByDateRange(from, to string) ([]calendar.SaleEvent, error) {
	query := `SELECT event_data FROM calendar_events WHERE 1=1`
	args := []interface{}{}
	if from != "" {
		query += ` AND event_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND event_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY event_date ASC, created_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []calendar.SaleEvent
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		var ev calendar.SaleEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			// Skip corrupted rows rather than failing the listing
			continue
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// UpdateStatus moves an event into one of the four recognized statuses and
// stamps updatedAt
func (r *EventRepository) UpdateStatus(id string, status calendar.Status) (calendar.SaleEvent, error) {
	switch status {
	case calendar.StatusScheduled, calendar.StatusPurchased,
		calendar.StatusNotPurchased, calendar.StatusRescheduled:
	default:
		return calendar.SaleEvent{}, fmt.Errorf("unknown status %q", status)
	}

	ev, err := r.Get(id)
	if err != nil {
		return calendar.SaleEvent{}, err
	}

	ev.Status = status
	ev.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.Save(ev)
}

// Delete removes an event
func (r *EventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM calendar_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
