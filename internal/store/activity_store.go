package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// lastActivityKey is the single key under which the session's last-activity
// timestamp is persisted. At most one record exists per session.
const lastActivityKey = "igestor:lastActivityAt"

// ActivityStore persists the idle monitor's activity timestamp in the
// activity_state key-value table
type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Get returns the stored raw value, or ("", false, nil) when no record exists
func (s *ActivityStore) Get() (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM activity_state WHERE key = ?`, lastActivityKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read activity state: %w", err)
	}
	return value, true, nil
}

// Set overwrites the stored value for the activity key
func (s *ActivityStore) Set(value string) error {
	_, err := s.db.Exec(`
		INSERT INTO activity_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, lastActivityKey, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write activity state: %w", err)
	}
	return nil
}

// Remove deletes the activity record if present
func (s *ActivityStore) Remove() error {
	if _, err := s.db.Exec(`DELETE FROM activity_state WHERE key = ?`, lastActivityKey); err != nil {
		return fmt.Errorf("failed to remove activity state: %w", err)
	}
	return nil
}
