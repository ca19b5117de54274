package queue

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PendingShare is an order summary waiting to be delivered
type PendingShare struct {
	ID         int64
	EventID    string
	Summary    string
	RetryCount int
}

// ShareQueue keeps order summaries that could not be delivered so they can
// be retried later
type ShareQueue struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShareQueue creates a new share queue
func NewShareQueue(db *sql.DB, logger *zap.Logger) *ShareQueue {
	return &ShareQueue{
		db:     db,
		logger: logger,
	}
}

// Enqueue adds a summary to the queue
func (sq *ShareQueue) Enqueue(eventID, summary string) error {
	_, err := sq.db.Exec(`
		INSERT INTO pending_shares (event_id, summary, created_at, retry_count)
		VALUES (?, ?, ?, 0)
	`, eventID, summary, time.Now())
	if err != nil {
		return fmt.Errorf("failed to enqueue share: %w", err)
	}

	sq.logger.Debug("Share enqueued", zap.String("event_id", eventID))
	return nil
}

// Dequeue retrieves the oldest pending shares, up to limit
func (sq *ShareQueue) Dequeue(limit int) ([]PendingShare, error) {
	rows, err := sq.db.Query(`
		SELECT id, event_id, summary, retry_count
		FROM pending_shares
		ORDER BY created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending shares: %w", err)
	}
	defer rows.Close()

	var shares []PendingShare
	for rows.Next() {
		var s PendingShare
		if err := rows.Scan(&s.ID, &s.EventID, &s.Summary, &s.RetryCount); err != nil {
			sq.logger.Error("Failed to scan share row", zap.Error(err))
			continue
		}
		shares = append(shares, s)
	}

	return shares, rows.Err()
}

// Remove deletes shares from the queue by their IDs
func (sq *ShareQueue) Remove(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := "DELETE FROM pending_shares WHERE id IN ("
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i] = id
	}
	query += ")"

	result, err := sq.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to remove shares: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	sq.logger.Debug("Shares removed from queue", zap.Int64("count", rowsAffected))

	return nil
}

// IncrementRetry increments the retry count for shares
func (sq *ShareQueue) IncrementRetry(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := "UPDATE pending_shares SET retry_count = retry_count + 1, last_attempt = ? WHERE id IN ("
	args := make([]interface{}, len(ids)+1)
	args[0] = time.Now()
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i+1] = id
	}
	query += ")"

	if _, err := sq.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}

	return nil
}

// GetPendingCount returns the number of undelivered shares
func (sq *ShareQueue) GetPendingCount() (int, error) {
	var count int
	err := sq.db.QueryRow(`SELECT COUNT(*) FROM pending_shares`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return count, nil
}

// CleanupOldShares removes shares older than the given duration that have
// exceeded the retry limit
func (sq *ShareQueue) CleanupOldShares(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	result, err := sq.db.Exec(`
		DELETE FROM pending_shares
		WHERE created_at < ? AND retry_count > 10
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old shares: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		sq.logger.Info("Cleaned up old shares", zap.Int64("count", rowsAffected))
	}

	return nil
}
