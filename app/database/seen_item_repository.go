package database

import (
	"database/sql"
	"fmt"
)

var _ SeenItemRepository = (*SQLSeenItemRepository)(nil)

// SQLSeenItemRepository handles the seen-item dedup ledger
type SQLSeenItemRepository struct {
	db *DB
}

func NewSeenItemRepository(db *DB) *SQLSeenItemRepository {
	return &SQLSeenItemRepository{db: db}
}

func (r *SQLSeenItemRepository) IsSeen(itemID string) (bool, error) {
	var id string
	err := r.db.QueryRow("SELECT item_id FROM seen_items WHERE item_id = ?", itemID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen item: %w", err)
	}
	return true, nil
}

// MarkSeen is idempotent; marking an already-seen item is a no-op, never an error
func (r *SQLSeenItemRepository) MarkSeen(itemID string) error {
	_, err := r.db.Exec("INSERT OR IGNORE INTO seen_items (item_id) VALUES (?)", itemID)
	if err != nil {
		return fmt.Errorf("failed to mark item seen: %w", err)
	}
	return nil
}

// ClearAll purges the whole ledger and returns the number of rows removed
func (r *SQLSeenItemRepository) ClearAll() (int64, error) {
	result, err := r.db.Exec("DELETE FROM seen_items")
	if err != nil {
		return 0, fmt.Errorf("failed to clear seen items: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get removed count: %w", err)
	}

	return removed, nil
}

func (r *SQLSeenItemRepository) GetSeenCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM seen_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get seen item count: %w", err)
	}
	return count, nil
}
