package database

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateMonitor is returned when a channel already holds a monitor
// for the identical query text.
var ErrDuplicateMonitor = errors.New("monitor already exists for this query and channel")

var _ MonitorRepository = (*SQLMonitorRepository)(nil)

// SQLMonitorRepository handles database operations for saved search monitors
type SQLMonitorRepository struct {
	db *DB
}

func NewMonitorRepository(db *DB) *SQLMonitorRepository {
	return &SQLMonitorRepository{db: db}
}

func (r *SQLMonitorRepository) AddMonitor(monitor Monitor) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO monitors (query, max_price, channel_id, user_id, condition, listing_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, monitor.Query, monitor.MaxPrice, monitor.ChannelID, monitor.UserID,
		defaultString(monitor.Condition, "New"), defaultString(monitor.ListingType, "all"))

	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateMonitor
		}
		return 0, fmt.Errorf("failed to add monitor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get monitor id: %w", err)
	}

	return id, nil
}

func (r *SQLMonitorRepository) GetMonitors() ([]Monitor, error) {
	rows, err := r.db.Query(`
		SELECT id, query, max_price, channel_id, user_id,
		       COALESCE(condition, 'New'), COALESCE(listing_type, 'all'), added_at
		FROM monitors
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get monitors: %w", err)
	}
	defer rows.Close()

	var monitors []Monitor
	for rows.Next() {
		var m Monitor
		err := rows.Scan(&m.ID, &m.Query, &m.MaxPrice, &m.ChannelID, &m.UserID,
			&m.Condition, &m.ListingType, &m.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monitor row: %w", err)
		}
		monitors = append(monitors, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monitor rows: %w", err)
	}

	return monitors, nil
}

func (r *SQLMonitorRepository) RemoveMonitor(query, channelID string) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM monitors WHERE query = ? AND channel_id = ?
	`, query, channelID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove monitor: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get removed count: %w", err)
	}

	return removed, nil
}

func (r *SQLMonitorRepository) GetMonitorCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM monitors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get monitor count: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
