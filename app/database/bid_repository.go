package database

import (
	"database/sql"
	"fmt"
)

var _ BidRepository = (*SQLBidRepository)(nil)

// SQLBidRepository handles database operations for bid and watch records
type SQLBidRepository struct {
	db *DB
}

func NewBidRepository(db *DB) *SQLBidRepository {
	return &SQLBidRepository{db: db}
}

func (r *SQLBidRepository) AddBid(bid Bid) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO bids (item_id, user_id, max_bid, status, notes)
		VALUES (?, ?, ?, ?, ?)
	`, bid.ItemID, bid.UserID, bid.MaxBid, defaultString(bid.Status, BidStatusActive), bid.Notes)
	if err != nil {
		return 0, fmt.Errorf("failed to add bid: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get bid id: %w", err)
	}

	return id, nil
}

// GetActiveBids returns bids still in play: active automated bids and passive
// watches. Records already in outbid, won or lost status are excluded, so a
// record transitioned to outbid is not re-alerted without user action.
func (r *SQLBidRepository) GetActiveBids() ([]Bid, error) {
	rows, err := r.db.Query(`
		SELECT id, item_id, user_id, max_bid, current_bid, status, COALESCE(notes, ''), created_at
		FROM bids
		WHERE status IN (?, ?)
	`, BidStatusActive, BidStatusWatching)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bids: %w", err)
	}
	defer rows.Close()

	return scanBids(rows)
}

func (r *SQLBidRepository) GetBidsByUser(userID string) ([]Bid, error) {
	rows, err := r.db.Query(`
		SELECT id, item_id, user_id, max_bid, current_bid, status, COALESCE(notes, ''), created_at
		FROM bids
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids for user: %w", err)
	}
	defer rows.Close()

	return scanBids(rows)
}

func (r *SQLBidRepository) GetBidForItem(userID, itemID string) (*Bid, error) {
	var b Bid
	err := r.db.QueryRow(`
		SELECT id, item_id, user_id, max_bid, current_bid, status, COALESCE(notes, ''), created_at
		FROM bids
		WHERE user_id = ? AND item_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, itemID).Scan(&b.ID, &b.ItemID, &b.UserID, &b.MaxBid, &b.CurrentBid,
		&b.Status, &b.Notes, &b.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid for item: %w", err)
	}

	return &b, nil
}

func (r *SQLBidRepository) UpdateBidStatus(id int64, status string) error {
	_, err := r.db.Exec("UPDATE bids SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update bid status: %w", err)
	}
	return nil
}

func (r *SQLBidRepository) UpdateBidPrice(id int64, price float64) error {
	_, err := r.db.Exec("UPDATE bids SET current_bid = ? WHERE id = ?", price, id)
	if err != nil {
		return fmt.Errorf("failed to update bid price: %w", err)
	}
	return nil
}

func (r *SQLBidRepository) UpdateBidCeiling(id int64, maxBid float64) error {
	_, err := r.db.Exec("UPDATE bids SET max_bid = ? WHERE id = ?", maxBid, id)
	if err != nil {
		return fmt.Errorf("failed to update bid ceiling: %w", err)
	}
	return nil
}

// AddWatch adds a passive watch row (max bid 0). Returns false without
// inserting when the user already has a watching row for the item.
func (r *SQLBidRepository) AddWatch(userID, itemID string) (bool, error) {
	var existing int64
	err := r.db.QueryRow(`
		SELECT id FROM bids WHERE user_id = ? AND item_id = ? AND status = ?
	`, userID, itemID, BidStatusWatching).Scan(&existing)

	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check existing watch: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO bids (item_id, user_id, max_bid, status, notes)
		VALUES (?, ?, 0, ?, 'Watchlist item')
	`, itemID, userID, BidStatusWatching)
	if err != nil {
		return false, fmt.Errorf("failed to add watch: %w", err)
	}

	return true, nil
}

func (r *SQLBidRepository) RemoveWatch(userID, itemID string) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM bids WHERE user_id = ? AND item_id = ? AND status = ?
	`, userID, itemID, BidStatusWatching)
	if err != nil {
		return 0, fmt.Errorf("failed to remove watch: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get removed count: %w", err)
	}

	return removed, nil
}

func scanBids(rows *sql.Rows) ([]Bid, error) {
	var bids []Bid
	for rows.Next() {
		var b Bid
		err := rows.Scan(&b.ID, &b.ItemID, &b.UserID, &b.MaxBid, &b.CurrentBid,
			&b.Status, &b.Notes, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid row: %w", err)
		}
		bids = append(bids, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bid rows: %w", err)
	}

	return bids, nil
}
