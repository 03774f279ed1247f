package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ UserRepository = (*SQLUserRepository)(nil)

// SQLUserRepository handles storage of linked eBay OAuth tokens
type SQLUserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) SaveToken(discordID, accessToken, refreshToken string, expiry time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO users (discord_id, ebay_token, ebay_refresh_token, token_expiry)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE SET
			ebay_token = excluded.ebay_token,
			ebay_refresh_token = excluded.ebay_refresh_token,
			token_expiry = excluded.token_expiry
	`, discordID, accessToken, refreshToken, expiry.UTC())
	if err != nil {
		return fmt.Errorf("failed to save user token: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) GetToken(discordID string) (*User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT discord_id, COALESCE(ebay_token, ''), COALESCE(ebay_refresh_token, ''), token_expiry
		FROM users
		WHERE discord_id = ?
	`, discordID).Scan(&u.DiscordID, &u.EbayToken, &u.EbayRefreshToken, &u.TokenExpiry)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user token: %w", err)
	}

	return &u, nil
}

// GetLoggedInUsers returns users holding a token that has not yet expired
func (r *SQLUserRepository) GetLoggedInUsers() ([]User, error) {
	rows, err := r.db.Query(`
		SELECT discord_id, COALESCE(ebay_token, ''), COALESCE(ebay_refresh_token, ''), token_expiry
		FROM users
		WHERE ebay_token IS NOT NULL AND token_expiry > ?
	`, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get logged in users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.DiscordID, &u.EbayToken, &u.EbayRefreshToken, &u.TokenExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}
