package database

import (
	"time"
)

// Bid statuses. A watching row is a passive watch (max bid 0) and never
// auto-transitions; won and lost are terminal.
const (
	BidStatusActive   = "active"
	BidStatusWatching = "watching"
	BidStatusOutbid   = "outbid"
	BidStatusWon      = "won"
	BidStatusLost     = "lost"
)

// Monitor represents a saved search tied to a channel
type Monitor struct {
	ID          int64
	Query       string
	MaxPrice    *float64
	ChannelID   string
	UserID      string
	Condition   string // Any, New, Used
	ListingType string // all, auction, buy_it_now
	AddedAt     time.Time
}

// SeenItem marks a marketplace item as already evaluated for notification
type SeenItem struct {
	ItemID string
	SeenAt time.Time
}

// Bid represents an automated max-bid or a passive watch on one item
type Bid struct {
	ID         int64
	ItemID     string
	UserID     string
	MaxBid     float64
	CurrentBid float64
	Status     string
	Notes      string
	CreatedAt  time.Time
}

// User holds a linked eBay account's OAuth tokens
type User struct {
	DiscordID        string
	EbayToken        string
	EbayRefreshToken string
	TokenExpiry      *time.Time
}
