package database

import "time"

type MonitorRepository interface {
	AddMonitor(monitor Monitor) (int64, error)
	GetMonitors() ([]Monitor, error)
	RemoveMonitor(query, channelID string) (int64, error)
	GetMonitorCount() (int, error)
}

type SeenItemRepository interface {
	IsSeen(itemID string) (bool, error)
	MarkSeen(itemID string) error
	ClearAll() (int64, error)
	GetSeenCount() (int, error)
}

type BidRepository interface {
	AddBid(bid Bid) (int64, error)
	GetActiveBids() ([]Bid, error)
	GetBidsByUser(userID string) ([]Bid, error)
	GetBidForItem(userID, itemID string) (*Bid, error)
	UpdateBidStatus(id int64, status string) error
	UpdateBidPrice(id int64, price float64) error
	UpdateBidCeiling(id int64, maxBid float64) error
	AddWatch(userID, itemID string) (bool, error)
	RemoveWatch(userID, itemID string) (int64, error)
}

type UserRepository interface {
	SaveToken(discordID, accessToken, refreshToken string, expiry time.Time) error
	GetToken(discordID string) (*User, error)
	GetLoggedInUsers() ([]User, error)
}
