package tasks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/market"
)

// MarketClient is the narrow slice of the eBay client the sweeps need.
// Every call can fail transiently; failures are handled per-call.
type MarketClient interface {
	Search(ctx context.Context, query string, limit int, filter string) ([]market.Listing, error)
	GetItem(ctx context.Context, itemID string) (*market.Listing, error)
	GetComparables(ctx context.Context, query string) ([]market.Listing, error)
}

// Notifier delivers sweep results to channels and users. Implementations
// must treat delivery failures as non-fatal; the sweeps log and continue.
type Notifier interface {
	NotifyDeal(ctx context.Context, channelID, userID string, listing market.Listing, fairPrice decimal.Decimal, deal market.Deal) error
	NotifyBidWon(ctx context.Context, userID string, item market.Listing, finalPrice decimal.Decimal) error
	NotifyBidLost(ctx context.Context, userID string, item market.Listing, finalPrice, maxBid decimal.Decimal) error
	NotifyOutbid(ctx context.Context, userID string, item market.Listing, currentPrice, maxBid decimal.Decimal) error
}

// TaskSchedulerInterface defines the interface for task scheduling operations.
// The main application starts and stops it; sweeps are enqueued internally
// on their cadences.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
