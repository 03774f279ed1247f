package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/database"
)

// BidSweepTask runs one pass over all active bids and watches, fetching the
// current item state and driving the bid status machine:
// active → outbid | won | lost. A record in outbid stays there until the
// user acts; watching rows are passive and never auto-transition.
type BidSweepTask struct {
	Task
	bidRepo  database.BidRepository
	market   MarketClient
	notifier Notifier
	release  func()
}

func NewBidSweepTask(bidRepo database.BidRepository, client MarketClient, notifier Notifier, release func()) *BidSweepTask {
	task := &BidSweepTask{
		Task:     NewTask(TaskTypeBidSweep, "bid_sweep"),
		bidRepo:  bidRepo,
		market:   client,
		notifier: notifier,
		release:  release,
	}
	task.MaxRetries = 0
	return task
}

func (t *BidSweepTask) Execute(ctx context.Context) error {
	if t.release != nil {
		defer t.release()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	bids, err := t.bidRepo.GetActiveBids()
	if err != nil {
		return fmt.Errorf("failed to read active bids: %w", err)
	}

	for _, bid := range bids {
		if err := t.checkBid(ctx, bid); err != nil {
			slog.Error("Bid sweep failed for record", "bid_id", bid.ID, "item", bid.ItemID, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "BidSweep",
		"duration", t.GetDuration(),
		"records", len(bids))

	return nil
}

func (t *BidSweepTask) checkBid(ctx context.Context, bid database.Bid) error {
	item, err := t.market.GetItem(ctx, bid.ItemID)
	if err != nil {
		return fmt.Errorf("item fetch failed: %w", err)
	}
	if item == nil {
		slog.Debug("Item no longer available, skipping", "bid_id", bid.ID, "item", bid.ItemID)
		return nil
	}

	price, ok := item.Price.Decimal()
	if !ok {
		slog.Debug("Item has no usable price, skipping", "bid_id", bid.ID, "item", bid.ItemID)
		return nil
	}

	maxBid := decimal.NewFromFloat(bid.MaxBid)
	storedPrice := decimal.NewFromFloat(bid.CurrentBid)
	priceFloat, _ := price.Float64()

	ended := item.ItemEndDate != nil && time.Now().After(*item.ItemEndDate)

	// Watching rows only track the latest observed price
	if bid.Status == database.BidStatusWatching {
		if price.GreaterThan(storedPrice) {
			if err := t.bidRepo.UpdateBidPrice(bid.ID, priceFloat); err != nil {
				return fmt.Errorf("failed to update watch price: %w", err)
			}
		}
		return nil
	}

	if ended {
		// Win/loss heuristic: a final price at or below the ceiling counts as
		// a win. The Browse API exposes no bidder identity, so this does not
		// reflect authoritative auction-outcome data.
		if price.LessThanOrEqual(maxBid) {
			if err := t.bidRepo.UpdateBidStatus(bid.ID, database.BidStatusWon); err != nil {
				return fmt.Errorf("failed to mark bid won: %w", err)
			}
			if err := t.notifier.NotifyBidWon(ctx, bid.UserID, *item, price); err != nil {
				slog.Error("Failed to send win notification", "bid_id", bid.ID, "user", bid.UserID, "error", err)
			}
		} else {
			if err := t.bidRepo.UpdateBidStatus(bid.ID, database.BidStatusLost); err != nil {
				return fmt.Errorf("failed to mark bid lost: %w", err)
			}
			if err := t.notifier.NotifyBidLost(ctx, bid.UserID, *item, price, maxBid); err != nil {
				slog.Error("Failed to send loss notification", "bid_id", bid.ID, "user", bid.UserID, "error", err)
			}
		}
		return nil
	}

	if !price.GreaterThan(storedPrice) {
		return nil
	}

	if price.GreaterThan(maxBid) {
		// Price climbed past the ceiling: transition first, then notify, so
		// a failed DM cannot cause a duplicate alert on the next tick.
		if err := t.bidRepo.UpdateBidStatus(bid.ID, database.BidStatusOutbid); err != nil {
			return fmt.Errorf("failed to mark bid outbid: %w", err)
		}
		if err := t.notifier.NotifyOutbid(ctx, bid.UserID, *item, price, maxBid); err != nil {
			slog.Error("Failed to send outbid notification", "bid_id", bid.ID, "user", bid.UserID, "error", err)
		}
		return nil
	}

	// Price rose but stays within the ceiling: still winning. The stored
	// price is advanced for future deltas; it is not an authoritative "my
	// current standing" value, which would need fuller API integration.
	if err := t.bidRepo.UpdateBidPrice(bid.ID, priceFloat); err != nil {
		return fmt.Errorf("failed to update bid price: %w", err)
	}

	return nil
}
