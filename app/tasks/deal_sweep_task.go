package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

// DealSweepTask runs one pass over all monitors: search, score against the
// fair estimate, notify on new qualifying deals, mark everything seen.
type DealSweepTask struct {
	Task
	monitorRepo database.MonitorRepository
	seenRepo    database.SeenItemRepository
	market      MarketClient
	notifier    Notifier
	searchLimit int
	release     func()
}

func NewDealSweepTask(monitorRepo database.MonitorRepository, seenRepo database.SeenItemRepository,
	client MarketClient, notifier Notifier, searchLimit int, release func()) *DealSweepTask {
	task := &DealSweepTask{
		Task:        NewTask(TaskTypeDealSweep, "deal_sweep"),
		monitorRepo: monitorRepo,
		seenRepo:    seenRepo,
		market:      client,
		notifier:    notifier,
		searchLimit: searchLimit,
		release:     release,
	}
	// A failed sweep is covered by its next tick; never re-enqueue it
	task.MaxRetries = 0
	return task
}

func (t *DealSweepTask) Execute(ctx context.Context) error {
	if t.release != nil {
		defer t.release()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Point-in-time snapshot; user commands may mutate monitors mid-sweep
	// and last write wins.
	monitors, err := t.monitorRepo.GetMonitors()
	if err != nil {
		return fmt.Errorf("failed to read monitors: %w", err)
	}

	notified := 0
	for _, mon := range monitors {
		n, err := t.sweepMonitor(ctx, mon)
		notified += n
		if err != nil {
			slog.Error("Deal sweep failed for monitor", "query", mon.Query, "channel", mon.ChannelID, "error", err)
			continue
		}
	}

	slog.Info("Task completed",
		"type", "DealSweep",
		"duration", t.GetDuration(),
		"monitors", len(monitors),
		"notified", notified)

	return nil
}

// sweepMonitor processes a single monitor. An error aborts the remaining
// listings of this monitor only; the sweep moves on to the next one.
func (t *DealSweepTask) sweepMonitor(ctx context.Context, mon database.Monitor) (int, error) {
	filter := market.BuildFilter(mon.ListingType, mon.Condition)

	listings, err := t.market.Search(ctx, mon.Query, t.searchLimit, filter)
	if err != nil {
		return 0, fmt.Errorf("search failed: %w", err)
	}

	comparables, err := t.market.GetComparables(ctx, mon.Query)
	if err != nil {
		slog.Warn("Comparable fetch failed, estimate unavailable", "query", mon.Query, "error", err)
		comparables = nil
	}
	fairPrice, fairOK := market.FairPrice(comparables)

	notified := 0
	for _, listing := range listings {
		seen, err := t.seenRepo.IsSeen(listing.ItemID)
		if err != nil {
			slog.Error("Seen-item lookup failed", "query", mon.Query, "item", listing.ItemID, "error", err)
			continue
		}
		if seen {
			continue
		}

		if price, ok := listing.Price.Decimal(); ok {
			deal := market.DealMeter(price, fairPrice, fairOK)
			if deal.Qualifies() {
				if err := t.notifier.NotifyDeal(ctx, mon.ChannelID, mon.UserID, listing, fairPrice, deal); err != nil {
					slog.Error("Failed to notify channel", "channel", mon.ChannelID, "item", listing.ItemID, "error", err)
				} else {
					notified++
				}
			}
		} else {
			slog.Debug("Listing has no usable price", "query", mon.Query, "item", listing.ItemID)
		}

		// Marked seen whether or not it qualified, so it is never re-evaluated
		if err := t.seenRepo.MarkSeen(listing.ItemID); err != nil {
			slog.Error("Failed to mark item seen", "item", listing.ItemID, "error", err)
		}
	}

	return notified, nil
}
