package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/database"
)

// ActionKind enumerates the button actions the bot emits. Component
// custom IDs decode into exactly one of these; anything else is ignored.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionBidIncreaseFixed
	ActionBidIncreasePercent
	ActionWatchItem
)

const (
	bidIncreaseAmount  = 5
	bidIncreasePercent = 10
)

type Action struct {
	Kind   ActionKind
	ItemID string
}

func (a Action) customID() string {
	switch a.Kind {
	case ActionBidIncreaseFixed:
		return "bid:inc-fixed:" + a.ItemID
	case ActionBidIncreasePercent:
		return "bid:inc-percent:" + a.ItemID
	case ActionWatchItem:
		return "watch:add:" + a.ItemID
	}
	return ""
}

// parseAction decodes a component custom ID. The second return value is
// false for IDs the bot did not produce.
func parseAction(customID string) (Action, bool) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Action{}, false
	}

	switch parts[0] + ":" + parts[1] {
	case "bid:inc-fixed":
		return Action{Kind: ActionBidIncreaseFixed, ItemID: parts[2]}, true
	case "bid:inc-percent":
		return Action{Kind: ActionBidIncreasePercent, ItemID: parts[2]}, true
	case "watch:add":
		return Action{Kind: ActionWatchItem, ItemID: parts[2]}, true
	}
	return Action{}, false
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, ok := parseAction(i.MessageComponentData().CustomID)
	if !ok {
		slog.Debug("Ignoring unrecognized component", "custom_id", i.MessageComponentData().CustomID)
		return
	}

	var err error
	switch action.Kind {
	case ActionBidIncreaseFixed, ActionBidIncreasePercent:
		err = b.handleBidIncrease(s, i, action)
	case ActionWatchItem:
		err = b.handleWatchButton(s, i, action)
	}

	if err != nil {
		slog.Error("Component action failed", "item_id", action.ItemID, "error", err)
		respondEphemeral(s, i, "There was an error while handling that action.")
	}
}

// handleBidIncrease raises the ceiling on an outbid record and puts it
// back into the active set so the next sweep re-evaluates it.
func (b *Bot) handleBidIncrease(s *discordgo.Session, i *discordgo.InteractionCreate, action Action) error {
	userID := interactionUserID(i)

	bid, err := b.bids.GetBidForItem(userID, action.ItemID)
	if err != nil {
		return fmt.Errorf("failed to look up bid: %w", err)
	}
	if bid == nil {
		respondEphemeral(s, i, "No tracked bid found for that item.")
		return nil
	}

	ceiling := decimal.NewFromFloat(bid.MaxBid)
	if action.Kind == ActionBidIncreaseFixed {
		ceiling = ceiling.Add(decimal.NewFromInt(bidIncreaseAmount))
	} else {
		factor := decimal.NewFromInt(100 + bidIncreasePercent).Div(decimal.NewFromInt(100))
		ceiling = ceiling.Mul(factor).Round(2)
	}

	newCeiling, _ := ceiling.Float64()
	if err := b.bids.UpdateBidCeiling(bid.ID, newCeiling); err != nil {
		return fmt.Errorf("failed to update bid ceiling: %w", err)
	}
	if err := b.bids.UpdateBidStatus(bid.ID, database.BidStatusActive); err != nil {
		return fmt.Errorf("failed to reactivate bid: %w", err)
	}

	respondEphemeral(s, i, fmt.Sprintf("Max bid raised to **$%s**. Tracking resumed.", ceiling.StringFixed(2)))
	return nil
}

func (b *Bot) handleWatchButton(s *discordgo.Session, i *discordgo.InteractionCreate, action Action) error {
	userID := interactionUserID(i)

	added, err := b.bids.AddWatch(userID, action.ItemID)
	if err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}
	if !added {
		respondEphemeral(s, i, "You are already watching this item.")
		return nil
	}

	respondEphemeral(s, i, "✅ Added to your watchlist. Price changes show up in /watchlist list.")
	return nil
}

func bidIncreaseButtons(itemID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("Increase +$%d", bidIncreaseAmount),
					Style:    discordgo.PrimaryButton,
					CustomID: Action{Kind: ActionBidIncreaseFixed, ItemID: itemID}.customID(),
				},
				discordgo.Button{
					Label:    fmt.Sprintf("Increase +%d%%", bidIncreasePercent),
					Style:    discordgo.PrimaryButton,
					CustomID: Action{Kind: ActionBidIncreasePercent, ItemID: itemID}.customID(),
				},
			},
		},
	}
}

func watchButton(itemID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Watch",
					Style:    discordgo.SecondaryButton,
					CustomID: Action{Kind: ActionWatchItem, ItemID: itemID}.customID(),
				},
			},
		},
	}
}
