package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/market"
	"github.com/dealhound/dealhound/app/tasks"
)

// Notifier delivers sweep results over the discord session. Channel
// alerts mention the monitor owner; bid outcomes go out as DMs.
type Notifier struct {
	session *discordgo.Session
}

var _ tasks.Notifier = (*Notifier)(nil)

func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

func (n *Notifier) NotifyDeal(ctx context.Context, channelID, userID string, listing market.Listing,
	fairPrice decimal.Decimal, deal market.Deal) error {
	embed := &discordgo.MessageEmbed{
		Title: "🚨 New Deal: " + truncate(listing.Title, 240),
		URL:   listing.ItemWebURL,
		Description: fmt.Sprintf("**Price:** %s %s\n**Fair Price:** $%s",
			listing.Price.Value, listing.Price.Currency, fairPrice.StringFixed(2)),
		Color: deal.Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Deal Meter", Value: dealMeterLine(deal)},
		},
	}
	if listing.Image != nil && listing.Image.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: listing.Image.ImageURL}
	}

	_, err := n.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s>", userID),
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: watchButton(listing.ItemID),
	})
	if err != nil {
		return fmt.Errorf("failed to send deal alert: %w", err)
	}
	return nil
}

func (n *Notifier) NotifyBidWon(ctx context.Context, userID string, item market.Listing, finalPrice decimal.Decimal) error {
	content := fmt.Sprintf("🎉 **You Won!** Item: %s\nFinal Price: $%s\n%s",
		item.Title, finalPrice.StringFixed(2), item.ItemWebURL)
	return n.SendUserMessage(userID, content)
}

func (n *Notifier) NotifyBidLost(ctx context.Context, userID string, item market.Listing, finalPrice, maxBid decimal.Decimal) error {
	content := fmt.Sprintf("😢 **Lost.** Item: %s\nSold for: $%s (Your Max: $%s)",
		item.Title, finalPrice.StringFixed(2), maxBid.StringFixed(2))
	return n.SendUserMessage(userID, content)
}

func (n *Notifier) NotifyOutbid(ctx context.Context, userID string, item market.Listing, currentPrice, maxBid decimal.Decimal) error {
	channel, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}

	content := fmt.Sprintf("⚠️ **OUTBID ALERT!**\nItem: %s\nCurrent: $%s (Max: $%s)",
		item.Title, currentPrice.StringFixed(2), maxBid.StringFixed(2))
	_, err = n.session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content:    content,
		Components: bidIncreaseButtons(item.ItemID),
	})
	if err != nil {
		return fmt.Errorf("failed to send outbid alert: %w", err)
	}
	return nil
}

// SendUserMessage DMs a plain message. Used by the bid notifications and
// the OAuth callback confirmation.
func (n *Notifier) SendUserMessage(userID, content string) error {
	channel, err := n.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

func dealMeterLine(deal market.Deal) string {
	return fmt.Sprintf("%s%% %s **%s**", deal.Ratio.String(), deal.Emoji, deal.Label)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
