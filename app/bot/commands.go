package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "search",
			Description: "Search eBay listings and score them against the fair market price.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search query",
					Required:    true,
				},
			},
		},
		{
			Name:        "monitor",
			Description: "Manage deal monitors for this channel.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Start monitoring a query in this channel.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Search query to monitor",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "max_price",
							Description: "Only alert below this price",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "condition",
							Description: "Item condition filter",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "New", Value: "New"},
								{Name: "Used", Value: "Used"},
								{Name: "Any", Value: "Any"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "listing_type",
							Description: "Listing type filter",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "All", Value: "all"},
								{Name: "Auctions", Value: "auction"},
								{Name: "Buy It Now", Value: "buy_it_now"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Stop monitoring a query in this channel.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "query",
							Description: "Query to remove",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List the monitors configured anywhere.",
				},
			},
		},
		{
			Name:        "bid",
			Description: "Track a maximum bid for an auction item.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "item_id",
					Description: "eBay item ID",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "max_bid",
					Description: "Your ceiling in dollars",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "notes",
					Description: "Optional notes",
				},
			},
		},
		{
			Name:        "watchlist",
			Description: "Manage your personal watchlist.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Watch an item without bidding.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "item_id",
							Description: "eBay item ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Stop watching an item.",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "item_id",
							Description: "eBay item ID",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show your tracked bids and watches.",
				},
			},
		},
		{
			Name:        "clearseen",
			Description: "Reset the seen-item ledger so past listings can alert again.",
		},
		{
			Name:        "login",
			Description: "Link your eBay account.",
		},
		{
			Name:        "logins",
			Description: "Show users with a linked eBay account.",
		},
		{
			Name:        "help",
			Description: "Show all available commands.",
		},
	}
}

type optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption

func mapOptions(options []*discordgo.ApplicationCommandInteractionDataOption) optionMap {
	m := make(optionMap, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func (b *Bot) handleSearch(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	query := i.ApplicationCommandData().Options[0].StringValue()

	if err := deferReply(s, i, false); err != nil {
		return err
	}

	ctx := context.Background()
	listings, err := b.market.Search(ctx, query, b.searchLimit, "")
	if err != nil {
		return editReplyContent(s, i, "Search failed, try again later.")
	}
	if len(listings) == 0 {
		return editReplyContent(s, i, fmt.Sprintf("No items found for %q.", query))
	}

	comparables, err := b.market.GetComparables(ctx, query)
	if err != nil {
		comparables = nil
	}
	fairPrice, ok := market.FairPrice(comparables)

	embed := searchResultsEmbed(query, listings, fairPrice, ok)
	embeds := []*discordgo.MessageEmbed{embed}
	components := watchButton(listings[0].ItemID)

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("failed to edit search reply: %w", err)
	}
	return nil
}

func searchResultsEmbed(query string, listings []market.Listing, fairPrice decimal.Decimal, ok bool) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "eBay Search Results: " + truncate(query, 200),
		Color: 0x00ae86,
	}
	if ok {
		embed.Description = fmt.Sprintf("Fair Market Value: **$%s**", fairPrice.StringFixed(2))
	} else {
		embed.Description = "Fair Market Value: unavailable"
	}

	limit := len(listings)
	if limit > 5 {
		limit = 5
	}
	for idx, listing := range listings[:limit] {
		value := fmt.Sprintf("Price: %s %s\n[Link](%s)",
			listing.Price.Value, listing.Price.Currency, listing.ItemWebURL)
		if current, priceOK := listing.Price.Decimal(); priceOK {
			deal := market.DealMeter(current, fairPrice, ok)
			value += "\n" + dealMeterLine(deal)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%d. %s", idx+1, truncate(listing.Title, 80)),
			Value: value,
		})
	}
	return embed
}

func (b *Bot) handleMonitor(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub := i.ApplicationCommandData().Options[0]

	switch sub.Name {
	case "add":
		return b.handleMonitorAdd(s, i, mapOptions(sub.Options))
	case "remove":
		return b.handleMonitorRemove(s, i, mapOptions(sub.Options))
	case "list":
		return b.handleMonitorList(s, i)
	}
	return fmt.Errorf("unknown monitor subcommand %q", sub.Name)
}

func (b *Bot) handleMonitorAdd(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	monitor := database.Monitor{
		Query:     opts["query"].StringValue(),
		ChannelID: i.ChannelID,
		UserID:    interactionUserID(i),
	}
	if opt, found := opts["max_price"]; found {
		price := opt.FloatValue()
		monitor.MaxPrice = &price
	}
	if opt, found := opts["condition"]; found {
		monitor.Condition = opt.StringValue()
	}
	if opt, found := opts["listing_type"]; found {
		monitor.ListingType = opt.StringValue()
	}

	_, err := b.monitors.AddMonitor(monitor)
	if errors.Is(err, database.ErrDuplicateMonitor) {
		respondEphemeral(s, i, fmt.Sprintf("⚠️ Already monitoring **%s** here!", monitor.Query))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add monitor: %w", err)
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Now monitoring **%s** in this channel.", monitor.Query))
	return nil
}

func (b *Bot) handleMonitorRemove(s *discordgo.Session, i *discordgo.InteractionCreate, opts optionMap) error {
	query := opts["query"].StringValue()

	removed, err := b.monitors.RemoveMonitor(query, i.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to remove monitor: %w", err)
	}
	if removed == 0 {
		respondEphemeral(s, i, fmt.Sprintf("No monitor for **%s** in this channel.", query))
		return nil
	}

	respondEphemeral(s, i, fmt.Sprintf("🗑️ Stopped monitoring **%s**.", query))
	return nil
}

func (b *Bot) handleMonitorList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	monitors, err := b.monitors.GetMonitors()
	if err != nil {
		return fmt.Errorf("failed to list monitors: %w", err)
	}
	if len(monitors) == 0 {
		respondEphemeral(s, i, "No monitors configured.")
		return nil
	}

	respondEphemeral(s, i, "**Active Monitors**\n"+strings.Join(monitorLines(monitors), "\n"))
	return nil
}

func monitorLines(monitors []database.Monitor) []string {
	lines := make([]string, 0, len(monitors))
	for _, m := range monitors {
		line := fmt.Sprintf("- **%s** in <#%s> (%s, %s)", m.Query, m.ChannelID, m.Condition, m.ListingType)
		if m.MaxPrice != nil {
			line += fmt.Sprintf(" under $%.2f", *m.MaxPrice)
		}
		lines = append(lines, line)
	}
	return lines
}

func (b *Bot) handleBid(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	opts := mapOptions(i.ApplicationCommandData().Options)

	bid := database.Bid{
		ItemID: opts["item_id"].StringValue(),
		UserID: interactionUserID(i),
		MaxBid: opts["max_bid"].FloatValue(),
		Status: database.BidStatusActive,
	}
	if opt, found := opts["notes"]; found {
		bid.Notes = opt.StringValue()
	}

	if _, err := b.bids.AddBid(bid); err != nil {
		return fmt.Errorf("failed to save bid: %w", err)
	}

	respondEphemeral(s, i, fmt.Sprintf(
		"📊 Tracking your max bid of **$%.2f** for item `%s`.\n"+
			"You will get a DM when you are outbid and when the auction ends.\n"+
			"To place real bids, visit the item on eBay.", bid.MaxBid, bid.ItemID))
	return nil
}

func (b *Bot) handleWatchlist(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub := i.ApplicationCommandData().Options[0]
	userID := interactionUserID(i)

	switch sub.Name {
	case "add":
		itemID := mapOptions(sub.Options)["item_id"].StringValue()
		added, err := b.bids.AddWatch(userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to add watch: %w", err)
		}
		if !added {
			respondEphemeral(s, i, "You are already watching this item.")
			return nil
		}
		respondEphemeral(s, i, fmt.Sprintf("👀 Watching `%s`.", itemID))
		return nil

	case "remove":
		itemID := mapOptions(sub.Options)["item_id"].StringValue()
		removed, err := b.bids.RemoveWatch(userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to remove watch: %w", err)
		}
		if removed == 0 {
			respondEphemeral(s, i, "You were not watching that item.")
			return nil
		}
		respondEphemeral(s, i, fmt.Sprintf("Removed `%s` from your watchlist.", itemID))
		return nil

	case "list":
		bids, err := b.bids.GetBidsByUser(userID)
		if err != nil {
			return fmt.Errorf("failed to list bids: %w", err)
		}
		if len(bids) == 0 {
			respondEphemeral(s, i, "Your watchlist is empty.")
			return nil
		}
		respondEphemeral(s, i, "**Your Watchlist**\n"+strings.Join(bidLines(bids), "\n"))
		return nil
	}
	return fmt.Errorf("unknown watchlist subcommand %q", sub.Name)
}

func bidLines(bids []database.Bid) []string {
	lines := make([]string, 0, len(bids))
	for _, b := range bids {
		if b.Status == database.BidStatusWatching {
			lines = append(lines, fmt.Sprintf("- `%s` watching (last seen $%.2f)", b.ItemID, b.CurrentBid))
			continue
		}
		lines = append(lines, fmt.Sprintf("- `%s` %s (max $%.2f, current $%.2f)",
			b.ItemID, b.Status, b.MaxBid, b.CurrentBid))
	}
	return lines
}

func (b *Bot) handleClearSeen(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	cleared, err := b.seen.ClearAll()
	if err != nil {
		return fmt.Errorf("failed to clear seen items: %w", err)
	}

	respondEphemeral(s, i, fmt.Sprintf("✅ Cleared %d seen items. Existing listings may alert again on the next sweep.", cleared))
	return nil
}

func (b *Bot) handleLogin(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)

	linked := ""
	if user, err := b.users.GetToken(userID); err == nil && user != nil &&
		user.TokenExpiry != nil && user.TokenExpiry.After(time.Now()) {
		linked = "Your account is already linked; logging in again refreshes the token.\n\n"
	}

	url := b.market.AuthorizationURL(b.redirectURI, userID)

	respondEphemeral(s, i, fmt.Sprintf(
		"👋 **Click below to link your eBay account:**\n\n%s[Link eBay Account](%s)\n\n"+
			"The link expires in a few minutes.", linked, url))
	return nil
}

func (b *Bot) handleLogins(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	users, err := b.users.GetLoggedInUsers()
	if err != nil {
		return fmt.Errorf("failed to fetch logged-in users: %w", err)
	}
	if len(users) == 0 {
		respondEphemeral(s, i, "🔐 No logged-in users.")
		return nil
	}

	lines := make([]string, 0, len(users))
	for idx, u := range users {
		if idx == 10 {
			lines = append(lines, fmt.Sprintf("...and %d more", len(users)-10))
			break
		}
		line := fmt.Sprintf("- <@%s>", u.DiscordID)
		if u.TokenExpiry != nil {
			line += fmt.Sprintf(" (expires %s)", u.TokenExpiry.Format("2006-01-02 15:04"))
		}
		lines = append(lines, line)
	}

	respondEphemeral(s, i, fmt.Sprintf("🔐 Logged-in users: %d\n%s", len(users), strings.Join(lines, "\n")))
	return nil
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	embed := &discordgo.MessageEmbed{
		Title:       "🤖 Bot Commands",
		Description: "Here is a list of commands you can use:",
		Color:       0x0099ff,
	}
	for _, def := range commandDefinitions() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "/" + def.Name,
			Value: def.Description,
		})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		return fmt.Errorf("failed to send help: %w", err)
	}
	return nil
}

func deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("failed to defer reply: %w", err)
	}
	return nil
}

func editReplyContent(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	if err != nil {
		return fmt.Errorf("failed to edit reply: %w", err)
	}
	return nil
}
