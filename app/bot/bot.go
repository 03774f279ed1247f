package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/dealhound/dealhound/app/cfg"
	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

// marketAPI is the slice of the market client the command surface needs.
type marketAPI interface {
	Search(ctx context.Context, query string, limit int, filter string) ([]market.Listing, error)
	GetItem(ctx context.Context, itemID string) (*market.Listing, error)
	GetComparables(ctx context.Context, query string) ([]market.Listing, error)
	AuthorizationURL(redirectURI, state string) string
}

// Bot owns the discord session and routes interactions to command and
// component handlers.
type Bot struct {
	session     *discordgo.Session
	monitors    database.MonitorRepository
	seen        database.SeenItemRepository
	bids        database.BidRepository
	users       database.UserRepository
	market      marketAPI
	redirectURI string
	searchLimit int

	registered []*discordgo.ApplicationCommand
}

func New(monitors database.MonitorRepository, seen database.SeenItemRepository,
	bids database.BidRepository, users database.UserRepository, client marketAPI) (*Bot, error) {
	cfg := cfg.Get()

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages

	return &Bot{
		session:     session,
		monitors:    monitors,
		seen:        seen,
		bids:        bids,
		users:       users,
		market:      client,
		redirectURI: cfg.EbayRedirectURI,
		searchLimit: cfg.SearchLimit,
	}, nil
}

// Session exposes the underlying connection for the notifier.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Open connects the session and registers the slash commands globally.
func (b *Bot) Open() error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Discord session ready", "user", r.User.Username)
	})
	b.session.AddHandler(b.handleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	for _, def := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", def)
		if err != nil {
			return fmt.Errorf("failed to register command %q: %w", def.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	slog.Info("Slash commands registered", "count", len(b.registered))

	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	var err error
	switch name {
	case "search":
		err = b.handleSearch(s, i)
	case "monitor":
		err = b.handleMonitor(s, i)
	case "bid":
		err = b.handleBid(s, i)
	case "watchlist":
		err = b.handleWatchlist(s, i)
	case "clearseen":
		err = b.handleClearSeen(s, i)
	case "login":
		err = b.handleLogin(s, i)
	case "logins":
		err = b.handleLogins(s, i)
	case "help":
		err = b.handleHelp(s, i)
	default:
		slog.Warn("Unknown command", "name", name)
		return
	}

	if err != nil {
		slog.Error("Command failed", "name", name, "error", err)
		respondEphemeral(s, i, "There was an error while executing this command.")
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// respondEphemeral is best-effort: the interaction may already be
// acknowledged, in which case the error only gets logged.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Debug("Failed to respond to interaction", "error", err)
	}
}
