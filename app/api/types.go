package api

import (
	"context"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

// CodeExchanger turns an OAuth callback code into a user token.
type CodeExchanger interface {
	ExchangeUserCode(ctx context.Context, code, redirectURI string) (*market.Token, error)
}

var _ CodeExchanger = (*market.Client)(nil)

// UserMessenger confirms login outcomes over Discord DM. Delivery
// failures are logged, never surfaced to the browser.
type UserMessenger interface {
	SendUserMessage(userID, content string) error
}

type Handler struct {
	users       database.UserRepository
	monitors    database.MonitorRepository
	seen        database.SeenItemRepository
	bids        database.BidRepository
	exchanger   CodeExchanger
	messenger   UserMessenger
	redirectURI string
}
