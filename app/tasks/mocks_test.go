package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

// MockMonitorRepository implements a simple mock for testing
type MockMonitorRepository struct {
	monitors []database.Monitor
	err      error
}

var _ database.MonitorRepository = (*MockMonitorRepository)(nil)

func (m *MockMonitorRepository) AddMonitor(monitor database.Monitor) (int64, error) {
	m.monitors = append(m.monitors, monitor)
	return int64(len(m.monitors)), nil
}

func (m *MockMonitorRepository) GetMonitors() ([]database.Monitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.monitors, nil
}

func (m *MockMonitorRepository) RemoveMonitor(query, channelID string) (int64, error) {
	return 0, nil
}

func (m *MockMonitorRepository) GetMonitorCount() (int, error) {
	return len(m.monitors), nil
}

// MockSeenItemRepository keeps the ledger in a map
type MockSeenItemRepository struct {
	seen map[string]bool
}

var _ database.SeenItemRepository = (*MockSeenItemRepository)(nil)

func NewMockSeenItemRepository() *MockSeenItemRepository {
	return &MockSeenItemRepository{seen: make(map[string]bool)}
}

func (m *MockSeenItemRepository) IsSeen(itemID string) (bool, error) {
	return m.seen[itemID], nil
}

func (m *MockSeenItemRepository) MarkSeen(itemID string) error {
	m.seen[itemID] = true
	return nil
}

func (m *MockSeenItemRepository) ClearAll() (int64, error) {
	n := int64(len(m.seen))
	m.seen = make(map[string]bool)
	return n, nil
}

func (m *MockSeenItemRepository) GetSeenCount() (int, error) {
	return len(m.seen), nil
}

// MockBidRepository tracks status and price updates in memory
type MockBidRepository struct {
	bids []database.Bid
}

var _ database.BidRepository = (*MockBidRepository)(nil)

func (m *MockBidRepository) AddBid(bid database.Bid) (int64, error) {
	bid.ID = int64(len(m.bids) + 1)
	m.bids = append(m.bids, bid)
	return bid.ID, nil
}

func (m *MockBidRepository) GetActiveBids() ([]database.Bid, error) {
	var active []database.Bid
	for _, b := range m.bids {
		if b.Status == database.BidStatusActive || b.Status == database.BidStatusWatching {
			active = append(active, b)
		}
	}
	return active, nil
}

func (m *MockBidRepository) GetBidsByUser(userID string) ([]database.Bid, error) {
	return nil, nil
}

func (m *MockBidRepository) GetBidForItem(userID, itemID string) (*database.Bid, error) {
	for i := range m.bids {
		if m.bids[i].UserID == userID && m.bids[i].ItemID == itemID {
			return &m.bids[i], nil
		}
	}
	return nil, nil
}

func (m *MockBidRepository) UpdateBidStatus(id int64, status string) error {
	for i := range m.bids {
		if m.bids[i].ID == id {
			m.bids[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("bid %d not found", id)
}

func (m *MockBidRepository) UpdateBidPrice(id int64, price float64) error {
	for i := range m.bids {
		if m.bids[i].ID == id {
			m.bids[i].CurrentBid = price
			return nil
		}
	}
	return fmt.Errorf("bid %d not found", id)
}

func (m *MockBidRepository) UpdateBidCeiling(id int64, maxBid float64) error {
	for i := range m.bids {
		if m.bids[i].ID == id {
			m.bids[i].MaxBid = maxBid
			return nil
		}
	}
	return fmt.Errorf("bid %d not found", id)
}

func (m *MockBidRepository) AddWatch(userID, itemID string) (bool, error) {
	return true, nil
}

func (m *MockBidRepository) RemoveWatch(userID, itemID string) (int64, error) {
	return 0, nil
}

// MockMarketClient serves canned listings per query and item ID
type MockMarketClient struct {
	listings    map[string][]market.Listing
	comparables map[string][]market.Listing
	items       map[string]*market.Listing
	searchErrs  map[string]error
	itemErrs    map[string]error
	searchCalls int
}

var _ MarketClient = (*MockMarketClient)(nil)

func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		listings:    make(map[string][]market.Listing),
		comparables: make(map[string][]market.Listing),
		items:       make(map[string]*market.Listing),
		searchErrs:  make(map[string]error),
		itemErrs:    make(map[string]error),
	}
}

func (m *MockMarketClient) Search(ctx context.Context, query string, limit int, filter string) ([]market.Listing, error) {
	m.searchCalls++
	if err := m.searchErrs[query]; err != nil {
		return nil, err
	}
	return m.listings[query], nil
}

func (m *MockMarketClient) GetItem(ctx context.Context, itemID string) (*market.Listing, error) {
	if err := m.itemErrs[itemID]; err != nil {
		return nil, err
	}
	return m.items[itemID], nil
}

func (m *MockMarketClient) GetComparables(ctx context.Context, query string) ([]market.Listing, error) {
	if err := m.searchErrs[query]; err != nil {
		return nil, err
	}
	return m.comparables[query], nil
}

// notification records what the mock notifier was asked to send
type notification struct {
	kind      string // deal, won, lost, outbid
	channelID string
	userID    string
	itemID    string
	ratio     string
	label     string
}

// MockNotifier records notifications instead of sending them
type MockNotifier struct {
	sent    []notification
	failAll bool
}

var _ Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyDeal(ctx context.Context, channelID, userID string, listing market.Listing, fairPrice decimal.Decimal, deal market.Deal) error {
	if m.failAll {
		return fmt.Errorf("channel unavailable")
	}
	m.sent = append(m.sent, notification{
		kind:      "deal",
		channelID: channelID,
		userID:    userID,
		itemID:    listing.ItemID,
		ratio:     deal.Ratio.String(),
		label:     deal.Label,
	})
	return nil
}

func (m *MockNotifier) NotifyBidWon(ctx context.Context, userID string, item market.Listing, finalPrice decimal.Decimal) error {
	if m.failAll {
		return fmt.Errorf("user has DMs closed")
	}
	m.sent = append(m.sent, notification{kind: "won", userID: userID, itemID: item.ItemID})
	return nil
}

func (m *MockNotifier) NotifyBidLost(ctx context.Context, userID string, item market.Listing, finalPrice, maxBid decimal.Decimal) error {
	if m.failAll {
		return fmt.Errorf("user has DMs closed")
	}
	m.sent = append(m.sent, notification{kind: "lost", userID: userID, itemID: item.ItemID})
	return nil
}

func (m *MockNotifier) NotifyOutbid(ctx context.Context, userID string, item market.Listing, currentPrice, maxBid decimal.Decimal) error {
	if m.failAll {
		return fmt.Errorf("user has DMs closed")
	}
	m.sent = append(m.sent, notification{kind: "outbid", userID: userID, itemID: item.ItemID})
	return nil
}

func testListing(id, title, price string) market.Listing {
	return market.Listing{
		ItemID:     id,
		Title:      title,
		Price:      market.Price{Value: price, Currency: "USD"},
		ItemWebURL: "https://example.com/" + id,
	}
}

func endedListing(id, price string) market.Listing {
	past := time.Now().Add(-time.Hour)
	l := testListing(id, "Ended item", price)
	l.ItemEndDate = &past
	return l
}

func liveListing(id, price string) market.Listing {
	future := time.Now().Add(time.Hour)
	l := testListing(id, "Live item", price)
	l.ItemEndDate = &future
	return l
}
