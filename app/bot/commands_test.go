package bot

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

func TestMonitorLines(t *testing.T) {
	maxPrice := 250.0
	monitors := []database.Monitor{
		{Query: "RTX 3080", ChannelID: "chan-1", Condition: "New", ListingType: "all"},
		{Query: "PS5", ChannelID: "chan-2", Condition: "Used", ListingType: "auction", MaxPrice: &maxPrice},
	}

	lines := monitorLines(monitors)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "RTX 3080") || strings.Contains(lines[0], "under") {
		t.Errorf("Unexpected line without price cap: %s", lines[0])
	}
	if !strings.Contains(lines[1], "under $250.00") {
		t.Errorf("Expected price cap in line, got: %s", lines[1])
	}
}

func TestBidLines(t *testing.T) {
	bids := []database.Bid{
		{ItemID: "A1", Status: database.BidStatusActive, MaxBid: 100, CurrentBid: 80},
		{ItemID: "W1", Status: database.BidStatusWatching, CurrentBid: 45.5},
	}

	lines := bidLines(bids)
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "max $100.00") {
		t.Errorf("Expected ceiling in bid line, got: %s", lines[0])
	}
	if !strings.Contains(lines[1], "watching") {
		t.Errorf("Expected watching marker, got: %s", lines[1])
	}
}

func TestSearchResultsEmbedCapsFields(t *testing.T) {
	var listings []market.Listing
	for i := 0; i < 8; i++ {
		listings = append(listings, market.Listing{
			ItemID:     "X",
			Title:      "Listing",
			Price:      market.Price{Value: "50.00", Currency: "USD"},
			ItemWebURL: "https://example.com/x",
		})
	}

	embed := searchResultsEmbed("RTX 3080", listings, decimal.NewFromInt(100), true)
	if len(embed.Fields) != 5 {
		t.Errorf("Expected at most 5 listing fields, got %d", len(embed.Fields))
	}
	if !strings.Contains(embed.Description, "$100.00") {
		t.Errorf("Expected fair value in description, got: %s", embed.Description)
	}
	if !strings.Contains(embed.Fields[0].Value, "STEAL") {
		t.Errorf("Expected deal meter in listing field, got: %s", embed.Fields[0].Value)
	}
}

func TestSearchResultsEmbedUnavailableEstimate(t *testing.T) {
	listings := []market.Listing{{
		ItemID:     "X",
		Title:      "Listing",
		Price:      market.Price{Value: "50.00", Currency: "USD"},
		ItemWebURL: "https://example.com/x",
	}}

	embed := searchResultsEmbed("obscure part", listings, decimal.Zero, false)
	if !strings.Contains(embed.Description, "unavailable") {
		t.Errorf("Expected unavailable marker, got: %s", embed.Description)
	}
	if !strings.Contains(embed.Fields[0].Value, "Unknown") {
		t.Errorf("Expected Unknown verdict, got: %s", embed.Fields[0].Value)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged string, got %s", got)
	}
	if got := truncate("0123456789", 5); got != "0123…" {
		t.Errorf("Expected truncated string with ellipsis, got %s", got)
	}
}
