package bot

import "testing"

func TestParseActionRoundTrip(t *testing.T) {
	actions := []Action{
		{Kind: ActionBidIncreaseFixed, ItemID: "v1|123456|0"},
		{Kind: ActionBidIncreasePercent, ItemID: "v1|123456|0"},
		{Kind: ActionWatchItem, ItemID: "987"},
	}

	for _, original := range actions {
		parsed, ok := parseAction(original.customID())
		if !ok {
			t.Fatalf("Expected %q to parse", original.customID())
		}
		if parsed != original {
			t.Errorf("Round trip mismatch: %+v != %+v", parsed, original)
		}
	}
}

func TestParseActionRejectsForeignIDs(t *testing.T) {
	rejected := []string{
		"",
		"bid",
		"bid:inc-fixed:",
		"bid:unknown:123",
		"trade_accept_1_2",
		"prev_page",
	}

	for _, id := range rejected {
		if _, ok := parseAction(id); ok {
			t.Errorf("Expected %q to be rejected", id)
		}
	}
}

func TestParseActionItemIDMayContainColons(t *testing.T) {
	action, ok := parseAction("watch:add:a:b:c")
	if !ok {
		t.Fatal("Expected ID with colons in the item ID to parse")
	}
	if action.ItemID != "a:b:c" {
		t.Errorf("Expected item ID a:b:c, got %s", action.ItemID)
	}
}

func TestBidIncreaseButtonsCarryDecodableIDs(t *testing.T) {
	rows := bidIncreaseButtons("item-1")
	if len(rows) != 1 {
		t.Fatalf("Expected one action row, got %d", len(rows))
	}
}
