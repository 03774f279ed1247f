package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, searchHandler http.HandlerFunc) (*Client, *int) {
	t.Helper()

	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/identity/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","expires_in":7200,"token_type":"Application Access Token"}`))
	})
	mux.HandleFunc("/buy/browse/v1/", searchHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	endpoints := Endpoints{
		APIBase:  server.URL,
		AuthBase: server.URL,
		TokenURL: server.URL + "/identity/v1/oauth2/token",
	}
	tokens := NewTokenSource(server.Client(), endpoints.TokenURL, "app-id", "cert-id")
	client := NewClient(server.Client(), endpoints, tokens, "app-id", "Test/1.0")

	return client, &tokenRequests
}

func TestClient_Search(t *testing.T) {
	client, tokenRequests := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("q") != "rtx 3080" {
			t.Errorf("Unexpected query: %s", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"total": 2,
			"itemSummaries": [
				{"itemId": "v1|1|0", "title": "RTX 3080 FE", "price": {"value": "450.00", "currency": "USD"}, "itemWebUrl": "https://example.com/1"},
				{"itemId": "v1|2|0", "title": "RTX 3080 OC", "price": {"value": "500.00", "currency": "USD"}, "itemWebUrl": "https://example.com/2"}
			]
		}`))
	})

	listings, err := client.Search(context.Background(), "rtx 3080", 10, "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("Expected 2 listings, got %d", len(listings))
	}
	if listings[0].ItemID != "v1|1|0" {
		t.Errorf("Unexpected item ID: %s", listings[0].ItemID)
	}

	price, ok := listings[0].Price.Decimal()
	if !ok {
		t.Fatal("Expected parseable price")
	}
	if price.String() != "450" {
		t.Errorf("Expected price 450, got %s", price.String())
	}

	// Second search reuses the cached token
	if _, err := client.Search(context.Background(), "rtx 3080", 10, ""); err != nil {
		t.Fatalf("Second search failed: %v", err)
	}
	if *tokenRequests != 1 {
		t.Errorf("Expected 1 token request, got %d", *tokenRequests)
	}
}

func TestClient_Search_NoMatches(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total": 0}`))
	})

	listings, err := client.Search(context.Background(), "nothing here", 10, "")
	if err != nil {
		t.Fatalf("Search with zero matches should not fail: %v", err)
	}
	if listings == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(listings) != 0 {
		t.Errorf("Expected 0 listings, got %d", len(listings))
	}
}

func TestClient_Search_ServerError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.Search(context.Background(), "query", 10, ""); err == nil {
		t.Error("Expected error for HTTP 500")
	}
}

func TestClient_GetItem_Missing(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	listing, err := client.GetItem(context.Background(), "v1|missing|0")
	if err != nil {
		t.Fatalf("GetItem for missing item should not fail: %v", err)
	}
	if listing != nil {
		t.Error("Expected nil listing for missing item")
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		listingType string
		condition   string
		want        string
	}{
		{"all", "Any", ""},
		{"auction", "Any", "buyingOptions:{AUCTION}"},
		{"buy_it_now", "Any", "buyingOptions:{FIXED_PRICE}"},
		{"all", "New", "conditions:{NEW}"},
		{"auction", "Used", "buyingOptions:{AUCTION},conditions:{USED}"},
	}

	for _, tt := range tests {
		got := BuildFilter(tt.listingType, tt.condition)
		if got != tt.want {
			t.Errorf("BuildFilter(%q, %q) = %q, want %q", tt.listingType, tt.condition, got, tt.want)
		}
	}
}
