package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const requestTimeout = 10 * time.Second

// Endpoints holds the environment-specific eBay hosts
type Endpoints struct {
	APIBase  string
	AuthBase string
	TokenURL string
}

func NewEndpoints(sandbox bool) Endpoints {
	if sandbox {
		return Endpoints{
			APIBase:  "https://api.sandbox.ebay.com",
			AuthBase: "https://auth.sandbox.ebay.com",
			TokenURL: "https://api.sandbox.ebay.com/identity/v1/oauth2/token",
		}
	}
	return Endpoints{
		APIBase:  "https://api.ebay.com",
		AuthBase: "https://auth.ebay.com",
		TokenURL: "https://api.ebay.com/identity/v1/oauth2/token",
	}
}

// Client wraps the eBay Browse API. Calls are treated as flaky by callers:
// each call carries its own timeout and errors are handled per-call.
type Client struct {
	httpClient *http.Client
	apiBase    string
	authBase   string
	tokens     *TokenSource
	clientID   string
	userAgent  string
}

func NewClient(httpClient *http.Client, endpoints Endpoints, tokens *TokenSource, clientID, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		apiBase:    endpoints.APIBase,
		authBase:   endpoints.AuthBase,
		tokens:     tokens,
		clientID:   clientID,
		userAgent:  userAgent,
	}
}

// Search returns up to limit item summaries matching the query. Zero
// matches yield an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, limit int, filter string) ([]Listing, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	if filter != "" {
		params.Set("filter", filter)
	}

	endpoint := c.apiBase + "/buy/browse/v1/item_summary/search?" + params.Encode()

	var result searchResponse
	if err := c.get(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		slog.Warn("eBay API warning", "query", query, "error_id", w.ErrorID, "message", w.Message)
	}

	if result.ItemSummaries == nil {
		return []Listing{}, nil
	}

	return result.ItemSummaries, nil
}

// GetItem fetches the detail for one item. A missing item returns nil, nil.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Listing, error) {
	endpoint := c.apiBase + "/buy/browse/v1/item/" + url.PathEscape(itemID)

	var listing Listing
	err := c.get(ctx, endpoint, &listing)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &listing, nil
}

// GetComparables returns the comparison set used for the fair-price
// estimate. The Browse API exposes no completed-sale search, so active
// listings stand in for sold ones.
func (c *Client) GetComparables(ctx context.Context, query string) ([]Listing, error) {
	return c.Search(ctx, query, 10, "")
}

// AuthorizationURL builds the user-consent URL for account linking.
// state carries the requesting Discord user's ID through the round trip.
func (c *Client) AuthorizationURL(redirectURI, state string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", browseScope)
	params.Set("state", state)

	return c.authBase + "/oauth2/authorize?" + params.Encode()
}

// ExchangeUserCode exchanges an OAuth callback code for a user token.
func (c *Client) ExchangeUserCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	return c.tokens.ExchangeUserCode(ctx, code, redirectURI)
}

var errNotFound = fmt.Errorf("item not found")

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	token, err := c.tokens.ValidToken(timeoutCtx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
