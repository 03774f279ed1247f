package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const browseScope = "https://api.ebay.com/oauth/api_scope"

// expiryBuffer forces a refresh slightly before the token actually expires
const expiryBuffer = 30 * time.Second

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// TokenSource caches an application access token obtained via the OAuth
// client-credentials flow and refreshes it transparently on expiry. It is
// an explicit, injected object so independent instances never interfere.
type TokenSource struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenSource(httpClient *http.Client, tokenURL, clientID, clientSecret string) *TokenSource {
	return &TokenSource{
		httpClient:   httpClient,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// ValidToken returns a cached access token, fetching a fresh one when the
// cached token is missing or within the expiry buffer.
func (t *TokenSource) ValidToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiresAt) {
		return t.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", browseScope)

	resp, err := t.postForm(ctx, form)
	if err != nil {
		return "", fmt.Errorf("failed to acquire access token: %w", err)
	}

	expiresIn := resp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 7200
	}

	t.token = resp.AccessToken
	t.expiresAt = time.Now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer)

	return t.token, nil
}

// ExchangeUserCode exchanges an authorization code from the OAuth callback
// for a user token.
func (t *TokenSource) ExchangeUserCode(ctx context.Context, code, redirectURI string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	resp, err := t.postForm(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return resp, nil
}

func (t *TokenSource) postForm(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(t.clientID, t.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return &token, nil
}
