package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealhound/dealhound/app/database"
	"github.com/dealhound/dealhound/app/market"
)

// MockUserRepository records saved tokens for inspection
type MockUserRepository struct {
	savedID     string
	savedAccess string
	savedExpiry time.Time
}

var _ database.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) SaveToken(discordID, accessToken, refreshToken string, expiry time.Time) error {
	m.savedID = discordID
	m.savedAccess = accessToken
	m.savedExpiry = expiry
	return nil
}

func (m *MockUserRepository) GetToken(discordID string) (*database.User, error) {
	return nil, nil
}

func (m *MockUserRepository) GetLoggedInUsers() ([]database.User, error) {
	return nil, nil
}

type MockExchanger struct {
	token *market.Token
	err   error
}

var _ CodeExchanger = (*MockExchanger)(nil)

func (m *MockExchanger) ExchangeUserCode(ctx context.Context, code, redirectURI string) (*market.Token, error) {
	return m.token, m.err
}

type MockMessenger struct {
	messages []string
	userIDs  []string
}

var _ UserMessenger = (*MockMessenger)(nil)

func (m *MockMessenger) SendUserMessage(userID, content string) error {
	m.userIDs = append(m.userIDs, userID)
	m.messages = append(m.messages, content)
	return nil
}

func newCallbackRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/ebay/callback", h.AuthCallback)
	r.GET("/auth/ebay/declined", h.AuthDeclined)
	return r
}

func TestAuthCallbackSavesTokenAndConfirms(t *testing.T) {
	users := &MockUserRepository{}
	exchanger := &MockExchanger{token: &market.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-abc",
		ExpiresIn:    7200,
	}}
	messenger := &MockMessenger{}

	h := &Handler{users: users, exchanger: exchanger, messenger: messenger, redirectURI: "RuName"}
	router := newCallbackRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/ebay/callback?code=c-123&state=user-42", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if users.savedID != "user-42" || users.savedAccess != "access-abc" {
		t.Errorf("Token not saved for the right user: %+v", users)
	}
	if time.Until(users.savedExpiry) < time.Hour {
		t.Errorf("Expected expiry roughly two hours out, got %s", users.savedExpiry)
	}
	if len(messenger.userIDs) != 1 || messenger.userIDs[0] != "user-42" {
		t.Errorf("Expected a confirmation DM to user-42, got %+v", messenger.userIDs)
	}
	if !strings.Contains(w.Body.String(), "Login Successful") {
		t.Errorf("Expected success page, got: %s", w.Body.String())
	}
}

func TestAuthCallbackRequiresCodeAndState(t *testing.T) {
	h := &Handler{}
	router := newCallbackRouter(h)

	for _, path := range []string{
		"/auth/ebay/callback",
		"/auth/ebay/callback?code=c-123",
		"/auth/ebay/callback?state=user-42",
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", path, w.Code)
		}
	}
}

func TestAuthCallbackExchangeFailure(t *testing.T) {
	users := &MockUserRepository{}
	exchanger := &MockExchanger{err: fmt.Errorf("token endpoint returned status 400")}
	messenger := &MockMessenger{}

	h := &Handler{users: users, exchanger: exchanger, messenger: messenger}
	router := newCallbackRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/ebay/callback?code=bad&state=user-42", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
	if users.savedID != "" {
		t.Error("Expected no token saved on exchange failure")
	}
	if len(messenger.messages) != 0 {
		t.Error("Expected no DM on exchange failure")
	}
}

func TestAuthDeclinedNotifiesUser(t *testing.T) {
	messenger := &MockMessenger{}
	h := &Handler{messenger: messenger}
	router := newCallbackRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/ebay/declined?state=user-42", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if len(messenger.userIDs) != 1 || messenger.userIDs[0] != "user-42" {
		t.Errorf("Expected a decline DM to user-42, got %+v", messenger.userIDs)
	}
	if !strings.Contains(w.Body.String(), "Login Cancelled") {
		t.Errorf("Expected cancel page, got: %s", w.Body.String())
	}
}
