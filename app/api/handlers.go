package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealhound/dealhound/app/database"
)

func NewHandler(users database.UserRepository, monitors database.MonitorRepository,
	seen database.SeenItemRepository, bids database.BidRepository,
	exchanger CodeExchanger, messenger UserMessenger, redirectURI string) *Handler {
	return &Handler{
		users:       users,
		monitors:    monitors,
		seen:        seen,
		bids:        bids,
		exchanger:   exchanger,
		messenger:   messenger,
		redirectURI: redirectURI,
	}
}

// AuthCallback finishes the OAuth flow. The state parameter carries the
// Discord user ID that initiated /login.
func (h *Handler) AuthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		c.String(http.StatusBadRequest, "Missing code or state.")
		return
	}

	slog.Info("Received OAuth callback", "user_id", state)

	token, err := h.exchanger.ExchangeUserCode(c.Request.Context(), code, h.redirectURI)
	if err != nil {
		slog.Error("Token exchange failed", "user_id", state, "error", err)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusInternalServerError, loginFailedPage)
		return
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := h.users.SaveToken(state, token.AccessToken, token.RefreshToken, expiry); err != nil {
		slog.Error("Failed to save user token", "user_id", state, "error", err)
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusInternalServerError, loginFailedPage)
		return
	}

	if err := h.messenger.SendUserMessage(state,
		"✅ Login successful! Your eBay account is linked.\nYou can now use /bid for tracked bidding."); err != nil {
		slog.Warn("Login confirmation DM failed", "user_id", state, "error", err)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginSuccessPage)
}

// AuthDeclined handles the redirect eBay issues when the user cancels
// the consent screen.
func (h *Handler) AuthDeclined(c *gin.Context) {
	state := c.Query("state")
	slog.Info("OAuth consent declined", "user_id", state)

	if state != "" {
		if err := h.messenger.SendUserMessage(state,
			"❌ eBay login was cancelled. Use /login again if you change your mind."); err != nil {
			slog.Warn("Decline notification DM failed", "user_id", state, "error", err)
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginDeclinedPage)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if monitorCount, err := h.monitors.GetMonitorCount(); err == nil {
		health["monitors"] = monitorCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if monitorCount, err := h.monitors.GetMonitorCount(); err == nil {
		stats["monitors"] = monitorCount
	}
	if seenCount, err := h.seen.GetSeenCount(); err == nil {
		stats["seen_items"] = seenCount
	}
	if activeBids, err := h.bids.GetActiveBids(); err == nil {
		stats["active_bids"] = len(activeBids)
	}
	if users, err := h.users.GetLoggedInUsers(); err == nil {
		stats["logged_in_users"] = len(users)
	}

	c.JSON(http.StatusOK, stats)
}
