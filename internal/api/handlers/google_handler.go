package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/aischeduler/scheduler-backend/internal/api/middleware"
	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/config"
	"github.com/aischeduler/scheduler-backend/internal/repository"
)

// GoogleHandler manages the OAuth connect/disconnect cycle for Google
// Calendar and exposes availability lookups.
type GoogleHandler struct {
	cfg      *config.Config
	provider *calendar.Provider
	credRepo repository.CredentialRepository
	oauthCfg *oauth2.Config
}

func NewGoogleHandler(cfg *config.Config, provider *calendar.Provider, credRepo repository.CredentialRepository) *GoogleHandler {
	return &GoogleHandler{
		cfg:      cfg,
		provider: provider,
		credRepo: credRepo,
		oauthCfg: OAuthConfig(cfg),
	}
}

// OAuthConfig builds the Google OAuth client configuration from the app
// config.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{gcal.CalendarScope},
		Endpoint:     google.Endpoint,
	}
}

// Connect handles GET /api/google/connect. The state parameter is a
// short-lived token carrying the user id, so the callback can tie the
// exchanged credential back to the right account without a session.
func (h *GoogleHandler) Connect(c *gin.Context) {
	if h.oauthCfg.ClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth is not configured"})
		return
	}

	userID := middleware.GetUserID(c)
	state, err := h.signState(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	url := h.oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	c.JSON(http.StatusOK, gin.H{"authUrl": url})
}

// Callback handles GET /api/google/oauth2/callback. On success the browser is
// redirected back to the frontend settings page.
func (h *GoogleHandler) Callback(c *gin.Context) {
	errParam := c.Query("error")
	if errParam != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/settings?google=denied")
		return
	}

	userID, err := h.verifyState(c.Query("state"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	token, err := h.oauthCfg.Exchange(c.Request.Context(), code)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/settings?google=error")
		return
	}

	cred := &repository.GoogleOAuthCredential{
		UserID:   userID,
		Token:    token.AccessToken,
		TokenURI: google.Endpoint.TokenURL,
		Scopes:   strings.Join(h.oauthCfg.Scopes, " "),
	}
	if token.RefreshToken != "" {
		rt := token.RefreshToken
		cred.RefreshToken = &rt
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cred.Expiry = &expiry
	}

	if err := h.credRepo.Upsert(c.Request.Context(), cred); err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/settings?google=error")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL+"/settings?google=connected")
}

// Status handles GET /api/google/status
func (h *GoogleHandler) Status(c *gin.Context) {
	userID := middleware.GetUserID(c)

	cred, err := h.credRepo.FindByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if cred == nil {
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}

	resp := gin.H{
		"connected": true,
		"scopes":    calendar.ScopeList(cred.Scopes),
	}
	if cred.Expiry != nil {
		resp["expiry"] = cred.Expiry.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// Disconnect handles DELETE /api/google/disconnect
func (h *GoogleHandler) Disconnect(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.credRepo.DeleteByUserID(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Google Calendar disconnected"})
}

// FreeBusy handles GET /api/google/freebusy?start=...&end=... Synthetic data
// comes back when the live calendar is unreachable, so this endpoint never
// errors on calendar trouble.
func (h *GoogleHandler) FreeBusy(c *gin.Context) {
	userID := middleware.GetUserID(c)

	start, startErr := time.Parse(time.RFC3339, c.Query("start"))
	end, endErr := time.Parse(time.RFC3339, c.Query("end"))
	if startErr != nil || endErr != nil || !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be valid RFC 3339 timestamps with end after start"})
		return
	}

	busy := h.provider.GetFreeBusy(c.Request.Context(), userID, start, end)
	if busy == nil {
		busy = []calendar.BusyInterval{}
	}
	c.JSON(http.StatusOK, gin.H{
		"busy": busy,
		"live": h.provider.IsConnected(c.Request.Context(), userID),
	})
}

const stateTTL = 10 * time.Minute

func (h *GoogleHandler) signState(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"aud": "google-oauth-state",
		"exp": time.Now().Add(stateTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
}

func (h *GoogleHandler) verifyState(state string) (string, error) {
	token, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.cfg.JWTSecret), nil
	}, jwt.WithAudience("google-oauth-state"))
	if err != nil || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return sub, nil
}
