// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/urlutil"
	adminstore "github.com/noticehub/noticehub/internal/app/store/admins"
	"github.com/noticehub/noticehub/internal/app/store/oauthstate"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/app/system/timeouts"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler handles Google OAuth sign-in for organization admins.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Admins     *adminstore.Store
	Orgs       *organizationstore.Store
	StateStore *oauthstate.Store

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://noticehub.app/login/google/callback"

	// FrontendURL is where error/success redirects land (the SPA origin).
	FrontendURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(db *mongo.Database, stateStore *oauthstate.Store, clientID, clientSecret, baseURL, frontendURL string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		Admins:       adminstore.New(db),
		Orgs:         organizationstore.New(db),
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/login/google/callback",
		FrontendURL:  frontendURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login/google                                                            |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectWithError(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login/google/callback                                                   |
| Exchanges the code, resolves the admin identity, and starts a session.       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectWithError(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectWithError(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectWithError(w, r, "token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectWithError(w, r, "user_info")
		return
	}

	admin, err := h.findAdmin(ctxTimeout, googleUser)
	if err != nil {
		if err == errAdminNotFound {
			h.Log.Info("Google OAuth: no account for identity",
				zap.String("google_sub", googleUser.ID),
				zap.String("email", googleUser.Email))
			h.redirectWithError(w, r, "no_account")
			return
		}
		h.Log.Error("failed to look up admin", zap.Error(err))
		h.redirectWithError(w, r, "internal")
		return
	}

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:         admin.ID.Hex(),
		Email:      admin.Email,
		AuthMethod: "google",
	}); err != nil {
		h.Log.Error("Google OAuth: session start failed", zap.Error(err))
		h.redirectWithError(w, r, "session")
		return
	}

	h.Log.Info("admin signed in via Google OAuth",
		zap.String("admin_id", admin.ID.Hex()),
		zap.String("email", admin.Email))

	safePath := urlutil.SafeReturn(returnURL, "", "/")
	http.Redirect(w, r, h.FrontendURL+safePath, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin lookup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

var errAdminNotFound = fmt.Errorf("admin not found")

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// findAdmin resolves the Google identity to an admin record:
//  1. by google_sub (already linked);
//  2. by folded email, linking google_sub for next time.
//
// There is no just-in-time account creation here; sign-up is its own flow.
func (h *Handler) findAdmin(ctx context.Context, googleUser *googleUserInfo) (models.Admin, error) {
	admin, err := h.Admins.GetByGoogleSub(ctx, googleUser.ID)
	if err == nil {
		return admin, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Admin{}, err
	}

	email := normalize.Email(googleUser.Email)
	admin, err = h.Admins.GetByEmailCI(ctx, text.Fold(email))
	if err == mongo.ErrNoDocuments {
		return models.Admin{}, errAdminNotFound
	}
	if err != nil {
		return models.Admin{}, err
	}

	if admin.GoogleSub == "" {
		if linkErr := h.Admins.SetGoogleSub(ctx, admin.ID, googleUser.ID); linkErr != nil {
			h.Log.Warn("failed to link google_sub",
				zap.Error(linkErr), zap.String("admin_id", admin.ID.Hex()))
		}
	}
	return admin, nil
}

// redirectWithError sends the browser back to the frontend login page.
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.FrontendURL+"/login?error="+code, http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
