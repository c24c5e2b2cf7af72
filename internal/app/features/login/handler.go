// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	adminstore "github.com/noticehub/noticehub/internal/app/store/admins"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Failed attempts allowed per IP before the window closes.
const (
	attemptLimit  = 10
	attemptWindow = 15 * time.Minute
)

type Handler struct {
	DB      *mongo.Database
	Admins  *adminstore.Store
	Orgs    *organizationstore.Store
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Admins:  adminstore.New(db),
		Orgs:    organizationstore.New(db),
		Limiter: ratelimit.New(attemptLimit, attemptWindow),
		Log:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	OrgName string `json:"org_name"`
}

// Password handles POST /login. All credential failures share one message
// so the response never reveals whether the email exists.
func (h *Handler) Password(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		httpjson.Error(w, http.StatusTooManyRequests, "too many attempts; try again later")
		return
	}

	var req loginRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, err := h.Admins.GetByEmailCI(r.Context(), text.Fold(email))
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("login: admin lookup failed", zap.Error(err))
		}
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if admin.AuthMethod != "password" || admin.PasswordHash == "" {
		// Google-only account; no password to check.
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	// Signup creates the admin and org rows as a non-transactional pair;
	// surface a half-created account rather than handing out a session
	// with no tenant behind it.
	org, err := h.Orgs.GetByID(r.Context(), admin.ID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.Log.Warn("login: admin has no organization row",
				zap.String("admin_id", admin.ID.Hex()))
			httpjson.Error(w, http.StatusConflict, "account setup incomplete; contact support")
			return
		}
		h.Log.Error("login: organization lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:         admin.ID.Hex(),
		Email:      admin.Email,
		AuthMethod: admin.AuthMethod,
	}); err != nil {
		h.Log.Error("login: session start failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// A successful login clears the IP's failure window.
	h.Limiter.Reset(ip)

	httpjson.Write(w, http.StatusOK, loginResponse{
		ID:      admin.ID.Hex(),
		Email:   admin.Email,
		OrgName: org.Name,
	})
}
