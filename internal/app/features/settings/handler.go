// internal/app/features/settings/handler.go
package settings

import (
	"net/http"
	"time"

	noticestore "github.com/noticehub/noticehub/internal/app/store/notices"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/apikey"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the organization settings endpoints: branding, API key
// management, and quota reconciliation.
type Handler struct {
	DB      *mongo.Database
	Orgs    *organizationstore.Store
	Notices *noticestore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Orgs:    organizationstore.New(db),
		Notices: noticestore.New(db),
		Log:     logger,
	}
}

func currentOrgID(r *http.Request) (primitive.ObjectID, bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

/*─────────────────────────────────────────────────────────────────────────────*
| Branding                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type brandingResponse struct {
	CustomBranding bool   `json:"custom_branding"`
	ThemeColors    string `json:"theme_colors,omitempty"`
	OrgLogo        string `json:"org_logo,omitempty"`
}

type brandingRequest struct {
	CustomBranding bool   `json:"custom_branding"`
	ThemeColors    string `json:"theme_colors"`
	OrgLogo        string `json:"org_logo"`
}

// GetBranding handles GET /settings/branding.
func (h *Handler) GetBranding(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, brandingResponse{
		CustomBranding: org.CustomBranding,
		ThemeColors:    org.ThemeColors,
		OrgLogo:        org.OrgLogo,
	})
}

// UpdateBranding handles PUT /settings/branding.
func (h *Handler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req brandingRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Orgs.UpdateBranding(r.Context(), orgID, req.CustomBranding, req.ThemeColors, req.OrgLogo); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: branding update failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, brandingResponse{
		CustomBranding: req.CustomBranding,
		ThemeColors:    req.ThemeColors,
		OrgLogo:        req.OrgLogo,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| API key management                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type apiKeyResponse struct {
	APIKey    string `json:"api_key,omitempty"`
	APIAccess bool   `json:"api_access"`
}

// GetAPIKey handles GET /settings/api-key.
func (h *Handler) GetAPIKey(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, apiKeyResponse{
		APIKey:    org.APIKey,
		APIAccess: org.APIAccess,
	})
}

// RotateAPIKey handles POST /settings/api-key/rotate. The previous key
// stops working the moment the write lands.
func (h *Handler) RotateAPIKey(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key := apikey.New()
	if err := h.Orgs.RotateAPIKey(r.Context(), orgID, key); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: key rotation failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("API key rotated", zap.String("org_id", orgID.Hex()))

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		h.Log.Error("settings: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, apiKeyResponse{APIKey: key, APIAccess: org.APIAccess})
}

// EnableAPIAccess handles POST /settings/api-key/enable. An org that never
// had a key gets one minted here so enabling always yields a working
// credential.
func (h *Handler) EnableAPIAccess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	key := org.APIKey
	if key == "" {
		key = apikey.New()
		if err := h.Orgs.RotateAPIKey(r.Context(), orgID, key); err != nil {
			h.Log.Error("settings: initial key mint failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if err := h.Orgs.SetAPIAccess(r.Context(), orgID, true); err != nil {
		h.Log.Error("settings: enabling API access failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, apiKeyResponse{APIKey: key, APIAccess: true})
}

// DisableAPIAccess handles POST /settings/api-key/disable. The key is
// kept; re-enabling restores it.
func (h *Handler) DisableAPIAccess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Orgs.SetAPIAccess(r.Context(), orgID, false); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: disabling API access failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, apiKeyResponse{APIAccess: false})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Quota reconciliation                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

type reconcileResponse struct {
	Period      string `json:"period"`
	NoticeCount int64  `json:"notice_count"`
}

// Reconcile handles POST /settings/reconcile. It recomputes the quota
// counter from the live notices collection, healing any drift left by a
// crash between a reservation and its insert.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	now := time.Now().UTC()
	period := quota.Period(now)

	count, err := h.Notices.CountByOrgSince(r.Context(), orgID, quota.PeriodStart(now))
	if err != nil {
		h.Log.Error("settings: reconcile count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Orgs.ReconcileNoticeCount(r.Context(), orgID, period, count); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("settings: reconcile write failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("quota reconciled",
		zap.String("org_id", orgID.Hex()),
		zap.String("period", period),
		zap.Int64("notice_count", count))

	httpjson.Write(w, http.StatusOK, reconcileResponse{
		Period:      period,
		NoticeCount: count,
	})
}
