// internal/app/features/viewer/handler.go
package viewer

import (
	"net/http"
	"time"

	noticestore "github.com/noticehub/noticehub/internal/app/store/notices"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/ratelimit"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Anonymous lookups allowed per IP per window.
const (
	accessLimit  = 60
	accessWindow = time.Minute
)

// Handler owns the anonymous viewer endpoints. A viewer presents only a
// group identifier; holding the identifier IS the authorization.
type Handler struct {
	DB      *mongo.Database
	Notices *noticestore.Store
	Orgs    *organizationstore.Store
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Notices: noticestore.New(db),
		Orgs:    organizationstore.New(db),
		Limiter: ratelimit.New(accessLimit, accessWindow),
		Log:     logger,
	}
}

type accessRequest struct {
	GroupID string `json:"group_id"`
}

// Branding is the presentation block returned with every viewer feed. It
// is response data derived from the publishing organization, never shared
// process state.
type Branding struct {
	OrgName        string `json:"org_name"`
	OrgLogo        string `json:"org_logo,omitempty"`
	CustomBranding bool   `json:"custom_branding"`
	ThemeColors    string `json:"theme_colors,omitempty"`
}

type viewerNotice struct {
	models.Notice
	TagMeta models.TagMeta `json:"tag_meta"`
}

type accessResponse struct {
	GroupID  string         `json:"group_id"`
	Branding Branding       `json:"branding"`
	Notices  []viewerNotice `json:"notices"`
}

// Access handles POST /viewer/access. The identifier is normalized
// (trim + upper) and matched exactly. An empty feed is indistinguishable
// from an unknown identifier: both are 404, never an auth error.
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "too many requests; try again later")
		return
	}

	var req accessRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gid := groupid.Normalize(req.GroupID)
	if !groupid.Valid(gid) {
		httpjson.Error(w, http.StatusNotFound, "no notices found for this group")
		return
	}

	list, err := h.Notices.ListByGroup(r.Context(), gid)
	if err != nil {
		h.Log.Error("viewer: feed lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(list) == 0 {
		httpjson.Error(w, http.StatusNotFound, "no notices found for this group")
		return
	}

	// Legit viewers refresh the same feed repeatedly; only failed guesses
	// should burn the window.
	h.Limiter.Reset(ratelimit.ClientIP(r))

	branding := h.brandingFor(r, list[0])

	notices := make([]viewerNotice, 0, len(list))
	for _, n := range list {
		notices = append(notices, viewerNotice{Notice: n, TagMeta: n.Tag.Meta()})
	}

	httpjson.Write(w, http.StatusOK, accessResponse{
		GroupID:  gid,
		Branding: branding,
		Notices:  notices,
	})
}

// brandingFor derives the presentation block from the organization behind
// the newest notice. When the org row is gone the snapshot on the notice
// still gives viewers a name.
func (h *Handler) brandingFor(r *http.Request, newest models.Notice) Branding {
	org, err := h.Orgs.GetByID(r.Context(), newest.OrgID)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Warn("viewer: branding lookup failed", zap.Error(err))
		}
		return Branding{OrgName: newest.OrgName}
	}
	return Branding{
		OrgName:        org.Name,
		OrgLogo:        org.OrgLogo,
		CustomBranding: org.CustomBranding,
		ThemeColors:    org.ThemeColors,
	}
}

// Open handles POST /viewer/notices/{id}/open: one atomic view increment
// per open.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "too many requests; try again later")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid notice id")
		return
	}

	if err := h.Notices.IncrementViews(r.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "notice not found")
			return
		}
		h.Log.Error("viewer: view increment failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}
