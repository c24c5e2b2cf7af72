// internal/app/features/notices/handler.go
package notices

import (
	"net/http"
	"time"

	noticestore "github.com/noticehub/noticehub/internal/app/store/notices"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/app/system/htmlsanitize"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/app/system/quota"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin notice endpoints.
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

type createRequest struct {
	GroupID     string `json:"group_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	ImageURL    string `json:"image_url"`
	PDFURL      string `json:"pdf_url"`
}

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

type statsResponse struct {
	Total         int64   `json:"total"`
	TotalViews    int64   `json:"total_views"`
	ThisMonth     int64   `json:"this_month"`
	QuotaUsed     int     `json:"quota_used"`
	QuotaLimit    int     `json:"quota_limit"`
	QuotaFraction float64 `json:"quota_fraction"`
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

// List handles GET /notices: everything this organization has published,
// newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.Notices.ListByOrg(r.Context(), orgID)
	if err != nil {
		h.Log.Error("notices: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []models.Notice{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"notices": list})
}

// Create handles POST /notices. Quota is reserved before the insert and
// released again if the insert fails, so the counter can only ever drift
// high (healed by reconciliation), never low.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req, limits.MaxNoticeBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gid := groupid.Normalize(req.GroupID)
	title := normalize.Name(req.Title)
	description := htmlsanitize.Sanitize(req.Description)
	if !groupid.Valid(gid) {
		httpjson.Error(w, http.StatusBadRequest, "invalid group identifier")
		return
	}
	if title == "" || description == "" {
		httpjson.Error(w, http.StatusBadRequest, "title and description are required")
		return
	}
	tag := models.ParseTag(req.Tag)
	if !tag.Assignable() {
		httpjson.Error(w, http.StatusBadRequest, "unknown tag")
		return
	}

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.Log.Error("notices: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !org.HasGroup(gid) {
		httpjson.Error(w, http.StatusBadRequest, "group does not belong to this organization")
		return
	}

	period := quota.Period(time.Now().UTC())
	if err := h.Orgs.ReserveNotice(r.Context(), orgID, period); err != nil {
		if err == organizationstore.ErrQuotaExceeded {
			httpjson.Error(w, http.StatusTooManyRequests, "monthly notice quota exceeded")
			return
		}
		h.Log.Error("notices: quota reservation failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := h.Notices.Create(r.Context(), models.Notice{
		OrgID:       orgID,
		OrgName:     org.Name,
		GroupID:     gid,
		Title:       title,
		Description: description,
		Tag:         tag,
		ImageURL:    req.ImageURL,
		PDFURL:      req.PDFURL,
	})
	if err != nil {
		if relErr := h.Orgs.ReleaseNotice(r.Context(), orgID, period); relErr != nil {
			h.Log.Error("notices: quota release after failed insert failed",
				zap.Error(relErr), zap.String("org_id", orgID.Hex()))
		}
		h.Log.Error("notices: insert failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("notice published",
		zap.String("org_id", orgID.Hex()),
		zap.String("group_id", gid),
		zap.String("notice_id", created.ID.Hex()))

	httpjson.Write(w, http.StatusCreated, created)
}

// Update handles PUT /notices/{id}: title, description, and tag are
// editable; the group binding is not.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid notice id")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req, limits.MaxNoticeBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	set := bson.M{}
	if title := normalize.Name(req.Title); title != "" {
		set["title"] = title
	}
	if req.Description != "" {
		set["description"] = htmlsanitize.Sanitize(req.Description)
	}
	if req.Tag != "" {
		tag := models.ParseTag(req.Tag)
		if !tag.Assignable() {
			httpjson.Error(w, http.StatusBadRequest, "unknown tag")
			return
		}
		set["tag"] = tag
	}
	if len(set) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.Notices.Update(r.Context(), id, orgID, set); err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "notice not found")
			return
		}
		h.Log.Error("notices: update failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /notices/{id}. Quota is released only when a row
// actually went away, and only when the notice belonged to the current
// period; deleting last month's notice does not refund this month.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid notice id")
		return
	}

	notice, err := h.Notices.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			httpjson.Error(w, http.StatusNotFound, "notice not found")
			return
		}
		h.Log.Error("notices: load failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	deleted, err := h.Notices.Delete(r.Context(), id, orgID)
	if err != nil {
		h.Log.Error("notices: delete failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if deleted == 0 {
		httpjson.Error(w, http.StatusNotFound, "notice not found")
		return
	}

	now := time.Now().UTC()
	if quota.Period(notice.CreatedAt) == quota.Period(now) {
		if err := h.Orgs.ReleaseNotice(r.Context(), orgID, quota.Period(now)); err != nil {
			h.Log.Error("notices: quota release after delete failed",
				zap.Error(err), zap.String("org_id", orgID.Hex()))
		}
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Stats handles GET /notices/stats: the numbers behind the admin dashboard
// panel.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	now := time.Now().UTC()

	total, err := h.Notices.CountByOrgSince(r.Context(), orgID, time.Time{})
	if err != nil {
		h.Log.Error("notices: total count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	thisMonth, err := h.Notices.CountByOrgSince(r.Context(), orgID, quota.PeriodStart(now))
	if err != nil {
		h.Log.Error("notices: month count failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	totalViews, err := h.Notices.TotalViews(r.Context(), orgID)
	if err != nil {
		h.Log.Error("notices: views aggregation failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	org, err := h.Orgs.GetByID(r.Context(), orgID)
	if err != nil {
		h.Log.Error("notices: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// A stale stored period means the counter belongs to a past month and
	// the effective usage right now is zero.
	used := org.NoticeCount
	if org.QuotaPeriod != quota.Period(now) {
		used = 0
	}

	httpjson.Write(w, http.StatusOK, statsResponse{
		Total:         total,
		TotalViews:    totalViews,
		ThisMonth:     thisMonth,
		QuotaUsed:     used,
		QuotaLimit:    quota.Limit,
		QuotaFraction: quota.Fraction(used),
	})
}
