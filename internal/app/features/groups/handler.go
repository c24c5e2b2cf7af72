// internal/app/features/groups/handler.go
package groups

import (
	"net/http"
	"time"

	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/groupid"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the admin group-catalog endpoints.
type Handler struct {
	DB   *mongo.Database
	Orgs *organizationstore.Store
	Log  *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:   db,
		Orgs: organizationstore.New(db),
		Log:  logger,
	}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

type listResponse struct {
	Groups []models.Group `json:"groups"`
	Limit  int            `json:"limit"`
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

// List handles GET /groups.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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
		h.Log.Error("groups: load organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpjson.Write(w, http.StatusOK, listResponse{
		Groups: org.Groups,
		Limit:  models.MaxGroupsPerOrg,
	})
}

// Create handles POST /groups. The identifier is generated server-side;
// one retry with a fresh identifier covers the rare global collision.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createGroupRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := normalize.Name(req.Name)
	if name == "" {
		httpjson.Error(w, http.StatusBadRequest, "group name is required")
		return
	}

	var group models.Group
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		gid, genErr := groupid.New(orgID.Hex(), time.Now())
		if genErr != nil {
			h.Log.Error("groups: id generation failed", zap.Error(genErr))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
			return
		}
		group = models.Group{ID: gid, Name: name, CreatedAt: time.Now().UTC()}

		err = h.Orgs.AddGroup(r.Context(), orgID, group)
		if err != organizationstore.ErrDuplicateGroupID {
			break
		}
		h.Log.Warn("groups: identifier collision, retrying",
			zap.String("group_id", gid))
	}
	if err != nil {
		switch err {
		case organizationstore.ErrGroupLimit:
			httpjson.Error(w, http.StatusConflict, "group limit reached")
		case organizationstore.ErrDuplicateGroupID:
			httpjson.Error(w, http.StatusConflict, "could not allocate a group identifier")
		case mongo.ErrNoDocuments:
			httpjson.Error(w, http.StatusNotFound, "organization not found")
		default:
			h.Log.Error("groups: create failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.Log.Info("group created",
		zap.String("org_id", orgID.Hex()),
		zap.String("group_id", group.ID))

	httpjson.Write(w, http.StatusCreated, group)
}

// Delete handles DELETE /groups/{id}. Notices published to the group are
// not touched; anyone holding the identifier can still read them.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := currentOrgID(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	gid := groupid.Normalize(chi.URLParam(r, "id"))
	if !groupid.Valid(gid) {
		httpjson.Error(w, http.StatusBadRequest, "invalid group identifier")
		return
	}

	if err := h.Orgs.RemoveGroup(r.Context(), orgID, gid); err != nil {
		switch err {
		case organizationstore.ErrGroupNotFound:
			httpjson.Error(w, http.StatusNotFound, "group not found")
		case mongo.ErrNoDocuments:
			httpjson.Error(w, http.StatusNotFound, "organization not found")
		default:
			h.Log.Error("groups: delete failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.Log.Info("group removed",
		zap.String("org_id", orgID.Hex()),
		zap.String("group_id", gid))

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
