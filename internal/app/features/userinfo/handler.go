// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the current session's identity. Dashboards call this on
// load to decide between the login screen and the admin view.
type Handler struct {
	Orgs *organizationstore.Store
	Log  *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs: organizationstore.New(db),
		Log:  logger,
	}
}

type userInfoResponse struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	ID              string `json:"id,omitempty"`
	Email           string `json:"email,omitempty"`
	AuthMethod      string `json:"auth_method,omitempty"`
	OrgName         string `json:"org_name,omitempty"`
}

// ServeUserInfo handles GET /me. An anonymous request is a normal 200 with
// is_authenticated false, not an error.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Write(w, http.StatusOK, userInfoResponse{IsAuthenticated: false})
		return
	}

	resp := userInfoResponse{
		IsAuthenticated: true,
		ID:              user.ID,
		Email:           user.Email,
		AuthMethod:      user.AuthMethod,
	}

	if orgID, err := primitive.ObjectIDFromHex(user.ID); err == nil {
		org, err := h.Orgs.GetByID(r.Context(), orgID)
		if err == nil {
			resp.OrgName = org.Name
		} else if err != mongo.ErrNoDocuments {
			h.Log.Warn("userinfo: organization lookup failed", zap.Error(err))
		}
	}

	httpjson.Write(w, http.StatusOK, resp)
}
