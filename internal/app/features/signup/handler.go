// internal/app/features/signup/handler.go
package signup

import (
	"net/http"
	"strings"

	adminstore "github.com/noticehub/noticehub/internal/app/store/admins"
	organizationstore "github.com/noticehub/noticehub/internal/app/store/organizations"
	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"github.com/noticehub/noticehub/internal/app/system/limits"
	"github.com/noticehub/noticehub/internal/app/system/normalize"
	"github.com/noticehub/noticehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength matches the shortest password the login form accepts.
const minPasswordLength = 8

type Handler struct {
	DB     *mongo.Database
	Admins *adminstore.Store
	Orgs   *organizationstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Admins: adminstore.New(db),
		Orgs:   organizationstore.New(db),
		Log:    logger,
	}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OrgName  string `json:"org_name"`
}

type signupResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	OrgName string `json:"org_name"`
}

// Create handles POST /signup. It mints one ObjectID shared by the admin
// identity and the organization row, inserts the pair, and starts a
// session. The pair is not transactional: if the organization insert fails
// the admin identity is removed as compensation.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req, limits.MaxJSONBody); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	orgName := normalize.Name(req.OrgName)

	if email == "" || !strings.Contains(email, "@") {
		httpjson.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		httpjson.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if orgName == "" {
		httpjson.Error(w, http.StatusBadRequest, "organization name is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("signup: bcrypt failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	id := primitive.NewObjectID()
	admin, err := h.Admins.Create(r.Context(), models.Admin{
		ID:           id,
		Email:        email,
		AuthMethod:   "password",
		PasswordHash: string(hash),
	})
	if err != nil {
		if err == adminstore.ErrDuplicateEmail {
			httpjson.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		h.Log.Error("signup: create admin failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	org, err := h.Orgs.Create(r.Context(), models.Organization{
		ID:    id,
		Name:  orgName,
		Email: email,
	})
	if err != nil {
		// Roll the identity back so the email can be retried.
		if _, delErr := h.Admins.Delete(r.Context(), admin.ID); delErr != nil {
			h.Log.Error("signup: admin rollback failed",
				zap.Error(delErr), zap.String("admin_id", admin.ID.Hex()))
		}
		if err == organizationstore.ErrDuplicateOrganization {
			httpjson.Error(w, http.StatusConflict, "an organization with this name already exists")
			return
		}
		h.Log.Error("signup: create organization failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:         admin.ID.Hex(),
		Email:      admin.Email,
		AuthMethod: admin.AuthMethod,
	}); err != nil {
		h.Log.Error("signup: session start failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("organization signed up",
		zap.String("org_id", org.ID.Hex()),
		zap.String("org_name", org.Name))

	httpjson.Write(w, http.StatusCreated, signupResponse{
		ID:      org.ID.Hex(),
		Email:   admin.Email,
		OrgName: org.Name,
	})
}
