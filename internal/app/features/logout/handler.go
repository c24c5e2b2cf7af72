// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/noticehub/noticehub/internal/app/system/auth"
	"github.com/noticehub/noticehub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// Serve handles POST /logout. Signing out when not signed in is fine; the
// cookie is cleared either way.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Error("logout: clearing session failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
