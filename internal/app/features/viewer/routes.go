// internal/app/features/viewer/routes.go
package viewer

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the anonymous viewer endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/access", h.Access)
	r.Post("/notices/{id}/open", h.Open)
	return r
}
