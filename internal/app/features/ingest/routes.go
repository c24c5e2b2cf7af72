// internal/app/features/ingest/routes.go
package ingest

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the machine ingestion API.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/notices", h.Create) // mounted under /api/v1
	return r
}
