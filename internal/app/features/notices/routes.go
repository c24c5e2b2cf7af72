// internal/app/features/notices/routes.go
package notices

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin notice routes on the given router.
// All routes require admin authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
