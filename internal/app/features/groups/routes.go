// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the group-catalog routes on the given router.
// All routes require admin authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}
