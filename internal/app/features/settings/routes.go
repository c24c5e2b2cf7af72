// internal/app/features/settings/routes.go
package settings

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the settings routes on the given router.
// All routes require admin authentication.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/branding", h.GetBranding)
	r.Put("/branding", h.UpdateBranding)
	r.Get("/api-key", h.GetAPIKey)
	r.Post("/api-key/rotate", h.RotateAPIKey)
	r.Post("/api-key/enable", h.EnableAPIAccess)
	r.Post("/api-key/disable", h.DisableAPIAccess)
	r.Post("/reconcile", h.Reconcile)
}
