// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the account endpoints (typically under "/users").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Get("/me", h.ServeMe)
		pr.Put("/me", h.HandleUpdate)
		pr.Put("/me/password", h.HandleChangePassword)
		pr.Post("/me/api-key", h.HandleIssueAPIKey)
	})
	return r
}
