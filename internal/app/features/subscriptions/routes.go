// internal/app/features/subscriptions/routes.go
package subscriptions

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the billing endpoints (typically under "/subscription").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Get("/", h.ServeCurrent)
		pr.Post("/", h.HandleChangePlan)
		pr.Delete("/", h.HandleCancel)
	})
	return r
}
