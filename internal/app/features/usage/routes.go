// internal/app/features/usage/routes.go
package usage

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the usage endpoints (typically under "/usage").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)
		pr.Get("/", h.ServeList)
	})
	return r
}
