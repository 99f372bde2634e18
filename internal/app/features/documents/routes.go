// internal/app/features/documents/routes.go
package documents

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the document endpoints (typically under "/documents").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleUpload)

		pr.Get("/{documentID}", h.ServeView)
		pr.Put("/{documentID}", h.HandleUpdate)
		pr.Put("/{documentID}/sharing", h.HandleSharing)
		pr.Delete("/{documentID}", h.HandleDelete)
	})
	return r
}
