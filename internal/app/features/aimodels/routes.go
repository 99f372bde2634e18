// internal/app/features/aimodels/routes.go
package aimodels

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the model endpoints (typically under "/models").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{modelID}", h.ServeView)
		pr.Put("/{modelID}", h.HandleUpdate)
		pr.Delete("/{modelID}", h.HandleDelete)

		pr.Post("/{modelID}/train", h.HandleTrain)
	})
	return r
}
