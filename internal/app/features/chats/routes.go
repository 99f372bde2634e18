// internal/app/features/chats/routes.go
package chats

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the chat endpoints (typically under "/chats").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{chatID}", h.ServeView)
		pr.Delete("/{chatID}", h.HandleDelete)

		pr.Post("/{chatID}/messages", h.HandlePostMessage)
	})
	return r
}
