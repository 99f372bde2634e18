// internal/app/features/teams/routes.go
package teams

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the team endpoints (typically under "/teams").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Get("/{teamID}", h.ServeView)
		pr.Put("/{teamID}", h.HandleRename)
		pr.Delete("/{teamID}", h.HandleDelete)

		pr.Post("/{teamID}/members", h.HandleAddMember)
		pr.Delete("/{teamID}/members/{userID}", h.HandleRemoveMember)
		pr.Put("/{teamID}/members/{userID}/role", h.HandleSetMemberRole)
	})
	return r
}
