// internal/app/features/widget/routes.go
package widget

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the public widget endpoints (typically under "/widget").
// No authentication; the signed visitor cookie is set by the handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{companyID}/chat", h.HandleChat)
	return r
}
