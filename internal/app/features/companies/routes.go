// internal/app/features/companies/routes.go
package companies

import (
	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
)

// Routes mounts the company-context endpoints (typically under
// "/companies"). All of them require an authenticated caller; the public
// read path is the widget feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{companyID}/context", h.HandleUpdateContext)
		pr.Get("/{companyID}/context", h.ServeContext)
		pr.Get("/{companyID}/context-diagnostic", h.ServeDiagnostic)
	})
	return r
}
