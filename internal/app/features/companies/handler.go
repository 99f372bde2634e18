// internal/app/features/companies/handler.go

// Package companies manages the versioned company context store that backs
// the public support-chatbot widget: company creation, context updates, the
// resolution read path, and a diagnostic endpoint.
package companies

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tessergate/chatforge/internal/app/features/shared"
	companystore "github.com/tessergate/chatforge/internal/app/store/companies"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the companies feature.
type Handler struct {
	Companies *companystore.Store
	Log       *zap.Logger
	sanitize  *bluemonday.Policy
}

// NewHandler constructs a companies Handler.
func NewHandler(companies *companystore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Companies: companies,
		Log:       logger,
		sanitize:  bluemonday.StrictPolicy(),
	}
}

type createCompanyRequest struct {
	CompanyID  string `json:"companyId"`
	Name       string `json:"name"`
	Context    string `json:"context"`
	ChatbotURL string `json:"chatbotUrl"`
}

// HandleCreate handles POST /companies. Company and version 1 of its
// context are created together; neither is ever visible without the other.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.CompanyID == "":
		httpjson.Fail(w, apperr.Validation("companyId is required"))
		return
	case req.Name == "":
		httpjson.Fail(w, apperr.Validation("name is required"))
		return
	case strings.TrimSpace(req.Context) == "":
		httpjson.Fail(w, apperr.Validation("context is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	company, version, err := h.Companies.Create(ctx,
		req.CompanyID, req.Name, h.sanitize.Sanitize(req.Context), req.ChatbotURL)
	if err != nil {
		if errors.Is(err, companystore.ErrDuplicateCompanyID) {
			httpjson.Fail(w, apperr.Conflict(err.Error()))
			return
		}
		h.Log.Error("companies: create failed",
			zap.String("company_id", req.CompanyID), zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not create company", err))
		return
	}
	httpjson.Created(w, map[string]any{
		"company": company,
		"context": version,
	})
}

type updateContextRequest struct {
	Context string `json:"context"`
}

// contextVersionResponse mirrors the read path's field names so writes and
// reads of the context surface speak the same JSON.
type contextVersionResponse struct {
	Company   string    `json:"company"`
	Context   string    `json:"context"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	IsActive  bool      `json:"isActive"`
}

// HandleUpdateContext handles POST /companies/{companyID}/context: a new
// active version supersedes the old ones atomically.
func (h *Handler) HandleUpdateContext(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req updateContextRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if strings.TrimSpace(req.Context) == "" {
		httpjson.Fail(w, apperr.Validation("context is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	version, err := h.Companies.UpdateContext(ctx, companyID, h.sanitize.Sanitize(req.Context))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("company not found"))
			return
		}
		h.Log.Error("companies: context update failed",
			zap.String("company_id", companyID), zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update context", err))
		return
	}
	httpjson.OK(w, contextVersionResponse{
		Company:   version.CompanyID,
		Context:   version.Text,
		Version:   version.Version,
		UpdatedAt: version.UpdatedAt,
		IsActive:  version.IsActive,
	})
}

// ServeContext handles GET /companies/{companyID}/context: the active
// version when one exists, else the company's denormalized copy, else 404.
func (h *Handler) ServeContext(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resolved, err := h.Companies.ResolveContext(ctx, companyID)
	if err != nil {
		if errors.Is(err, companystore.ErrNoContext) || errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("no context available for this company"))
			return
		}
		h.Log.Error("companies: context resolution failed",
			zap.String("company_id", companyID), zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not resolve context", err))
		return
	}
	httpjson.OK(w, resolved)
}

// ServeDiagnostic handles GET /companies/{companyID}/context-diagnostic.
// Absence is part of the report, never a 404.
func (h *Handler) ServeDiagnostic(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	diag, err := h.Companies.Diagnose(ctx, companyID)
	if err != nil {
		h.Log.Error("companies: diagnostic failed",
			zap.String("company_id", companyID), zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not run diagnostic", err))
		return
	}
	httpjson.OK(w, diag)
}
