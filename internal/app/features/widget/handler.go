// internal/app/features/widget/handler.go

// Package widget is the public chatbot surface embedded on customer sites.
// Visitors are tracked with a signed cookie; answers come from the mocked
// responder over the company's resolved context.
package widget

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/features/shared"
	companystore "github.com/tessergate/chatforge/internal/app/store/companies"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/mockai"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/app/system/widgetauth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the public widget.
type Handler struct {
	Companies *companystore.Store
	Sessions  *widgetauth.Sessions
	AI        *mockai.Responder
	Log       *zap.Logger
}

// NewHandler constructs a widget Handler.
func NewHandler(companies *companystore.Store, sessions *widgetauth.Sessions, ai *mockai.Responder, logger *zap.Logger) *Handler {
	return &Handler{
		Companies: companies,
		Sessions:  sessions,
		AI:        ai,
		Log:       logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	VisitorID      string `json:"visitorId"`
	Reply          string `json:"reply"`
	ContextVersion int64  `json:"contextVersion"`
	Source         string `json:"source"`
}

// HandleChat handles POST /widget/{companyID}/chat. The widget replies
// synchronously; unlike the in-app chats there is no session to come back
// to.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")

	var req chatRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpjson.Fail(w, apperr.Validation("message is required"))
		return
	}

	// Sets the signed visitor cookie on first contact.
	visitorID := h.Sessions.VisitorID(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	resolved, err := h.Companies.ResolveContext(ctx, companyID)
	if err != nil {
		if errors.Is(err, companystore.ErrNoContext) || errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("no context available for this company"))
			return
		}
		h.Log.Error("widget: context resolution failed",
			zap.String("company_id", companyID), zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not resolve context", err))
		return
	}

	httpjson.OK(w, chatResponse{
		VisitorID:      visitorID,
		Reply:          h.AI.Reply(req.Message, resolved.Text),
		ContextVersion: resolved.Version,
		Source:         resolved.Source,
	})
}
