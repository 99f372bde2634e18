// internal/app/features/usage/handler.go

// Package usage serves the caller's append-only usage ledger.
package usage

import (
	"context"
	"net/http"
	"strconv"

	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies for the usage feature.
type Handler struct {
	Usage *usagestore.Store
	Log   *zap.Logger
}

// NewHandler constructs a usage Handler.
func NewHandler(usage *usagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Usage: usage, Log: logger}
}

// ServeList handles GET /usage?limit=N, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			httpjson.Fail(w, apperr.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	records, err := h.Usage.ListByUser(ctx, u.ID, limit)
	if err != nil {
		h.Log.Error("usage: list failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not list usage records", err))
		return
	}
	httpjson.OK(w, records)
}
