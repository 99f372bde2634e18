// internal/app/features/subscriptions/handler.go

// Package subscriptions implements the mocked billing surface. A user holds
// at most one subscription record, updated in place on plan changes; a user
// with no record is simply on the free plan.
package subscriptions

import (
	"context"
	"errors"
	"net/http"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	substore "github.com/tessergate/chatforge/internal/app/store/subscriptions"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the subscriptions feature.
type Handler struct {
	Subs  *substore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a subscriptions Handler.
func NewHandler(subs *substore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Subs: subs, Users: users, Log: logger}
}

type planResponse struct {
	Plan   string            `json:"plan"`
	Status string            `json:"status"`
	Limits models.PlanLimits `json:"limits"`
}

// ServeCurrent handles GET /subscription. A user without a record resolves
// to free without one being created.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := h.Subs.GetCurrent(ctx, u.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.OK(w, planResponse{
				Plan:   plans.Free,
				Status: models.SubActive,
				Limits: plans.Limits(plans.Free),
			})
			return
		}
		h.Log.Error("subscriptions: lookup failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not load subscription", err))
		return
	}
	httpjson.OK(w, sub)
}

type changePlanRequest struct {
	Plan string `json:"plan"`
}

// HandleChangePlan handles POST /subscription. Creates the single record or
// updates it in place, snapshotting the plan's limits, and mirrors the plan
// onto the user record.
func (h *Handler) HandleChangePlan(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req changePlanRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if !plans.Valid(req.Plan) {
		httpjson.Fail(w, apperr.Validation("unknown plan"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sub, err := h.Subs.Set(ctx, u.ID, req.Plan, models.SubActive)
	if err != nil {
		h.Log.Error("subscriptions: set failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update subscription", err))
		return
	}
	if err := h.Users.UpdatePlan(ctx, u.ID, req.Plan); err != nil {
		h.Log.Error("subscriptions: mirror plan failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update plan", err))
		return
	}
	httpjson.OK(w, sub)
}

// HandleCancel handles DELETE /subscription. The record flips to canceled
// and the user drops back to the free plan.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	matched, err := h.Subs.Cancel(ctx, u.ID)
	if err != nil {
		h.Log.Error("subscriptions: cancel failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not cancel subscription", err))
		return
	}
	if !matched {
		httpjson.Fail(w, apperr.NotFound("no subscription to cancel"))
		return
	}
	if err := h.Users.UpdatePlan(ctx, u.ID, plans.Free); err != nil {
		h.Log.Error("subscriptions: plan reset failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not reset plan", err))
		return
	}
	httpjson.OK(w, map[string]string{
		"status": models.SubCanceled,
		"plan":   plans.Free,
	})
}
