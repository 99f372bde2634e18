// internal/app/features/profile/handler.go

// Package profile serves the authenticated user's own account: profile
// fields, password changes, and API key issuance.
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler holds dependencies for the account endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeMe handles GET /users/me with a fresh read of the account record.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.NotFound("account not found"))
		return
	}
	httpjson.OK(w, fresh)
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
}

// HandleUpdate handles PUT /users/me.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req updateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		httpjson.Fail(w, apperr.Validation("full_name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, u.ID, req.FullName); err != nil {
		h.Log.Error("profile: update failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update profile", err))
		return
	}
	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not load profile", err))
		return
	}
	httpjson.OK(w, fresh)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles PUT /users/me/password. The current password
// must verify before the new one is accepted.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req changePasswordRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if len(req.NewPassword) < 8 {
		httpjson.Fail(w, apperr.Validation("new password must be at least 8 characters"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		httpjson.Fail(w, apperr.NotFound("account not found"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(fresh.PasswordHash), []byte(req.CurrentPassword)) != nil {
		httpjson.Fail(w, apperr.Authentication("current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not hash password", err))
		return
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		h.Log.Error("profile: password update failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not update password", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "password updated"})
}

type apiKeyResponse struct {
	APIKey string `json:"api_key"`
	Prefix string `json:"prefix"`
}

// HandleIssueAPIKey handles POST /users/me/api-key. The clear key appears in
// this response and nowhere else; issuing again replaces the previous key.
func (h *Handler) HandleIssueAPIKey(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}
	if !plans.Limits(u.Plan).APIAccess {
		httpjson.Fail(w, apperr.Authorization("current plan does not include API access"))
		return
	}

	key, hash, prefix, err := auth.NewAPIKey()
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not generate API key", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetAPIKey(ctx, u.ID, hash, prefix); err != nil {
		h.Log.Error("profile: store API key failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not store API key", err))
		return
	}
	httpjson.Created(w, apiKeyResponse{APIKey: key, Prefix: prefix})
}
