// internal/app/features/login/handler.go

// Package login implements account registration and credential login.
// Both endpoints return a bearer token the client presents on later
// requests.
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/status"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler holds the dependencies for registration and login.
type Handler struct {
	Users  *userstore.Store
	Tokens *auth.TokenIssuer
	Log    *zap.Logger
}

// NewHandler constructs a login Handler.
func NewHandler(users *userstore.Store, tokens *auth.TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Tokens: tokens,
		Log:    logger,
	}
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.AccountType == "" {
		req.AccountType = models.AccountIndividual
	}

	if err := validateRegistration(req); err != nil {
		httpjson.Fail(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not hash password", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		AccountType:  req.AccountType,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httpjson.Fail(w, apperr.Conflict(err.Error()))
			return
		}
		h.Log.Error("register: create user failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not create account", err))
		return
	}

	token, err := h.Tokens.Issue(created.ID, created.Email)
	if err != nil {
		h.Log.Error("register: issue token failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not issue token", err))
		return
	}

	httpjson.Created(w, sessionResponse{
		User:      created,
		Token:     token,
		ExpiresIn: int64(h.Tokens.TTL() / time.Second),
	})
}

// HandleLogin handles POST /auth/login. Wrong email and wrong password are
// indistinguishable to the caller.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("login: lookup failed", zap.Error(err))
		}
		httpjson.Fail(w, apperr.Authentication("invalid email or password"))
		return
	}
	if u.Status != "" && u.Status != status.Active {
		httpjson.Fail(w, apperr.Authentication("account is disabled"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Fail(w, apperr.Authentication("invalid email or password"))
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		h.Log.Error("login: issue token failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not issue token", err))
		return
	}

	httpjson.OK(w, sessionResponse{
		User:      *u,
		Token:     token,
		ExpiresIn: int64(h.Tokens.TTL() / time.Second),
	})
}

func validateRegistration(req registerRequest) error {
	switch {
	case req.FullName == "":
		return apperr.Validation("full_name is required")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return apperr.Validation("a valid email is required")
	case len(req.Password) < 8:
		return apperr.Validation("password must be at least 8 characters")
	case req.AccountType != models.AccountIndividual && req.AccountType != models.AccountBusiness:
		return apperr.Validation("account_type must be individual or business")
	}
	return nil
}
