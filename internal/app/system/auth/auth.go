// internal/app/system/auth/auth.go

// Package auth authenticates requests via bearer JWT or API key and makes
// the resolved user available on the request context.
//
// The user record is fetched fresh on every request so plan changes,
// disabled accounts, and team moves take effect immediately.
package auth

import (
	"context"
	"net/http"

	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestUser is the authenticated identity injected into r.Context().
type RequestUser struct {
	ID          primitive.ObjectID
	Name        string
	Email       string
	AccountType string
	Plan        string
	TeamID      *primitive.ObjectID
}

type ctxKey string

const requestUserKey ctxKey = "requestUser"

// CurrentUser returns the request's user and a found flag.
func CurrentUser(r *http.Request) (*RequestUser, bool) {
	u, ok := r.Context().Value(requestUserKey).(*RequestUser)
	return u, ok
}

func withUser(r *http.Request, u *RequestUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestUserKey, u))
}

// WithTestUser injects a user directly, bypassing the middleware. Tests only.
func WithTestUser(r *http.Request, u *RequestUser) *http.Request {
	return withUser(r, u)
}

// FromModel builds a RequestUser from a stored user record.
func FromModel(u *models.User) *RequestUser {
	return &RequestUser{
		ID:          u.ID,
		Name:        u.FullName,
		Email:       u.Email,
		AccountType: u.AccountType,
		Plan:        u.Plan,
		TeamID:      u.TeamID,
	}
}
