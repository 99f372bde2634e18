// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's ID, team reference, and a found flag. ok=true
// means a valid, authenticated user.
func UserCtx(r *http.Request) (userID primitive.ObjectID, teamID *primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	return u.ID, u.TeamID, true
}

// IsBusiness reports whether the caller holds a business account.
func IsBusiness(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.AccountType == models.AccountBusiness
}

// UserTeamID returns the caller's team ID, or NilObjectID when the caller
// has no team.
func UserTeamID(r *http.Request) primitive.ObjectID {
	u, ok := auth.CurrentUser(r)
	if !ok || u.TeamID == nil {
		return primitive.NilObjectID
	}
	return *u.TeamID
}
