// Package resourcepolicy provides the ownership and team-visibility checks
// shared by documents, AI models, and chat sessions.
//
// Authorization rules:
//   - Only the owner may mutate a resource.
//   - The owner may read it; so may any caller whose team matches the
//     resource's team, when one is set. Team visibility never grants
//     mutation.
package resourcepolicy

import (
	"net/http"

	"github.com/tessergate/chatforge/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owned is the minimal resource data needed for an authorization check.
type Owned struct {
	OwnerID primitive.ObjectID
	TeamID  *primitive.ObjectID
}

// CanMutate reports whether the current user may update or delete the
// resource. Ownership is exclusive.
func CanMutate(r *http.Request, res Owned) bool {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	return res.OwnerID == userID
}

// CanRead reports whether the current user may read or use the resource:
// the owner always, a team member only when the resource is shared with
// that team.
func CanRead(r *http.Request, res Owned) bool {
	userID, teamID, ok := authz.UserCtx(r)
	if !ok {
		return false
	}
	if res.OwnerID == userID {
		return true
	}
	return res.TeamID != nil && teamID != nil && *res.TeamID == *teamID
}
