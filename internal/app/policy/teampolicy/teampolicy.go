// Package teampolicy provides authorization policies for team management.
//
// Authorization rules:
//   - Owner and admins can add and remove members.
//   - Only the owner can delete the team, rename it, or change a member's
//     role.
//   - The owner membership entry is immutable: it cannot be removed or
//     re-roled by anyone, the owner included.
package teampolicy

import (
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanManageMembers reports whether callerID may add or remove members.
func CanManageMembers(team models.Team, callerID primitive.ObjectID) bool {
	switch team.MemberRole(callerID) {
	case models.RoleOwner, models.RoleAdmin:
		return true
	}
	return false
}

// CanAdminister reports whether callerID may delete the team, rename it, or
// change member roles. Owner only.
func CanAdminister(team models.Team, callerID primitive.ObjectID) bool {
	return team.MemberRole(callerID) == models.RoleOwner
}

// IsOwnerEntry reports whether userID holds the team's owner membership.
// Targeting that entry through member management is always rejected before
// any role check.
func IsOwnerEntry(team models.Team, userID primitive.ObjectID) bool {
	return team.MemberRole(userID) == models.RoleOwner
}

// AssignableRole reports whether role may be granted through member
// management. Owner is excluded: there is exactly one owner and that entry
// is created with the team.
func AssignableRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleMember
}
