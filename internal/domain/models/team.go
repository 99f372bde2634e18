// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// TeamMember is one membership entry on a team.
type TeamMember struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"` // owner | admin | member
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// Team groups users under one owner. Exactly one member carries the owner
// role, and that entry can never be removed or re-roled through member
// management.
type Team struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members   []TeamMember       `bson:"members" json:"members"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// MemberRole returns the role of userID on the team, or "" when userID is
// not a member.
func (t Team) MemberRole(userID primitive.ObjectID) string {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ""
}
