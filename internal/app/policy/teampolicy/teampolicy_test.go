package teampolicy_test

import (
	"testing"
	"time"

	"github.com/tessergate/chatforge/internal/app/policy/teampolicy"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testTeam() (models.Team, primitive.ObjectID, primitive.ObjectID, primitive.ObjectID) {
	ownerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	now := time.Now().UTC()
	team := models.Team{
		ID:      primitive.NewObjectID(),
		Name:    "Support Crew",
		OwnerID: ownerID,
		Members: []models.TeamMember{
			{UserID: ownerID, Role: models.RoleOwner, AddedAt: now},
			{UserID: adminID, Role: models.RoleAdmin, AddedAt: now},
			{UserID: memberID, Role: models.RoleMember, AddedAt: now},
		},
	}
	return team, ownerID, adminID, memberID
}

func TestCanManageMembers(t *testing.T) {
	team, ownerID, adminID, memberID := testTeam()

	if !teampolicy.CanManageMembers(team, ownerID) {
		t.Error("owner denied member management")
	}
	if !teampolicy.CanManageMembers(team, adminID) {
		t.Error("admin denied member management")
	}
	if teampolicy.CanManageMembers(team, memberID) {
		t.Error("plain member allowed member management")
	}
	if teampolicy.CanManageMembers(team, primitive.NewObjectID()) {
		t.Error("non-member allowed member management")
	}
}

func TestCanAdminister(t *testing.T) {
	team, ownerID, adminID, memberID := testTeam()

	if !teampolicy.CanAdminister(team, ownerID) {
		t.Error("owner denied administration")
	}
	if teampolicy.CanAdminister(team, adminID) {
		t.Error("admin allowed administration")
	}
	if teampolicy.CanAdminister(team, memberID) {
		t.Error("plain member allowed administration")
	}
}

func TestIsOwnerEntry(t *testing.T) {
	team, ownerID, adminID, _ := testTeam()

	if !teampolicy.IsOwnerEntry(team, ownerID) {
		t.Error("owner entry not recognized")
	}
	if teampolicy.IsOwnerEntry(team, adminID) {
		t.Error("admin entry reported as owner")
	}
	if teampolicy.IsOwnerEntry(team, primitive.NewObjectID()) {
		t.Error("non-member reported as owner")
	}
}

func TestAssignableRole(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{models.RoleAdmin, true},
		{models.RoleMember, true},
		{models.RoleOwner, false},
		{"manager", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := teampolicy.AssignableRole(tc.role); got != tc.want {
			t.Errorf("AssignableRole(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}
