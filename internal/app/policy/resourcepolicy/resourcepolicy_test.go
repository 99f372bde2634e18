package resourcepolicy_test

import (
	"net/http/httptest"
	"testing"

	"github.com/tessergate/chatforge/internal/app/policy/resourcepolicy"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanMutateOwnerOnly(t *testing.T) {
	owner := testutil.IndividualUser()
	stranger := testutil.IndividualUser()
	res := resourcepolicy.Owned{OwnerID: owner.ID}

	r := testutil.WithUser(httptest.NewRequest("PUT", "/", nil), owner)
	if !resourcepolicy.CanMutate(r, res) {
		t.Fatal("owner denied mutation")
	}

	r = testutil.WithUser(httptest.NewRequest("PUT", "/", nil), stranger)
	if resourcepolicy.CanMutate(r, res) {
		t.Fatal("non-owner allowed to mutate")
	}
}

func TestTeamVisibilityNeverGrantsMutation(t *testing.T) {
	teamID := primitive.NewObjectID()
	owner := testutil.BusinessUser()
	owner.TeamID = &teamID
	mate := testutil.BusinessUser()
	mate.TeamID = &teamID

	res := resourcepolicy.Owned{OwnerID: owner.ID, TeamID: &teamID}
	r := testutil.WithUser(httptest.NewRequest("PUT", "/", nil), mate)
	if resourcepolicy.CanMutate(r, res) {
		t.Fatal("teammate allowed to mutate a shared resource")
	}
	if !resourcepolicy.CanRead(r, res) {
		t.Fatal("teammate denied read on a shared resource")
	}
}

func TestCanRead(t *testing.T) {
	teamA := primitive.NewObjectID()
	teamB := primitive.NewObjectID()

	owner := testutil.BusinessUser()
	owner.TeamID = &teamA
	sameTeam := testutil.BusinessUser()
	sameTeam.TeamID = &teamA
	otherTeam := testutil.BusinessUser()
	otherTeam.TeamID = &teamB
	noTeam := testutil.IndividualUser()

	cases := []struct {
		name string
		user testutil.TestUser
		res  resourcepolicy.Owned
		want bool
	}{
		{"owner private", owner, resourcepolicy.Owned{OwnerID: owner.ID}, true},
		{"owner shared", owner, resourcepolicy.Owned{OwnerID: owner.ID, TeamID: &teamA}, true},
		{"teammate shared", sameTeam, resourcepolicy.Owned{OwnerID: owner.ID, TeamID: &teamA}, true},
		{"teammate private", sameTeam, resourcepolicy.Owned{OwnerID: owner.ID}, false},
		{"other team shared", otherTeam, resourcepolicy.Owned{OwnerID: owner.ID, TeamID: &teamA}, false},
		{"no team shared", noTeam, resourcepolicy.Owned{OwnerID: owner.ID, TeamID: &teamA}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testutil.WithUser(httptest.NewRequest("GET", "/", nil), tc.user)
			if got := resourcepolicy.CanRead(r, tc.res); got != tc.want {
				t.Fatalf("CanRead = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUnauthenticatedDeniedEverything(t *testing.T) {
	res := resourcepolicy.Owned{OwnerID: primitive.NewObjectID()}
	r := httptest.NewRequest("GET", "/", nil)
	if resourcepolicy.CanRead(r, res) || resourcepolicy.CanMutate(r, res) {
		t.Fatal("unauthenticated request passed a policy check")
	}
}
