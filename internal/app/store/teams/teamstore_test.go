// internal/app/store/teams/teamstore_test.go

package teamstore_test

import (
	"errors"
	"testing"

	teamstore "github.com/tessergate/chatforge/internal/app/store/teams"
	"github.com/tessergate/chatforge/internal/app/system/indexes"
	"github.com/tessergate/chatforge/internal/domain/models"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCreateOwnerIsSoleMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	ownerID := primitive.NewObjectID()

	team, err := store.Create(ctx, "Acme Support", ownerID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if team.OwnerID != ownerID {
		t.Fatal("owner_id not set")
	}
	if len(team.Members) != 1 {
		t.Fatalf("new team has %d members, want 1", len(team.Members))
	}
	if team.Members[0].UserID != ownerID || team.Members[0].Role != models.RoleOwner {
		t.Fatalf("sole member is %+v, want the owner entry", team.Members[0])
	}
}

func TestAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	team, err := store.Create(ctx, "Growers", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	userID := primitive.NewObjectID()
	if err := store.AddMember(ctx, team.ID, userID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := store.AddMember(ctx, team.ID, userID, models.RoleMember); !errors.Is(err, teamstore.ErrAlreadyMember) {
		t.Fatalf("AddMember twice: err = %v, want ErrAlreadyMember", err)
	}

	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("team has %d members, want 2", len(got.Members))
	}
	if got.MemberRole(userID) != models.RoleMember {
		t.Fatalf("added member has role %q", got.MemberRole(userID))
	}
}

func TestRemoveMemberNeverPullsOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	ownerID := primitive.NewObjectID()
	team, err := store.Create(ctx, "Keepers", ownerID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	memberID := primitive.NewObjectID()
	if err := store.AddMember(ctx, team.ID, memberID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := store.RemoveMember(ctx, team.ID, ownerID); !errors.Is(err, teamstore.ErrMemberNotFound) {
		t.Fatalf("RemoveMember(owner): err = %v, want ErrMemberNotFound", err)
	}
	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.MemberRole(ownerID) != models.RoleOwner {
		t.Fatal("owner entry disappeared")
	}

	if err := store.RemoveMember(ctx, team.ID, memberID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := store.RemoveMember(ctx, team.ID, memberID); !errors.Is(err, teamstore.ErrMemberNotFound) {
		t.Fatalf("RemoveMember twice: err = %v, want ErrMemberNotFound", err)
	}
}

func TestRemoveMemberStranger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	team, err := store.Create(ctx, "Insiders", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	memberID := primitive.NewObjectID()
	if err := store.AddMember(ctx, team.ID, memberID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	// A user who never joined must not read as a successful removal.
	if err := store.RemoveMember(ctx, team.ID, primitive.NewObjectID()); !errors.Is(err, teamstore.ErrMemberNotFound) {
		t.Fatalf("RemoveMember(stranger): err = %v, want ErrMemberNotFound", err)
	}
	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Members) != 2 {
		t.Fatalf("team has %d members after stranger removal, want 2", len(got.Members))
	}
}

func TestSetMemberRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	ownerID := primitive.NewObjectID()
	team, err := store.Create(ctx, "Rolers", ownerID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	memberID := primitive.NewObjectID()
	if err := store.AddMember(ctx, team.ID, memberID, models.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := store.SetMemberRole(ctx, team.ID, memberID, models.RoleAdmin); err != nil {
		t.Fatalf("SetMemberRole: %v", err)
	}
	got, err := store.GetByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.MemberRole(memberID) != models.RoleAdmin {
		t.Fatalf("member role = %q, want admin", got.MemberRole(memberID))
	}

	// The owner entry can never be re-roled.
	if err := store.SetMemberRole(ctx, team.ID, ownerID, models.RoleMember); !errors.Is(err, teamstore.ErrMemberNotFound) {
		t.Fatalf("SetMemberRole(owner): err = %v, want ErrMemberNotFound", err)
	}

	if err := store.SetMemberRole(ctx, team.ID, primitive.NewObjectID(), models.RoleAdmin); !errors.Is(err, teamstore.ErrMemberNotFound) {
		t.Fatalf("SetMemberRole(non-member): err = %v, want ErrMemberNotFound", err)
	}
}

func TestDuplicateTeamName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	store := teamstore.New(db)
	if _, err := store.Create(ctx, "Unique Crew", primitive.NewObjectID()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "unique crew", primitive.NewObjectID()); !errors.Is(err, teamstore.ErrDuplicateTeamName) {
		t.Fatalf("Create duplicate name: err = %v, want ErrDuplicateTeamName", err)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := teamstore.New(db)
	team, err := store.Create(ctx, "Ephemeral", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := store.Delete(ctx, team.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("Delete removed %d teams, want 1", n)
	}
	n, err = store.Delete(ctx, team.ID)
	if err != nil {
		t.Fatalf("Delete again: %v", err)
	}
	if n != 0 {
		t.Fatalf("second Delete removed %d teams, want 0", n)
	}
}
