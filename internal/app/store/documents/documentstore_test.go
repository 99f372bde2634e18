// internal/app/store/documents/documentstore_test.go

package documentstore_test

import (
	"errors"
	"testing"

	documentstore "github.com/tessergate/chatforge/internal/app/store/documents"
	"github.com/tessergate/chatforge/internal/domain/models"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateComputesSize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := documentstore.New(db)
	d, err := store.Create(ctx, models.Document{
		OwnerID: primitive.NewObjectID(),
		Title:   "Onboarding",
		Content: "hello world",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.SizeBytes != int64(len("hello world")) {
		t.Fatalf("size_bytes = %d, want %d", d.SizeBytes, len("hello world"))
	}
	if d.ID.IsZero() || d.CreatedAt.IsZero() {
		t.Fatal("id or timestamps not assigned")
	}
}

func TestListVisible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := documentstore.New(db)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	myTeam := primitive.NewObjectID()
	otherTeam := primitive.NewObjectID()

	mustCreate := func(owner primitive.ObjectID, team *primitive.ObjectID, title string) models.Document {
		d, err := store.Create(ctx, models.Document{OwnerID: owner, TeamID: team, Title: title, Content: "c"})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		return d
	}

	mine := mustCreate(me, nil, "mine")
	minShared := mustCreate(me, &myTeam, "mine shared")
	shared := mustCreate(other, &myTeam, "teammate shared")
	mustCreate(other, nil, "private elsewhere")
	mustCreate(other, &otherTeam, "other team")

	docs, err := store.ListVisible(ctx, me, &myTeam)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	got := map[primitive.ObjectID]bool{}
	for _, d := range docs {
		got[d.ID] = true
	}
	if len(docs) != 3 || !got[mine.ID] || !got[minShared.ID] || !got[shared.ID] {
		t.Fatalf("ListVisible returned %d documents, want own plus team-shared", len(docs))
	}

	// Without a team only owned documents come back.
	docs, err = store.ListVisible(ctx, me, nil)
	if err != nil {
		t.Fatalf("ListVisible no team: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListVisible without team returned %d documents, want 2", len(docs))
	}
}

func TestSetTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := documentstore.New(db)
	teamID := primitive.NewObjectID()
	d, err := store.Create(ctx, models.Document{OwnerID: primitive.NewObjectID(), Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.SetTeam(ctx, d.ID, &teamID); err != nil {
		t.Fatalf("SetTeam: %v", err)
	}
	got, err := store.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != teamID {
		t.Fatal("share did not stick")
	}

	if err := store.SetTeam(ctx, d.ID, nil); err != nil {
		t.Fatalf("SetTeam unshare: %v", err)
	}
	got, err = store.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TeamID != nil {
		t.Fatal("unshare did not clear team_id")
	}
}

func TestOwnerAggregates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := documentstore.New(db)
	owner := primitive.NewObjectID()

	for _, content := range []string{"12345", "1234567890"} {
		if _, err := store.Create(ctx, models.Document{OwnerID: owner, Title: "d", Content: content}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	n, err := store.CountByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("CountByOwner: %v", err)
	}
	if n != 2 {
		t.Fatalf("CountByOwner = %d, want 2", n)
	}

	total, err := store.StorageByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("StorageByOwner: %v", err)
	}
	if total != 15 {
		t.Fatalf("StorageByOwner = %d, want 15", total)
	}

	total, err = store.StorageByOwner(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("StorageByOwner empty: %v", err)
	}
	if total != 0 {
		t.Fatalf("StorageByOwner for stranger = %d, want 0", total)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := documentstore.New(db)
	d, err := store.Create(ctx, models.Document{OwnerID: primitive.NewObjectID(), Title: "old", Content: "old"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Update(ctx, d.ID, "new title", "new content"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "new title" || got.Content != "new content" {
		t.Fatalf("update did not stick: %+v", got)
	}
	if got.SizeBytes != int64(len("new content")) {
		t.Fatalf("size_bytes = %d after update, want %d", got.SizeBytes, len("new content"))
	}

	n, err := store.Delete(ctx, d.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("Delete removed %d, want 1", n)
	}
	if _, err := store.GetByID(ctx, d.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("GetByID after delete: err = %v, want ErrNoDocuments", err)
	}
}
