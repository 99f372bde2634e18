// internal/app/features/documents/handler_test.go

package documents_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tessergate/chatforge/internal/app/features/documents"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/domain/models"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*documents.Handler, *docstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	docs := docstore.New(db)
	return documents.NewHandler(docs, usagestore.New(db), zap.NewNop()), docs
}

func upload(h *documents.Handler, caller testutil.TestUser, body string) *httptest.ResponseRecorder {
	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/documents", body), caller)
	rec := httptest.NewRecorder()
	h.HandleUpload(rec, req)
	return rec
}

func TestUpload(t *testing.T) {
	h, _ := newHandler(t)
	caller := testutil.BusinessUser()

	rec := upload(h, caller, `{"title":"FAQ","content":"How to reset a password."}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	var data struct {
		Title     string `json:"title"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Title != "FAQ" || data.SizeBytes == 0 {
		t.Fatalf("data: %+v", data)
	}
}

func TestUploadSanitizesHTML(t *testing.T) {
	h, _ := newHandler(t)
	caller := testutil.BusinessUser()

	rec := upload(h, caller, `{"title":"Evil","content":"hello <script>alert(1)</script>world"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	var data struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if strings.Contains(data.Content, "<script>") || strings.Contains(data.Content, "alert(1)") {
		t.Fatalf("script survived sanitization: %q", data.Content)
	}
}

func TestUploadValidation(t *testing.T) {
	h, _ := newHandler(t)
	caller := testutil.IndividualUser()

	cases := []struct {
		name string
		body string
	}{
		{"missing title", `{"content":"c"}`},
		{"missing content", `{"title":"t"}`},
		{"team share without team", `{"title":"t","content":"c","team_shared":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := upload(h, caller, tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestUploadDocumentLimit(t *testing.T) {
	h, _ := newHandler(t)
	caller := testutil.IndividualUser() // free plan: five documents

	for i := 0; i < 5; i++ {
		if rec := upload(h, caller, `{"title":"doc","content":"text"}`); rec.Code != http.StatusCreated {
			t.Fatalf("upload %d: status = %d", i, rec.Code)
		}
	}
	rec := upload(h, caller, `{"title":"one too many","content":"text"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("over-limit upload: status = %d, want 403", rec.Code)
	}
}

func TestSharingToggle(t *testing.T) {
	h, docs := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamID := primitive.NewObjectID()
	caller := testutil.BusinessUserOnTeam(teamID)

	rec := upload(h, caller, `{"title":"shared","content":"c","team_shared":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status = %d", rec.Code)
	}
	env := testutil.DecodeEnvelope(t, rec)
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	docID, err := primitive.ObjectIDFromHex(created.ID)
	if err != nil {
		t.Fatalf("bad id %q", created.ID)
	}

	got, err := docs.GetByID(ctx, docID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != teamID {
		t.Fatal("upload did not record the team share")
	}

	req := testutil.WithUser(testutil.NewJSONRequest("PUT", "/documents/"+created.ID+"/sharing",
		`{"team_shared":false}`), caller)
	req = testutil.WithChiURLParam(req, "documentID", created.ID)
	rec = httptest.NewRecorder()
	h.HandleSharing(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unshare: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	got, err = docs.GetByID(ctx, docID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TeamID != nil {
		t.Fatal("unshare did not clear the team")
	}
}

func TestViewAuthorization(t *testing.T) {
	h, docs := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.IndividualUser()
	doc, err := docs.Create(ctx, models.Document{OwnerID: owner.ID, Title: "private", Content: "text"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	view := func(caller testutil.TestUser, id string) *httptest.ResponseRecorder {
		req := testutil.WithUser(httptest.NewRequest("GET", "/documents/"+id, nil), caller)
		req = testutil.WithChiURLParam(req, "documentID", id)
		rec := httptest.NewRecorder()
		h.ServeView(rec, req)
		return rec
	}

	if rec := view(owner, doc.ID.Hex()); rec.Code != http.StatusOK {
		t.Fatalf("owner view: status = %d", rec.Code)
	}
	if rec := view(testutil.IndividualUser(), doc.ID.Hex()); rec.Code != http.StatusForbidden {
		t.Fatalf("stranger view: status = %d, want 403", rec.Code)
	}
	// A missing document is a 404 before any authorization answer.
	if rec := view(testutil.IndividualUser(), primitive.NewObjectID().Hex()); rec.Code != http.StatusNotFound {
		t.Fatalf("missing document: status = %d, want 404", rec.Code)
	}
	if rec := view(owner, "not-an-id"); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", rec.Code)
	}
}
