// internal/app/features/aimodels/handler_test.go

package aimodels_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tessergate/chatforge/internal/app/features/aimodels"
	modelstore "github.com/tessergate/chatforge/internal/app/store/aimodels"
	docstore "github.com/tessergate/chatforge/internal/app/store/documents"
	usagestore "github.com/tessergate/chatforge/internal/app/store/usage"
	"github.com/tessergate/chatforge/internal/app/system/tasks"
	"github.com/tessergate/chatforge/internal/domain/models"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h      *aimodels.Handler
	fx     *testutil.Fixtures
	ms     *modelstore.Store
	runner *tasks.Runner
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ms := modelstore.New(db)
	runner := tasks.NewRunner(zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = runner.Shutdown(ctx)
	})
	h := aimodels.NewHandler(ms, docstore.New(db), usagestore.New(db), runner, 5*time.Millisecond, zap.NewNop())
	return &env{h: h, fx: testutil.NewFixtures(t, db), ms: ms, runner: runner}
}

func TestCreateModel(t *testing.T) {
	e := newEnv(t)

	caller := testutil.BusinessUser()
	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/models",
		`{"name":"Support Bot","description":"answers tickets"}`), caller)
	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	env := testutil.DecodeEnvelope(t, rec)
	var data struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Name != "Support Bot" || data.Status != models.ModelDraft {
		t.Fatalf("data: %+v", data)
	}
}

func TestCreateModelLimit(t *testing.T) {
	e := newEnv(t)

	caller := testutil.IndividualUser() // free plan: one model
	body := `{"name":"Only One"}`
	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/models", body), caller)
	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d", rec.Code)
	}

	req = testutil.WithUser(testutil.NewJSONRequest("POST", "/models", body), caller)
	rec = httptest.NewRecorder()
	e.h.HandleCreate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("second create: status = %d, want 403", rec.Code)
	}
}

func TestTrain(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := testutil.BusinessUser()
	doc := e.fx.CreateDocument(ctx, caller.ID, nil, "training doc", "material")
	model := e.fx.CreateModel(ctx, caller.ID, "Trainee", models.ModelDraft, nil)

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/models/"+model.ID.Hex()+"/train",
		`{"document_ids":["`+doc.ID.Hex()+`"]}`), caller)
	req = testutil.WithChiURLParam(req, "modelID", model.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleTrain(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}

	// The model flips to training immediately; completion lands through the
	// background task a few ticks later.
	got, err := e.ms.GetByID(ctx, model.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.ModelTraining {
		t.Fatalf("status right after train = %q, want training", got.Status)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err = e.ms.GetByID(ctx, model.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status == models.ModelCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("model never completed: status %q progress %d", got.Status, got.Progress)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %d after completion, want 100", got.Progress)
	}
	if got.TrainedAt == nil {
		t.Fatal("trained_at not set")
	}
	if len(got.DocumentIDs) != 1 || got.DocumentIDs[0] != doc.ID {
		t.Fatalf("document_ids: %v", got.DocumentIDs)
	}
}

func TestTrainAlreadyTraining(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := testutil.BusinessUser()
	doc := e.fx.CreateDocument(ctx, caller.ID, nil, "doc", "material")
	model := e.fx.CreateModel(ctx, caller.ID, "Busy", models.ModelTraining, nil)

	req := testutil.WithUser(testutil.NewJSONRequest("POST", "/models/"+model.ID.Hex()+"/train",
		`{"document_ids":["`+doc.ID.Hex()+`"]}`), caller)
	req = testutil.WithChiURLParam(req, "modelID", model.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleTrain(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestTrainValidation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := testutil.BusinessUser()
	model := e.fx.CreateModel(ctx, caller.ID, "Untrained", models.ModelDraft, nil)
	strangerDoc := e.fx.CreateDocument(ctx, primitive.NewObjectID(), nil, "not yours", "text")

	train := func(body string) *httptest.ResponseRecorder {
		req := testutil.WithUser(testutil.NewJSONRequest("POST",
			"/models/"+model.ID.Hex()+"/train", body), caller)
		req = testutil.WithChiURLParam(req, "modelID", model.ID.Hex())
		rec := httptest.NewRecorder()
		e.h.HandleTrain(rec, req)
		return rec
	}

	if rec := train(`{"document_ids":[]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty document_ids: status = %d, want 400", rec.Code)
	}
	if rec := train(`{"document_ids":["nope"]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", rec.Code)
	}
	if rec := train(`{"document_ids":["` + primitive.NewObjectID().Hex() + `"]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown document: status = %d, want 400", rec.Code)
	}
	if rec := train(`{"document_ids":["` + strangerDoc.ID.Hex() + `"]}`); rec.Code != http.StatusForbidden {
		t.Fatalf("unreadable document: status = %d, want 403", rec.Code)
	}
}
