// internal/app/features/companies/handler_test.go

package companies_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tessergate/chatforge/internal/app/features/companies"
	companystore "github.com/tessergate/chatforge/internal/app/store/companies"
	"github.com/tessergate/chatforge/internal/app/system/indexes"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*companies.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	h := companies.NewHandler(companystore.New(db, zap.NewNop()), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func create(h *companies.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/companies", body))
	return rec
}

func updateContext(h *companies.Handler, companyID, body string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest("POST", "/companies/"+companyID+"/context", body)
	req = testutil.WithChiURLParam(req, "companyID", companyID)
	rec := httptest.NewRecorder()
	h.HandleUpdateContext(rec, req)
	return rec
}

func getContext(h *companies.Handler, companyID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/companies/"+companyID+"/context", nil)
	req = testutil.WithChiURLParam(req, "companyID", companyID)
	rec := httptest.NewRecorder()
	h.ServeContext(rec, req)
	return rec
}

func TestCreateCompany(t *testing.T) {
	h, _ := newHandler(t)

	rec := create(h, `{"companyId":"acme","name":"Acme","context":"We sell anvils.","chatbotUrl":"https://acme.example"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	var data struct {
		Company struct {
			CompanyID      string `json:"company_id"`
			ContextVersion int64  `json:"context_version"`
		} `json:"company"`
		Context struct {
			Version  int64 `json:"version"`
			IsActive bool  `json:"is_active"`
		} `json:"context"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Company.CompanyID != "acme" || data.Company.ContextVersion != 1 {
		t.Fatalf("company: %+v", data.Company)
	}
	if data.Context.Version != 1 || !data.Context.IsActive {
		t.Fatalf("context: %+v", data.Context)
	}
}

func TestCreateCompanyValidation(t *testing.T) {
	h, _ := newHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing companyId", `{"name":"A","context":"c"}`},
		{"missing name", `{"companyId":"a","context":"c"}`},
		{"missing context", `{"companyId":"a","name":"A"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := create(h, tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateCompanyDuplicate(t *testing.T) {
	h, _ := newHandler(t)

	if rec := create(h, `{"companyId":"dup","name":"First","context":"c"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	if rec := create(h, `{"companyId":"dup","name":"Second","context":"c"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create: status = %d, want 400", rec.Code)
	}
}

func TestUpdateAndResolveContext(t *testing.T) {
	h, _ := newHandler(t)

	if rec := create(h, `{"companyId":"vers","name":"Vers","context":"first"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}
	rec := updateContext(h, "vers", `{"context":"second"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	var updated struct {
		Company   string     `json:"company"`
		Context   string     `json:"context"`
		Version   int64      `json:"version"`
		UpdatedAt *time.Time `json:"updatedAt"`
		IsActive  bool       `json:"isActive"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decode update data: %v", err)
	}
	if updated.Company != "vers" || updated.Context != "second" || updated.Version != 2 {
		t.Fatalf("update response: %+v", updated)
	}
	if !updated.IsActive {
		t.Fatal("new version not reported active")
	}
	if updated.UpdatedAt == nil || updated.UpdatedAt.IsZero() {
		t.Fatal("updatedAt missing from update response")
	}

	rec = getContext(h, "vers")
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve: status = %d", rec.Code)
	}
	env = testutil.DecodeEnvelope(t, rec)
	var data struct {
		Company string `json:"company"`
		Context string `json:"context"`
		Version int64  `json:"version"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Company != "vers" || data.Context != "second" || data.Version != 2 {
		t.Fatalf("resolved: %+v", data)
	}
	if data.Source != companystore.SourceContextCollection {
		t.Fatalf("source = %q", data.Source)
	}
}

func TestUpdateContextMissingCompany(t *testing.T) {
	h, _ := newHandler(t)

	if rec := updateContext(h, "ghost", `{"context":"text"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResolveContextFallback(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Legacy record: denormalized context only, no version records.
	fx.CreateCompany(ctx, "legacy", "Legacy", "denorm text", false)

	rec := getContext(h, "legacy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	var data struct {
		Context string `json:"context"`
		Version int64  `json:"version"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Source != companystore.SourceCompanyFallback || data.Version != 1 {
		t.Fatalf("resolved: %+v", data)
	}
}

func TestResolveContextMissing(t *testing.T) {
	h, _ := newHandler(t)

	if rec := getContext(h, "nobody"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDiagnosticNeverNotFound(t *testing.T) {
	h, fx := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	diag := func(companyID string) (int, map[string]any) {
		req := httptest.NewRequest("GET", "/companies/"+companyID+"/context-diagnostic", nil)
		req = testutil.WithChiURLParam(req, "companyID", companyID)
		rec := httptest.NewRecorder()
		h.ServeDiagnostic(rec, req)
		env := testutil.DecodeEnvelope(t, rec)
		var data map[string]any
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		return rec.Code, data
	}

	code, data := diag("absent")
	if code != http.StatusOK {
		t.Fatalf("missing company diagnostic: status = %d, want 200", code)
	}
	if data["exists"] != false || data["advice"] != companystore.AdviceUploadDocument {
		t.Fatalf("missing company diagnostic: %+v", data)
	}

	fx.CreateCompany(ctx, "present", "Present", "text", true)
	code, data = diag("present")
	if code != http.StatusOK {
		t.Fatalf("present company diagnostic: status = %d", code)
	}
	if data["exists"] != true || data["advice"] != companystore.AdviceNone {
		t.Fatalf("present company diagnostic: %+v", data)
	}
}
