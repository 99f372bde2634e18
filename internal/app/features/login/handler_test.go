// internal/app/features/login/handler_test.go

package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tessergate/chatforge/internal/app/features/login"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/indexes"
	"github.com/tessergate/chatforge/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) *login.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	tokens := auth.NewTokenIssuer("login-test-secret", time.Hour)
	return login.NewHandler(userstore.New(db), tokens, zap.NewNop())
}

func register(t *testing.T, h *login.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, testutil.NewJSONRequest("POST", "/auth/register", body))
	return rec
}

func TestRegister(t *testing.T) {
	h := newHandler(t)

	rec := register(t, h, `{"full_name":"Ada Example","email":"ada@example.com","password":"longenough","account_type":"business"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("success = false: %s", env.Error)
	}

	var data struct {
		User struct {
			Email        string `json:"email"`
			AccountType  string `json:"account_type"`
			Plan         string `json:"plan"`
			PasswordHash string `json:"password_hash"`
		} `json:"user"`
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.Email != "ada@example.com" || data.User.AccountType != "business" {
		t.Fatalf("user: %+v", data.User)
	}
	if data.User.Plan != "free" {
		t.Fatalf("new account plan = %q, want free", data.User.Plan)
	}
	if data.User.PasswordHash != "" {
		t.Fatal("password hash leaked in the response")
	}
	if data.Token == "" || data.ExpiresIn != 3600 {
		t.Fatalf("token %q expires_in %d", data.Token, data.ExpiresIn)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.c","password":"longenough"}`},
		{"bad email", `{"full_name":"A","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"full_name":"A","email":"a@b.c","password":"short"}`},
		{"bad account type", `{"full_name":"A","email":"a@b.c","password":"longenough","account_type":"corporate"}`},
		{"not json", `{{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := register(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHandler(t)

	if rec := register(t, h, `{"full_name":"First","email":"taken@example.com","password":"longenough"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	rec := register(t, h, `{"full_name":"Second","email":"Taken@Example.com","password":"longenough"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: status = %d, want 400", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h := newHandler(t)
	if rec := register(t, h, `{"full_name":"Login Test","email":"login@example.com","password":"rightpassword"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/auth/login",
		`{"email":"LOGIN@example.com","password":"rightpassword"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d (body %s)", rec.Code, rec.Body.String())
	}
	env := testutil.DecodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("login failed: %s", env.Error)
	}
}

func TestLoginRejections(t *testing.T) {
	h := newHandler(t)
	if rec := register(t, h, `{"full_name":"Login Test","email":"reject@example.com","password":"rightpassword"}`); rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"reject@example.com","password":"wrongpassword"}`},
		{"unknown email", `{"email":"nobody@example.com","password":"rightpassword"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, testutil.NewJSONRequest("POST", "/auth/login", tc.body))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			env := testutil.DecodeEnvelope(t, rec)
			// Wrong email and wrong password read identically.
			if env.Error != "invalid email or password" {
				t.Fatalf("error = %q", env.Error)
			}
		})
	}
}
