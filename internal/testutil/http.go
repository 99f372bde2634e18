package testutil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID          primitive.ObjectID
	Name        string
	Email       string
	AccountType string
	Plan        string
	TeamID      *primitive.ObjectID
}

// IndividualUser returns a TestUser on the free plan.
func IndividualUser() TestUser {
	return TestUser{
		ID:          primitive.NewObjectID(),
		Name:        "Test Individual",
		Email:       "individual@test.com",
		AccountType: "individual",
		Plan:        "free",
	}
}

// BusinessUser returns a TestUser with a business account on the pro plan.
func BusinessUser() TestUser {
	return TestUser{
		ID:          primitive.NewObjectID(),
		Name:        "Test Business",
		Email:       "business@test.com",
		AccountType: "business",
		Plan:        "pro",
	}
}

// BusinessUserOnTeam returns a business TestUser that belongs to teamID.
func BusinessUserOnTeam(teamID primitive.ObjectID) TestUser {
	u := BusinessUser()
	u.TeamID = &teamID
	return u
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the auth middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	requestUser := &auth.RequestUser{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccountType: user.AccountType,
		Plan:        user.Plan,
		TeamID:      user.TeamID,
	}
	return auth.WithTestUser(r, requestUser)
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Envelope mirrors the API's response envelope for assertions.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// DecodeEnvelope parses a recorded response body into an Envelope.
func DecodeEnvelope(t interface{ Fatalf(string, ...any) }, rec *httptest.ResponseRecorder) Envelope {
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}
