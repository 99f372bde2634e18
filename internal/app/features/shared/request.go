// internal/app/features/shared/request.go

// Package shared holds request plumbing common to the JSON feature handlers.
package shared

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request bodies are small JSON documents; anything larger is a client error.
const maxBodyBytes = 1 << 20

// DecodeJSON reads the request body into v. Malformed or oversized bodies
// come back as a Validation error so handlers can pass it straight to
// httpjson.Fail.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// URLObjectID parses the named chi URL parameter as an ObjectID.
func URLObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name)
	}
	return id, nil
}
