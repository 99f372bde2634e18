// internal/app/system/httpjson/httpjson.go

// Package httpjson writes the API's JSON envelope.
//
// Every response is {"success": true, "data": ...} or
// {"success": false, "error": "..."}.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/tessergate/chatforge/internal/app/system/apperr"
)

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK writes 200 with data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, dataEnvelope{Success: true, Data: data})
}

// Created writes 201 with data.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, dataEnvelope{Success: true, Data: data})
}

// Accepted writes 202 with data. Used when work continues in the background.
func Accepted(w http.ResponseWriter, data any) {
	write(w, http.StatusAccepted, dataEnvelope{Success: true, Data: data})
}

// Fail maps err through the apperr taxonomy and writes the failure envelope.
func Fail(w http.ResponseWriter, err error) {
	write(w, apperr.Status(err), errorEnvelope{Success: false, Error: apperr.Message(err)})
}

// FailStatus writes the failure envelope with an explicit status and message.
func FailStatus(w http.ResponseWriter, status int, msg string) {
	write(w, status, errorEnvelope{Success: false, Error: msg})
}

func write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
