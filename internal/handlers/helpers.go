// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the studio's JSON API. Handlers stay
// thin: they decode, call the session's editor, and encode the view.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cardstudio/internal/editor"
	"cardstudio/internal/state"
)

// maxRequestBody caps JSON request bodies. Uploaded photos arrive as
// data URIs, so the cap is generous.
const maxRequestBody = 12 << 20

// writeJSON encodes v with the standard headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

// readJSON decodes the request body into dst, rejecting unknown fields
// and oversized bodies.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// errorBody is the uniform error payload.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps editor errors onto HTTP statuses. Rejected events are
// 409: the request was well-formed but not legal in the current mode,
// and the client should refresh its state.
func writeError(w http.ResponseWriter, err error) {
	var rejected *state.ErrRejected
	if errors.As(err, &rejected) || errors.Is(err, editor.ErrNotEditing) {
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}
