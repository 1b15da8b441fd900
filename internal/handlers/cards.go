// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cardstudio/internal/card"
	"cardstudio/internal/editor"
)

// cardID normalizes a path or body value to a variant id.
func cardID(s string) card.ID {
	return card.ID(strings.ToUpper(strings.TrimSpace(s)))
}

// UpdateCardText edits a committed card from the overview.
// POST /api/cards/{id}/text
func (a *API) UpdateCardText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if msg := validateText(req.Field, req.Value); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	ed, id := editorFrom(r)
	err := ed.UpdateCardText(cardID(chi.URLParam(r, "id")), card.TextField(req.Field), req.Value)
	a.respond(w, r, ed, id, err)
}

// UpdateCardVisual edits a committed card's visual field from the
// overview. POST /api/cards/{id}/visual
func (a *API) UpdateCardVisual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ed, id := editorFrom(r)
	err := ed.UpdateCardVisual(cardID(chi.URLParam(r, "id")), card.VisualField(req.Field), req.Value)
	a.respond(w, r, ed, id, err)
}

// EditText sets an edit-session text field, either copied from a
// variant or typed by the user. POST /api/edit/text
func (a *API) EditText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		From  string `json:"from,omitempty"`  // variant id to copy from
		Value string `json:"value,omitempty"` // custom text
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ed, id := editorFrom(r)
	var err error
	if req.From != "" {
		err = ed.EditTextFromVariant(card.TextField(req.Field), cardID(req.From))
	} else {
		if msg := validateText(req.Field, req.Value); msg != "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
			return
		}
		err = ed.EditTextCustom(card.TextField(req.Field), req.Value)
	}
	a.respond(w, r, ed, id, err)
}

// EditPhoto sets the edit session's background, from a variant or an
// uploaded data URI. POST /api/edit/photo
func (a *API) EditPhoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from,omitempty"`
		Data string `json:"data,omitempty"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ed, id := editorFrom(r)
	var err error
	if req.From != "" {
		err = ed.EditPhotoFromVariant(cardID(req.From))
	} else {
		if msg := validatePhotoData(req.Data); msg != "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
			return
		}
		err = ed.EditPhotoCustom(req.Data)
	}
	a.respond(w, r, ed, id, err)
}

// EditVisual adjusts a session filter, overlay or layout value.
// POST /api/edit/visual
func (a *API) EditVisual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed, id := editorFrom(r)
	a.respond(w, r, ed, id, ed.EditVisual(card.VisualField(req.Field), req.Value))
}

// EditShowTag toggles the session's pill. POST /api/edit/show_tag
func (a *API) EditShowTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Show bool `json:"show"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed, id := editorFrom(r)
	a.respond(w, r, ed, id, ed.EditShowTag(req.Show))
}

// CycleColor advances a session color slot. POST /api/edit/cycle_color
func (a *API) CycleColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed, id := editorFrom(r)
	_, err := ed.CycleColor(card.VisualField(req.Field))
	a.respond(w, r, ed, id, err)
}

// respond persists and returns fresh state, or maps the error.
func (a *API) respond(w http.ResponseWriter, r *http.Request, ed *editor.Editor, id string, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}
