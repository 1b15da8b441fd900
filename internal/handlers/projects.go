// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardstudio/internal/editor"
	"cardstudio/internal/models"
)

// projectsEnabled guards the project endpoints when the database is
// not configured.
func (a *API) projectsEnabled(w http.ResponseWriter) bool {
	if a.projects == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "projects require a database"})
		return false
	}
	return true
}

// SaveProject stores the current editor snapshot as a named project.
// POST /api/projects
func (a *API) SaveProject(w http.ResponseWriter, r *http.Request) {
	if !a.projectsEnabled(w) {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if msg := validateProjectTitle(req.Title); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	ed, id := editorFrom(r)
	snap := ed.Snap()
	payload, err := json.Marshal(snap)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "snapshot failed"})
		return
	}

	title := req.Title
	if title == "" {
		title = "Untitled"
	}
	p, err := a.projects.Create(&models.Project{
		SessionID: id,
		Title:     title,
		SourceURL: snap.Machine.URL,
		Snapshot:  payload,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "save failed"})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListProjects returns the session's saved projects. GET /api/projects
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	if !a.projectsEnabled(w) {
		return
	}
	_, id := editorFrom(r)
	items, err := a.projects.ListBySession(id, 50, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "list failed"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// OpenProject restores a saved project into the live editor.
// POST /api/projects/{id}/open
func (a *API) OpenProject(w http.ResponseWriter, r *http.Request) {
	if !a.projectsEnabled(w) {
		return
	}
	pid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid project id"})
		return
	}

	ed, id := editorFrom(r)
	p, err := a.projects.FindByID(pid)
	if err != nil || p == nil || p.SessionID != id {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "project not found"})
		return
	}

	var snap editor.Snapshot
	if err := json.Unmarshal(p.Snapshot, &snap); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "stored snapshot unreadable"})
		return
	}
	ed.Reset()
	ed.Restore(snap)
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// DeleteProject removes a saved project. DELETE /api/projects/{id}
func (a *API) DeleteProject(w http.ResponseWriter, r *http.Request) {
	if !a.projectsEnabled(w) {
		return
	}
	pid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid project id"})
		return
	}
	_, id := editorFrom(r)
	if err := a.projects.Delete(pid, id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "project not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
