// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"sync"

	"cardstudio/internal/editor"
	"cardstudio/internal/export"
	"cardstudio/internal/middleware"
	"cardstudio/internal/proxy"
	"cardstudio/internal/realtime"
	"cardstudio/internal/render"
	"cardstudio/internal/session"
	"cardstudio/internal/store"
	"cardstudio/internal/theme"
)

// API carries the handler dependencies.
type API struct {
	manager  *session.Manager
	themes   *theme.Registry
	hub      *realtime.Hub
	exporter *export.Exporter
	projects *store.ProjectStore   // optional
	exports  *store.ExportLogStore // optional
	proxy    *proxy.Proxy

	mu     sync.Mutex
	stages map[string]*render.Stage
}

// NewAPI wires the handler set. projects and exports may be nil when
// the database is not configured.
func NewAPI(manager *session.Manager, themes *theme.Registry, hub *realtime.Hub,
	exporter *export.Exporter, projects *store.ProjectStore, exports *store.ExportLogStore,
	prox *proxy.Proxy) *API {
	a := &API{
		manager:  manager,
		themes:   themes,
		hub:      hub,
		exporter: exporter,
		projects: projects,
		exports:  exports,
		proxy:    prox,
		stages:   make(map[string]*render.Stage),
	}
	// Stages live exactly as long as their session's editor.
	manager.OnEvict(a.dropStage)
	return a
}

// stage returns the session's stage, creating it on first use.
func (a *API) stage(sessionID string) *render.Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.stages[sessionID]
	if !ok {
		st = render.NewStage()
		a.stages[sessionID] = st
	}
	return st
}

func (a *API) dropStage(sessionID string) {
	a.mu.Lock()
	delete(a.stages, sessionID)
	a.mu.Unlock()
}

// StateResponse is the full client-facing state: the editor view plus
// the projection of every card (and of the edit session when open).
type StateResponse struct {
	editor.View
	Views       []render.CardView `json:"views"`
	SessionView *render.CardView  `json:"session_view,omitempty"`
	Themes      []string          `json:"themes"`
	Scale       float64           `json:"scale"`
}

// buildState assembles the state payload for one editor.
func (a *API) buildState(ed *editor.Editor, sessionID string) StateResponse {
	v := ed.View()
	th := a.themes.Get(v.ThemeID)

	resp := StateResponse{
		View:  v,
		Scale: a.stage(sessionID).Scale(),
	}
	for _, c := range v.Cards {
		resp.Views = append(resp.Views, render.Project(c, th))
	}
	if v.Session != nil {
		sv := render.ProjectSession(v.Session, th)
		resp.SessionView = &sv
	}
	for _, t := range a.themes.List() {
		resp.Themes = append(resp.Themes, t.ID)
	}
	return resp
}

// editorFrom pulls the session editor installed by middleware.
func editorFrom(r *http.Request) (*editor.Editor, string) {
	return middleware.EditorFromCtx(r.Context()), middleware.SessionIDFromCtx(r.Context())
}

// State returns the current view. GET /api/state
func (a *API) State(w http.ResponseWriter, r *http.Request) {
	ed, id := editorFrom(r)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// Submit starts the pipeline for an article URL. POST /api/submit
func (a *API) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if msg := validateArticleURL(req.URL); msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	ed, id := editorFrom(r)
	if err := ed.SubmitURL(req.URL); err != nil {
		writeError(w, err)
		return
	}
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusAccepted, a.buildState(ed, id))
}

// Reset returns the editor to the landing screen. POST /api/reset
func (a *API) Reset(w http.ResponseWriter, r *http.Request) {
	ed, id := editorFrom(r)
	ed.Reset()
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// Select marks a card active. POST /api/select
func (a *API) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Card string `json:"card"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed, id := editorFrom(r)
	if err := ed.SelectCard(cardID(req.Card)); err != nil {
		writeError(w, err)
		return
	}
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// Next opens the edit screen for the active card. POST /api/next
func (a *API) Next(w http.ResponseWriter, r *http.Request) {
	a.flow(w, r, func(ed *editor.Editor) error { return ed.BeginEdit(r.Context()) })
}

// Back abandons the edit session. POST /api/back
func (a *API) Back(w http.ResponseWriter, r *http.Request) {
	a.flow(w, r, func(ed *editor.Editor) error { return ed.CancelEdit(r.Context()) })
}

// Generate commits the edit session and returns to the overview.
// POST /api/generate
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	a.flow(w, r, func(ed *editor.Editor) error { return ed.Generate(r.Context()) })
}

// flow runs one transition operation and responds with fresh state.
func (a *API) flow(w http.ResponseWriter, r *http.Request, op func(*editor.Editor) error) {
	ed, id := editorFrom(r)
	if err := op(ed); err != nil {
		writeError(w, err)
		return
	}
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// Stage records the client viewport and returns the fit scale.
// POST /api/stage
func (a *API) Stage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	_, id := editorFrom(r)
	scale := a.stage(id).SetViewport(req.Width, req.Height)
	writeJSON(w, http.StatusOK, map[string]float64{"scale": scale})
}

// Themes lists the available themes. GET /api/themes
func (a *API) Themes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.themes.List())
}

// SetTheme switches the session's theme. POST /api/theme
func (a *API) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ed, id := editorFrom(r)
	// Get falls back to the default for unknown ids; store what resolved.
	ed.SetTheme(a.themes.Get(req.ID).ID)
	a.manager.Persist(r.Context(), id)
	writeJSON(w, http.StatusOK, a.buildState(ed, id))
}

// Subscribe upgrades to the session's event stream. GET /api/ws
func (a *API) Subscribe(w http.ResponseWriter, r *http.Request) {
	_, id := editorFrom(r)
	a.hub.Subscribe(w, r, id)
}

// ProxyImage relays a remote background. GET /api/proxy_image
func (a *API) ProxyImage(w http.ResponseWriter, r *http.Request) {
	a.proxy.ServeHTTP(w, r)
}
