// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// CardStudio server. Every /api route runs behind the session editor
// loader; mutating routes additionally carry CSRF and rate limiting.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cardstudio/internal/handlers"
	"cardstudio/internal/middleware"
	"cardstudio/internal/session"
)

// submitLimit caps pipeline submissions per client: scraping and AI
// rewrites are the expensive path.
const (
	submitLimit  = 10
	submitWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies controls the Secure flag on
// the CSRF cookie and should be true behind TLS.
func New(manager *session.Manager, api *handlers.API, static http.Handler, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no session, no CSRF.
	r.Get("/health", healthHandler)

	submitLimiter := middleware.NewRateLimiter(submitLimit, submitWindow)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadEditor(manager))
		r.Use(middleware.NewCSRF(secureCookies))

		r.Get("/state", api.State)
		r.Get("/ws", api.Subscribe)
		r.Get("/proxy_image", api.ProxyImage)

		// Landing / flow
		r.With(submitLimiter.Middleware).Post("/submit", api.Submit)
		r.Post("/reset", api.Reset)
		r.Post("/select", api.Select)
		r.Post("/next", api.Next)
		r.Post("/back", api.Back)
		r.Post("/generate", api.Generate)
		r.Post("/stage", api.Stage)

		// Overview card edits
		r.Route("/cards/{id}", func(r chi.Router) {
			r.Post("/text", api.UpdateCardText)
			r.Post("/visual", api.UpdateCardVisual)
		})

		// Edit session
		r.Route("/edit", func(r chi.Router) {
			r.Post("/text", api.EditText)
			r.Post("/photo", api.EditPhoto)
			r.Post("/visual", api.EditVisual)
			r.Post("/show_tag", api.EditShowTag)
			r.Post("/cycle_color", api.CycleColor)
		})

		// Themes
		r.Get("/themes", api.Themes)
		r.Post("/theme", api.SetTheme)

		// Export
		r.Post("/export", api.Export)
		r.Get("/export/{name}", api.DownloadCard)
		r.Get("/exports", api.ExportHistory)
		r.Get("/share/qr", api.ShareQR)

		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", api.SaveProject)
			r.Get("/", api.ListProjects)
			r.Post("/{id}/open", api.OpenProject)
			r.Delete("/{id}", api.DeleteProject)
		})
	})

	// Static client
	if static != nil {
		r.Handle("/*", static)
	}

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
