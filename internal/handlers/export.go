// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"cardstudio/internal/export"
	"cardstudio/internal/slug"
)

// Export captures all finished cards. POST /api/export
func (a *API) Export(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Formats []string `json:"formats,omitempty"`
		Upload  bool     `json:"upload,omitempty"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ed, id := editorFrom(r)
	v := ed.View()
	th := a.themes.Get(v.ThemeID)

	opts := export.Options{SessionID: id, Upload: req.Upload}
	for _, f := range req.Formats {
		opts.Formats = append(opts.Formats, export.Format(strings.ToLower(f)))
	}

	artifacts, err := a.exporter.ExportAll(r.Context(), a.stage(id), v.Cards, th, opts)
	if err != nil && len(artifacts) == 0 {
		writeError(w, err)
		return
	}
	resp := struct {
		Artifacts []export.Artifact `json:"artifacts"`
		Partial   bool              `json:"partial,omitempty"`
	}{Artifacts: artifacts, Partial: err != nil}
	writeJSON(w, http.StatusOK, resp)
}

// DownloadCard streams one card capture as an attachment.
// GET /api/export/{id}.{format}
func (a *API) DownloadCard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	base, ext, ok := strings.Cut(name, ".")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "expected {card}.{format}"})
		return
	}
	format := export.Format(strings.ToLower(ext))
	if !format.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unknown format"})
		return
	}

	ed, id := editorFrom(r)
	v := ed.View()
	th := a.themes.Get(v.ThemeID)

	var found bool
	for _, c := range v.Cards {
		if c.ID != cardID(base) {
			continue
		}
		found = true
		artifacts, err := a.exporter.ExportCard(r.Context(), a.stage(id), c, th,
			export.Options{Formats: []export.Format{format}, SessionID: id})
		if err != nil || len(artifacts) == 0 {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "capture failed"})
			return
		}
		art := artifacts[0]
		w.Header().Set("Content-Type", format.ContentType())
		filename := slug.Filename(c.Title, "card-"+string(c.ID))
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s.%s"`, filename, format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(art.Data)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown card"})
	}
}

// ExportHistory lists the session's past exports. GET /api/exports
func (a *API) ExportHistory(w http.ResponseWriter, r *http.Request) {
	if a.exports == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	_, id := editorFrom(r)
	entries, err := a.exports.ListBySession(id, 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ShareQR renders a QR code for an exported artifact's URL so the
// result can be pulled onto a phone. GET /api/share/qr?url=...
func (a *API) ShareQR(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" || len(target) > maxURLLen {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing url"})
		return
	}
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "qr encode failed"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
