// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export captures finished cards as images. Capture happens at
// design resolution with the stage transform neutralized; the transform
// is restored whether or not the capture succeeds. A card whose
// background cannot be loaded in time is captured over the flat
// fallback instead of failing the batch.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"cardstudio/internal/card"
	"cardstudio/internal/render"
	"cardstudio/internal/storage"
	"cardstudio/internal/theme"
)

// Recorder logs finished exports, typically to the export_log table.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// Record is one logged export artifact.
type Record struct {
	SessionID string
	CardID    card.ID
	Format    Format
	Bytes     int
	URL       string
	CreatedAt time.Time
}

// Artifact is one encoded export output.
type Artifact struct {
	Card   card.ID `json:"card"`
	Format Format  `json:"format"`
	Data   []byte  `json:"-"`
	Size   int     `json:"size"`
	URL    string  `json:"url,omitempty"`
}

// Options selects what an export run produces.
type Options struct {
	Formats   []Format
	SessionID string
	Upload    bool // push artifacts to object storage when configured
}

// Exporter runs the capture pipeline over committed cards.
type Exporter struct {
	raster  *Rasterizer
	fetcher *Fetcher
	store   *storage.Client // optional
	rec     Recorder        // optional
}

// New assembles an exporter. store and rec may be nil.
func New(store *storage.Client, rec Recorder) (*Exporter, error) {
	raster, err := NewRasterizer()
	if err != nil {
		return nil, err
	}
	return &Exporter{
		raster:  raster,
		fetcher: NewFetcher(),
		store:   store,
		rec:     rec,
	}, nil
}

// ExportCard captures a single card in each requested format. stage is
// the session's live fit transform, neutralized for the capture.
func (x *Exporter) ExportCard(ctx context.Context, stage *render.Stage, c card.Card, th *theme.Theme, opts Options) ([]Artifact, error) {
	restore := stage.Neutralize()
	defer restore()
	return x.capture(ctx, c, th, opts)
}

// ExportAll captures every card that has content, in variant order. One
// failing card does not stop the others; the partial artifact set is
// returned alongside the joined errors.
func (x *Exporter) ExportAll(ctx context.Context, stage *render.Stage, cards []card.Card, th *theme.Theme, opts Options) ([]Artifact, error) {
	restore := stage.Neutralize()
	defer restore()

	var artifacts []Artifact
	var errs []error
	for _, c := range cards {
		if c.IsPlaceholder {
			continue
		}
		arts, err := x.capture(ctx, c, th, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("card %s: %w", c.ID, err))
		}
		artifacts = append(artifacts, arts...)
	}
	if len(artifacts) == 0 && len(errs) == 0 {
		return nil, errors.New("export: no cards with content")
	}
	return artifacts, errors.Join(errs...)
}

// capture rasterizes one card and encodes it in every requested format.
func (x *Exporter) capture(ctx context.Context, c card.Card, th *theme.Theme, opts Options) ([]Artifact, error) {
	formats := opts.Formats
	if len(formats) == 0 {
		formats = []Format{FormatPNG}
	}

	var bg image.Image
	if c.BG != "" {
		var err error
		bg, err = x.fetcher.Fetch(ctx, c.BG)
		if err != nil {
			slog.Warn("export background unavailable, using fallback", "card", c.ID, "error", err)
			bg = nil
		}
	}

	showPill := !c.IsPlaceholder && c.EffectiveTag() != ""
	img, err := x.raster.Render(c, showPill, th, bg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var artifacts []Artifact
	for _, f := range formats {
		if !f.Valid() {
			return artifacts, fmt.Errorf("export: unknown format %q", f)
		}
		data, err := Encode(img, f)
		if err != nil {
			return artifacts, err
		}
		art := Artifact{Card: c.ID, Format: f, Data: data, Size: len(data)}

		if opts.Upload && x.store != nil {
			key := storage.ArtifactKey(opts.SessionID, string(c.ID), string(f), now)
			if err := x.store.Upload(ctx, key, f.ContentType(), bytes.NewReader(data), int64(len(data))); err != nil {
				slog.Warn("export upload failed", "card", c.ID, "error", err)
			} else {
				art.URL = x.store.FileURL(key)
			}
		}
		if x.rec != nil {
			rec := Record{
				SessionID: opts.SessionID,
				CardID:    c.ID,
				Format:    f,
				Bytes:     len(data),
				URL:       art.URL,
				CreatedAt: now,
			}
			if err := x.rec.Record(ctx, rec); err != nil {
				slog.Warn("export log write failed", "card", c.ID, "error", err)
			}
		}

		artifacts = append(artifacts, art)
		slog.Info("card exported", "card", c.ID, "format", f, "bytes", len(data))
	}
	return artifacts, nil
}
