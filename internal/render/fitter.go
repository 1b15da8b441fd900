// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import "sync"

// FitScale computes the uniform scale that fits a fixed-resolution card
// into a responsive container without ever upscaling past 1:1. The scale
// applies to the card element only, never its container, so the
// underlying canvas stays pixel-exact for export.
func FitScale(containerW, containerH, cardW, cardH float64) float64 {
	if containerW <= 0 || containerH <= 0 || cardW <= 0 || cardH <= 0 {
		return 0
	}
	scale := containerW / cardW
	if s := containerH / cardH; s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	return scale
}

// FitCard is FitScale with the studio's design resolution baked in.
func FitCard(containerW, containerH float64) float64 {
	return FitScale(containerW, containerH, CardWidth, CardHeight)
}

// Stage tracks the fit transform currently applied to the on-screen
// card. Capture must happen at 1:1, so the exporter neutralizes the
// transform for the duration of a capture and restores it afterwards
// even when the capture fails.
type Stage struct {
	mu    sync.Mutex
	scale float64
}

// NewStage returns a stage at 1:1.
func NewStage() *Stage {
	return &Stage{scale: 1}
}

// SetViewport recomputes the fit for a new container size and returns
// the resulting scale.
func (s *Stage) SetViewport(w, h float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = FitCard(w, h)
	return s.scale
}

// Scale returns the current fit scale.
func (s *Stage) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

// Neutralize forces the stage to 1:1 and returns the restore function.
// Callers defer the restore so the previous transform comes back no
// matter how the capture ends.
func (s *Stage) Neutralize() (restore func()) {
	s.mu.Lock()
	prev := s.scale
	s.scale = 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.scale = prev
		s.mu.Unlock()
	}
}
