// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package theme loads the studio's theme documents: small JSON files of
// CSS custom-property values, font configuration, per-variant default
// layouts and overlay presets. Themes are applied once per session and
// never mutated by the editor core.
package theme

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"cardstudio/internal/card"
)

//go:embed themes
var themeFS embed.FS

// FontConfig is the font family/weight block a theme ships.
type FontConfig struct {
	CardBodyFont string `json:"cardBodyFont"`
	HeadlineFont string `json:"headlineFont"`
	FontWeight   string `json:"fontWeight"`
}

// Theme is one theme document.
type Theme struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	CSSVariables map[string]string       `json:"cssVariables"`
	FontConfig   FontConfig              `json:"fontConfig"`
	Layouts      map[card.ID]card.Layout `json:"defaultLayouts"`
	Overlays     []string                `json:"overlayPresets"`
}

// Brand returns the theme's accent color hex ("--brand"), falling back
// to the studio default accent.
func (t *Theme) Brand() string {
	if v, ok := t.CSSVariables["--brand"]; ok && v != "" {
		return v
	}
	return "#CCFF00"
}

// BrandRGB resolves the accent to an r,g,b triple. 3- and 6-digit hex
// are both supported; invalid values fall back to the default accent.
func (t *Theme) BrandRGB() (r, g, b uint8) {
	r, g, b, err := ParseHex(t.Brand())
	if err != nil {
		return 204, 255, 0
	}
	return r, g, b
}

// ParseHex parses a #RGB or #RRGGBB color string.
func ParseHex(s string) (r, g, b uint8, err error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	switch len(s) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = s[i]
			expanded[2*i+1] = s[i]
		}
		s = string(expanded)
	case 6:
	default:
		return 0, 0, 0, fmt.Errorf("theme: invalid hex color %q", s)
	}

	var vals [3]uint8
	for i := 0; i < 3; i++ {
		v, perr := parseHexByte(s[2*i], s[2*i+1])
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("theme: invalid hex color %q", s)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

func parseHexByte(hi, lo byte) (uint8, error) {
	h, err := hexDigit(hi)
	if err != nil {
		return 0, err
	}
	l, err := hexDigit(lo)
	if err != nil {
		return 0, err
	}
	return h<<4 | l, nil
}

func hexDigit(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("bad hex digit %q", c)
}

// IsValidHex reports whether s is a #RGB or #RRGGBB color.
func IsValidHex(s string) bool {
	_, _, _, err := ParseHex(s)
	return err == nil && len(s) > 0 && s[0] == '#'
}

// Registry holds all loaded themes.
type Registry struct {
	themes map[string]*Theme
	defID  string
}

// LoadEmbedded parses every theme document embedded in the binary.
// The sentient theme is the default when present.
func LoadEmbedded() (*Registry, error) {
	return load(themeFS, "themes")
}

func load(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("theme: read dir: %w", err)
	}

	reg := &Registry{themes: make(map[string]*Theme)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("theme: read %s: %w", e.Name(), err)
		}
		var t Theme
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("theme: parse %s: %w", e.Name(), err)
		}
		if t.ID == "" {
			return nil, fmt.Errorf("theme: %s has no id", e.Name())
		}
		reg.themes[t.ID] = &t
	}

	if len(reg.themes) == 0 {
		return nil, fmt.Errorf("theme: no theme documents found")
	}

	reg.defID = "sentient"
	if _, ok := reg.themes[reg.defID]; !ok {
		reg.defID = reg.List()[0].ID
	}
	return reg, nil
}

// Get returns the theme with the given id, or the default theme if the
// id is unknown (a stale persisted id must never break a session).
func (r *Registry) Get(id string) *Theme {
	if t, ok := r.themes[id]; ok {
		return t
	}
	return r.themes[r.defID]
}

// Default returns the default theme.
func (r *Registry) Default() *Theme { return r.themes[r.defID] }

// List returns all themes sorted by id.
func (r *Registry) List() []*Theme {
	out := make([]*Theme, 0, len(r.themes))
	for _, t := range r.themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
