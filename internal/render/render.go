// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render projects card data onto a view model. It is the only
// place visual attributes are computed: handlers and the editor mutate
// data and call Project, nothing else decides colors, filters or font
// sizes. Projection is pure and idempotent — the same card and theme
// always produce the same CardView.
package render

import (
	"fmt"
	"net/url"
	"strings"

	"cardstudio/internal/card"
	"cardstudio/internal/markdown"
	"cardstudio/internal/theme"
)

// Design resolution of a card canvas. The on-screen element is scaled to
// fit its container but stays pixel-exact at this size for export.
const (
	CardWidth  = 1080
	CardHeight = 1440
)

// ProxyPath is the image-proxy endpoint remote backgrounds are routed
// through so exported canvases are never tainted by cross-origin pixels.
const ProxyPath = "/api/proxy_image"

// FontSpec is a fixed font-size/line-height pair for one text slot.
type FontSpec struct {
	Size       float64 `json:"size"`
	LineHeight float64 `json:"line_height"`
}

// LayoutFonts is the per-layout font table. Sizes are fixed by layout —
// dynamic shrink-to-fit measurement was tried in earlier drafts of the
// UI and fought multi-line contenteditable text, so the table is the
// contract now.
type LayoutFonts struct {
	Title    FontSpec `json:"title"`
	Subtitle FontSpec `json:"subtitle"`
}

var layoutFontTable = map[card.Layout]LayoutFonts{
	card.LayoutStandard:     {Title: FontSpec{84, 0.98}, Subtitle: FontSpec{32, 1.15}},
	card.LayoutCentered:     {Title: FontSpec{92, 0.98}, Subtitle: FontSpec{36, 1.15}},
	card.LayoutBold:         {Title: FontSpec{110, 0.95}, Subtitle: FontSpec{34, 1.15}},
	card.LayoutChatGPTricks: {Title: FontSpec{140, 0.9}, Subtitle: FontSpec{0, 1}},
}

// FontsFor returns the font pair for a layout, defaulting to the
// standard layout for unknown values.
func FontsFor(l card.Layout) LayoutFonts {
	if f, ok := layoutFontTable[l]; ok {
		return f
	}
	return layoutFontTable[card.LayoutStandard]
}

// CardView is the fully resolved visual state of one card, ready to be
// applied to the DOM by the thin client or fed to the export compositor.
type CardView struct {
	ID card.ID `json:"id"`

	// BGSource is what the <img> src should be: data URIs pass through,
	// everything else goes via the image proxy. Empty when no bg is set.
	BGSource string `json:"bg_source"`

	// Filter is the combined CSS filter string for the background.
	Filter string `json:"filter"`

	// Overlay is the overlay layer's CSS rgba() color.
	Overlay string `json:"overlay"`

	LayoutClass string      `json:"layout_class"`
	Fonts       LayoutFonts `json:"fonts"`

	// Display text. Empty when the card is in placeholder state — the
	// placeholder attributes carry the greyed-out defaults instead.
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Tag      string `json:"tag"`

	PlaceholderTitle    string `json:"placeholder_title"`
	PlaceholderSubtitle string `json:"placeholder_subtitle"`
	PlaceholderTag      string `json:"placeholder_tag"`

	TitleColor    string `json:"title_color"`
	SubtitleColor string `json:"subtitle_color"`
	PillBg        string `json:"pill_bg"`
	PillText      string `json:"pill_text"`

	// ShowPill is whether the tag pill is visible at all.
	ShowPill bool `json:"show_pill"`

	Caption string `json:"caption"`

	// CaptionHTML is the caption's Markdown rendered for the browser;
	// the rasterizer draws the stripped plain text instead.
	CaptionHTML string `json:"caption_html,omitempty"`
}

// Project computes the view of a committed card. showTag follows the
// card's own content: the pill hides while the card is a placeholder or
// the tag is empty.
func Project(c card.Card, th *theme.Theme) CardView {
	showPill := !c.IsPlaceholder && strings.TrimSpace(c.Tag) != ""
	return project(c, th, showPill)
}

// ProjectSession computes the view of an edit session's working copy.
// The pill visibility is the session's explicit ShowTag toggle.
func ProjectSession(e *card.EditSession, th *theme.Theme) CardView {
	return project(e.Card, th, e.ShowTag)
}

func project(c card.Card, th *theme.Theme, showPill bool) CardView {
	v := CardView{
		ID:          c.ID,
		BGSource:    ResolveBG(c.BG),
		Filter:      filterString(c),
		Overlay:     overlayRGBA(c, th),
		LayoutClass: string(c.Layout),
		Fonts:       FontsFor(c.Layout),

		PlaceholderTitle:    c.DefaultTitle,
		PlaceholderSubtitle: c.DefaultSubtitle,
		PlaceholderTag:      c.DefaultTag,

		TitleColor:    resolveColor(c, c.TitleColor, th),
		SubtitleColor: resolveColor(c, c.SubtitleColor, th),
		PillBg:        resolveColor(c, c.PillBgColor, th),
		PillText:      resolveColor(c, c.PillTextColor, th),

		ShowPill: showPill,
		Caption:  c.Caption,
	}

	if strings.TrimSpace(c.Caption) != "" {
		if html, err := markdown.ToHTML(c.Caption); err == nil {
			v.CaptionHTML = html
		}
	}

	if !c.IsPlaceholder {
		v.Title = c.Title
		v.Subtitle = c.Subtitle
		v.Tag = c.Tag
	}

	return v
}

// ResolveBG routes non-data-URI backgrounds through the image proxy.
func ResolveBG(bg string) string {
	if bg == "" {
		return ""
	}
	if strings.HasPrefix(bg, "data:") {
		return bg
	}
	return ProxyPath + "?url=" + url.QueryEscape(bg)
}

// filterString combines the adjustment block into one CSS filter value.
func filterString(c card.Card) string {
	return fmt.Sprintf("blur(%gpx) contrast(%g%%) brightness(%g%%) grayscale(%g%%)",
		c.Blur, c.Contrast, c.Brightness, c.Grayscale)
}

// overlayRGBA resolves the overlay color and opacity to a CSS rgba().
// brand uses the theme accent; custom parses the stored hex (3- or
// 6-digit); anything unparseable falls back to black.
func overlayRGBA(c card.Card, th *theme.Theme) string {
	alpha := c.OverlayOpacity / 100
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	var r, g, b uint8
	switch c.OverlayColor {
	case card.OverlayWhite:
		r, g, b = 255, 255, 255
	case card.OverlayBrand:
		r, g, b = th.BrandRGB()
	case card.OverlayCustom:
		var err error
		r, g, b, err = theme.ParseHex(c.CustomOverlayColor)
		if err != nil {
			r, g, b = 0, 0, 0
		}
	default: // black
		r, g, b = 0, 0, 0
	}

	return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, trimFloat(alpha))
}

// OverlayColorFor exposes the resolved overlay for callers outside the
// projection (the export compositor needs raw channels, not CSS).
func OverlayColorFor(c card.Card, th *theme.Theme) (r, g, b uint8, alpha float64) {
	alpha = c.OverlayOpacity / 100
	switch c.OverlayColor {
	case card.OverlayWhite:
		return 255, 255, 255, alpha
	case card.OverlayBrand:
		r, g, b = th.BrandRGB()
		return r, g, b, alpha
	case card.OverlayCustom:
		r, g, b, err := theme.ParseHex(c.CustomOverlayColor)
		if err != nil {
			return 0, 0, 0, alpha
		}
		return r, g, b, alpha
	}
	return 0, 0, 0, alpha
}

// resolveColor maps a symbolic color to CSS. The chatgptricks layout
// special-cases brand to plain white; every other layout resolves brand
// to the theme accent.
func resolveColor(c card.Card, name card.ColorName, th *theme.Theme) string {
	switch name {
	case card.ColorWhite:
		return "#FFF"
	case card.ColorBlack:
		return "#000"
	case card.ColorBrand:
		if c.Layout == card.LayoutChatGPTricks {
			return "#FFFFFF"
		}
		return th.Brand()
	}
	// Permissive: stored hex values pass through untouched.
	return string(name)
}

// trimFloat formats an alpha value without trailing zeros, matching the
// compact rgba() strings the client compares against.
func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
