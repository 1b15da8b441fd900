// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package card holds the canonical data model for the studio's card
// variants: the Card struct itself, the Store that owns the committed
// state of all variants, and the EditSession working copy used while a
// single card is being edited.
package card

import "strings"

// ID identifies one of the fixed card variants.
type ID string

// The studio always works with exactly four variants. A, B and C are
// visual cards; D is the caption card.
const (
	VariantA ID = "A"
	VariantB ID = "B"
	VariantC ID = "C"
	VariantD ID = "D"
)

// IDs lists all variants in presentation order.
var IDs = []ID{VariantA, VariantB, VariantC, VariantD}

// Valid reports whether id names a known variant.
func (id ID) Valid() bool {
	switch id {
	case VariantA, VariantB, VariantC, VariantD:
		return true
	}
	return false
}

// Layout names a visual template. Each layout selects fixed font sizes
// and a DOM layout class on the client.
type Layout string

const (
	LayoutStandard     Layout = "layout-standard"
	LayoutCentered     Layout = "layout-centered"
	LayoutBold         Layout = "layout-bold"
	LayoutChatGPTricks Layout = "layout-chatgptricks"
)

// ColorName is a symbolic text/pill color. Brand resolves through the
// active theme (or to white on the chatgptricks layout).
type ColorName string

const (
	ColorBrand ColorName = "brand"
	ColorWhite ColorName = "white"
	ColorBlack ColorName = "black"
)

// ColorCycle is the order the click-to-cycle color dots advance through.
var ColorCycle = []ColorName{ColorBrand, ColorWhite, ColorBlack}

// OverlayColor selects the semi-transparent layer composited over the
// background image. OverlayCustom uses Card.CustomOverlayColor.
type OverlayColor string

const (
	OverlayBrand  OverlayColor = "brand"
	OverlayBlack  OverlayColor = "black"
	OverlayWhite  OverlayColor = "white"
	OverlayCustom OverlayColor = "custom"
)

// Card is the committed state of one variant.
type Card struct {
	ID ID `json:"id"`

	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Tag      string `json:"tag"`

	// Placeholder defaults shown greyed-out while the real fields are empty.
	DefaultTitle    string `json:"default_title"`
	DefaultSubtitle string `json:"default_subtitle"`
	DefaultTag      string `json:"default_tag"`

	// IsPlaceholder is true iff all editable text fields are empty.
	IsPlaceholder bool `json:"is_placeholder"`

	// BG is a remote URL or an embedded data URI from a local upload.
	BG string `json:"bg"`

	// Visual adjustment block.
	Blur               float64      `json:"blur"`
	Contrast           float64      `json:"contrast"`
	Brightness         float64      `json:"brightness"`
	Grayscale          float64      `json:"grayscale"`
	OverlayColor       OverlayColor `json:"overlay_color"`
	OverlayOpacity     float64      `json:"overlay_opacity"` // 0-100
	CustomOverlayColor string       `json:"custom_overlay_color"`

	Layout Layout `json:"layout"`

	TitleColor    ColorName `json:"title_color"`
	SubtitleColor ColorName `json:"subtitle_color"`
	PillBgColor   ColorName `json:"pill_bg_color"`
	PillTextColor ColorName `json:"pill_text_color"`

	// Caption is the free text associated with the card, independently
	// copy-able by the user.
	Caption string `json:"caption"`
}

// TextField names one of the editable text fields on a card.
type TextField string

const (
	FieldTitle    TextField = "title"
	FieldSubtitle TextField = "subtitle"
	FieldTag      TextField = "tag"
	FieldCaption  TextField = "caption"
)

// defaultSeed describes the out-of-the-box content for one variant.
type defaultSeed struct {
	title, subtitle, tag, caption string
	layout                        Layout
}

var defaults = map[ID]defaultSeed{
	VariantA: {title: "READY", subtitle: "Paste an article URL...", tag: "NEWS", layout: LayoutStandard},
	VariantB: {title: "SET", subtitle: "Choose variant...", tag: "INFO", layout: LayoutCentered},
	VariantC: {title: "GO", subtitle: "Customize & export.", tag: "BREAKING", layout: LayoutBold},
	VariantD: {title: "CAPTION", subtitle: "Copy ready text.", tag: "TEXT", layout: LayoutStandard,
		caption: "Paste an article URL to generate a caption..."},
}

// New creates a fresh card for the given variant. The card starts in
// placeholder state with the default text mirrored into title/subtitle so
// the renderer always has something to project.
func New(id ID) Card {
	d := defaults[id]
	return Card{
		ID:              id,
		Title:           d.title,
		Subtitle:        d.subtitle,
		Tag:             d.tag,
		DefaultTitle:    d.title,
		DefaultSubtitle: d.subtitle,
		DefaultTag:      d.tag,
		IsPlaceholder:   true,
		Contrast:        100,
		Brightness:      100,
		OverlayColor:    OverlayBlack,
		OverlayOpacity:  50,
		Layout:          d.layout,
		TitleColor:      ColorBrand,
		SubtitleColor:   ColorWhite,
		PillBgColor:     ColorBrand,
		PillTextColor:   ColorBlack,
		Caption:         d.caption,
	}
}

// EffectiveTitle returns the text the renderer should display for the
// title: the default while the card is in placeholder state, the literal
// field value otherwise.
func (c Card) EffectiveTitle() string {
	if c.IsPlaceholder {
		return c.DefaultTitle
	}
	return c.Title
}

// EffectiveSubtitle is the subtitle counterpart of EffectiveTitle.
func (c Card) EffectiveSubtitle() string {
	if c.IsPlaceholder {
		return c.DefaultSubtitle
	}
	return c.Subtitle
}

// EffectiveTag is the tag counterpart of EffectiveTitle.
func (c Card) EffectiveTag() string {
	if c.IsPlaceholder {
		return c.DefaultTag
	}
	return c.Tag
}

// recomputePlaceholder applies the placeholder invariant after a text
// field change: the card is a placeholder iff title and subtitle both
// trim to empty.
func (c *Card) recomputePlaceholder() {
	c.IsPlaceholder = strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Subtitle) == ""
}
