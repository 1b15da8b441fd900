// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package card

import (
	"fmt"
	"strings"
)

// Store is the single source of truth for all card variants' committed
// text and visual data. It is owned by exactly one editor at a time; the
// editor serializes access, so the store itself carries no lock.
type Store struct {
	cards map[ID]Card
}

// NewStore creates a store with a fresh placeholder card per variant.
func NewStore() *Store {
	s := &Store{cards: make(map[ID]Card, len(IDs))}
	for _, id := range IDs {
		s.cards[id] = New(id)
	}
	return s
}

// Get returns a copy of the card for id. An unknown id is a programming
// error, never user input, so it fails loudly.
func (s *Store) Get(id ID) (Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return Card{}, fmt.Errorf("card: unknown variant %q", id)
	}
	return c, nil
}

// MustGet is Get for call sites that have already validated id.
func (s *Store) MustGet(id ID) Card {
	c, err := s.Get(id)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns copies of every card in presentation order.
func (s *Store) All() []Card {
	out := make([]Card, 0, len(IDs))
	for _, id := range IDs {
		out = append(out, s.cards[id])
	}
	return out
}

// SetField sets a text field. Text fields participate in placeholder
// tracking: when title or subtitle change, the placeholder flag is
// recomputed from both; tag and caption never affect it.
func (s *Store) SetField(id ID, field TextField, value string) error {
	c, ok := s.cards[id]
	if !ok {
		return fmt.Errorf("card: unknown variant %q", id)
	}

	switch field {
	case FieldTitle:
		c.Title = value
		c.recomputePlaceholder()
	case FieldSubtitle:
		c.Subtitle = value
		c.recomputePlaceholder()
	case FieldTag:
		c.Tag = value
	case FieldCaption:
		c.Caption = value
	default:
		return fmt.Errorf("card: unknown text field %q", field)
	}

	s.cards[id] = c
	return nil
}

// VisualField names a member of the visual adjustment block.
type VisualField string

const (
	VisualBlur           VisualField = "blur"
	VisualContrast       VisualField = "contrast"
	VisualBrightness     VisualField = "brightness"
	VisualGrayscale      VisualField = "grayscale"
	VisualOverlayColor   VisualField = "overlay_color"
	VisualOverlayOpacity VisualField = "overlay_opacity"
	VisualCustomOverlay  VisualField = "custom_overlay_color"
	VisualLayout         VisualField = "layout"
	VisualBG             VisualField = "bg"
	VisualTitleColor     VisualField = "title_color"
	VisualSubtitleColor  VisualField = "subtitle_color"
	VisualPillBgColor    VisualField = "pill_bg_color"
	VisualPillTextColor  VisualField = "pill_text_color"
)

// SetVisual sets a visual field without touching placeholder logic.
// Numeric fields take float64 values, enum fields take their own types
// or plain strings.
func (s *Store) SetVisual(id ID, field VisualField, value any) error {
	c, ok := s.cards[id]
	if !ok {
		return fmt.Errorf("card: unknown variant %q", id)
	}

	if err := applyVisual(&c, field, value); err != nil {
		return err
	}

	s.cards[id] = c
	return nil
}

// applyVisual mutates one visual field on c. Shared between the Store
// and the EditSession so both apply identical coercion rules.
func applyVisual(c *Card, field VisualField, value any) error {
	num := func() (float64, error) {
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
		return 0, fmt.Errorf("card: field %q wants a number, got %T", field, value)
	}
	str := func() (string, error) {
		if v, ok := value.(string); ok {
			return v, nil
		}
		return "", fmt.Errorf("card: field %q wants a string, got %T", field, value)
	}

	switch field {
	case VisualBlur:
		v, err := num()
		if err != nil {
			return err
		}
		c.Blur = v
	case VisualContrast:
		v, err := num()
		if err != nil {
			return err
		}
		c.Contrast = v
	case VisualBrightness:
		v, err := num()
		if err != nil {
			return err
		}
		c.Brightness = v
	case VisualGrayscale:
		v, err := num()
		if err != nil {
			return err
		}
		c.Grayscale = v
	case VisualOverlayOpacity:
		v, err := num()
		if err != nil {
			return err
		}
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		c.OverlayOpacity = v
	case VisualOverlayColor:
		v, err := str()
		if err != nil {
			return err
		}
		c.OverlayColor = OverlayColor(v)
	case VisualCustomOverlay:
		v, err := str()
		if err != nil {
			return err
		}
		c.CustomOverlayColor = v
	case VisualLayout:
		v, err := str()
		if err != nil {
			return err
		}
		c.Layout = Layout(v)
	case VisualBG:
		v, err := str()
		if err != nil {
			return err
		}
		c.BG = v
	case VisualTitleColor:
		v, err := str()
		if err != nil {
			return err
		}
		c.TitleColor = ColorName(v)
	case VisualSubtitleColor:
		v, err := str()
		if err != nil {
			return err
		}
		c.SubtitleColor = ColorName(v)
	case VisualPillBgColor:
		v, err := str()
		if err != nil {
			return err
		}
		c.PillBgColor = ColorName(v)
	case VisualPillTextColor:
		v, err := str()
		if err != nil {
			return err
		}
		c.PillTextColor = ColorName(v)
	default:
		return fmt.Errorf("card: unknown visual field %q", field)
	}
	return nil
}

// ScrapeResult is the pipeline's output applied to the store after a
// successful scrape+rewrite run.
type ScrapeResult struct {
	Source   string             // uppercased source host, e.g. "REUTERS"
	Images   map[ID]string      // background URL per visual variant
	Variants map[ID]VariantCopy // AI-rewritten copy per visual variant
	Caption  string             // common caption for the caption card
	Original VariantCopy        // scraped title/subtitle, the fallback copy
}

// VariantCopy is the rewritten title/subtitle pair for one variant.
type VariantCopy struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// variantTags are the tags stamped onto A/B/C when content arrives.
var variantTags = map[ID]string{
	VariantA: "NEWS",
	VariantB: "STORY",
	VariantC: "BREAKING",
}

// ApplyScrape populates the store from a pipeline result. Titles are
// uppercased by convention; variants missing from the AI response fall
// back to the original scraped copy. On the chatgptricks layout the
// subtitle is suppressed (the layout has no subtitle slot).
func (s *Store) ApplyScrape(res ScrapeResult) {
	for _, id := range []ID{VariantA, VariantB, VariantC} {
		c := s.cards[id]

		if bg, ok := res.Images[id]; ok && bg != "" {
			c.BG = bg
		}

		copyFor := res.Original
		if v, ok := res.Variants[id]; ok && strings.TrimSpace(v.Title) != "" {
			copyFor = v
		}

		c.Title = strings.ToUpper(copyFor.Title)
		if c.Layout == LayoutChatGPTricks {
			c.Subtitle = ""
		} else {
			c.Subtitle = copyFor.Subtitle
		}
		c.Tag = variantTags[id]
		c.IsPlaceholder = false

		s.cards[id] = c
	}

	d := s.cards[VariantD]
	if bg, ok := res.Images[VariantD]; ok && bg != "" {
		d.BG = bg
	}
	if strings.TrimSpace(res.Caption) != "" {
		d.Caption = res.Caption
	} else {
		d.Caption = res.Original.Subtitle
	}
	d.IsPlaceholder = false
	s.cards[VariantD] = d
}

// Reset returns every variant to its freshly-created placeholder state.
func (s *Store) Reset() {
	for _, id := range IDs {
		s.cards[id] = New(id)
	}
}

// replace swaps in a full card value. Used by the editor when an edit
// session commits, and by snapshot restore.
func (s *Store) replace(c Card) error {
	if !c.ID.Valid() {
		return fmt.Errorf("card: unknown variant %q", c.ID)
	}
	s.cards[c.ID] = c
	return nil
}

// Replace is the exported form of replace.
func (s *Store) Replace(c Card) error { return s.replace(c) }
