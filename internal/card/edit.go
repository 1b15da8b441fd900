// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package card

import (
	"fmt"
	"strings"
)

// SourceCustom marks a field whose value was typed or uploaded by the
// user rather than copied from a variant.
const SourceCustom = "custom"

// Provenance records where each piece of an edit session's content came
// from so edits can be attributed and reverted in the dashboard.
type Provenance struct {
	Title    string `json:"title"`    // variant id or SourceCustom
	Subtitle string `json:"subtitle"` // variant id or SourceCustom
}

// EditSession is a deep working copy of one card used while the user is
// in edit mode. All edits apply to the copy; the committed Store is only
// touched through an explicit Commit.
type EditSession struct {
	Card Card `json:"card"`

	SourceVariant Provenance `json:"source_variant"`
	SourcePhoto   string     `json:"source_photo"` // variant id or SourceCustom
	ShowTag       bool       `json:"show_tag"`
}

// Begin creates an edit session by deep-copying the source card. Card is
// a value type with only scalar fields, so assignment is the deep copy.
func Begin(source Card) *EditSession {
	id := string(source.ID)
	return &EditSession{
		Card:          source,
		SourceVariant: Provenance{Title: id, Subtitle: id},
		SourcePhoto:   id,
		ShowTag:       strings.TrimSpace(source.Tag) != "",
	}
}

// SetTextFromVariant copies field from the given variant in the store
// into the session and records the provenance.
func (e *EditSession) SetTextFromVariant(store *Store, field TextField, from ID) error {
	src, err := store.Get(from)
	if err != nil {
		return err
	}

	switch field {
	case FieldTitle:
		e.Card.Title = src.Title
		e.SourceVariant.Title = string(from)
	case FieldSubtitle:
		e.Card.Subtitle = src.Subtitle
		e.SourceVariant.Subtitle = string(from)
	default:
		return fmt.Errorf("card: field %q cannot be sourced from a variant", field)
	}

	e.Card.recomputePlaceholder()
	return nil
}

// SetTextCustom sets a text field directly (inline editing) and marks it
// as user-authored.
func (e *EditSession) SetTextCustom(field TextField, text string) error {
	switch field {
	case FieldTitle:
		e.Card.Title = text
		e.SourceVariant.Title = SourceCustom
		e.Card.recomputePlaceholder()
	case FieldSubtitle:
		e.Card.Subtitle = text
		e.SourceVariant.Subtitle = SourceCustom
		e.Card.recomputePlaceholder()
	case FieldTag:
		e.Card.Tag = text
	case FieldCaption:
		e.Card.Caption = text
	default:
		return fmt.Errorf("card: unknown text field %q", field)
	}
	return nil
}

// SetPhoto copies the background of the given variant into the session.
func (e *EditSession) SetPhoto(store *Store, from ID) error {
	src, err := store.Get(from)
	if err != nil {
		return err
	}
	e.Card.BG = src.BG
	e.SourcePhoto = string(from)
	return nil
}

// SetPhotoCustom sets the background to an uploaded data URI.
func (e *EditSession) SetPhotoCustom(dataURI string) {
	e.Card.BG = dataURI
	e.SourcePhoto = SourceCustom
}

// SetVisual mirrors Store.SetVisual on the working copy.
func (e *EditSession) SetVisual(field VisualField, value any) error {
	return applyVisual(&e.Card, field, value)
}

// SetShowTag toggles pill visibility for this session.
func (e *EditSession) SetShowTag(show bool) { e.ShowTag = show }

// colorFieldPtr maps a visual color field name to the session's slot.
func (e *EditSession) colorFieldPtr(field VisualField) (*ColorName, error) {
	switch field {
	case VisualTitleColor:
		return &e.Card.TitleColor, nil
	case VisualSubtitleColor:
		return &e.Card.SubtitleColor, nil
	case VisualPillBgColor:
		return &e.Card.PillBgColor, nil
	case VisualPillTextColor:
		return &e.Card.PillTextColor, nil
	}
	return nil, fmt.Errorf("card: %q is not a cycling color field", field)
}

// CycleColor advances a color field through the fixed brand→white→black
// cycle, wrapping. A field holding a value outside the cycle restarts at
// the beginning.
func (e *EditSession) CycleColor(field VisualField) (ColorName, error) {
	slot, err := e.colorFieldPtr(field)
	if err != nil {
		return "", err
	}

	idx := -1
	for i, c := range ColorCycle {
		if c == *slot {
			idx = i
			break
		}
	}
	next := ColorCycle[(idx+1)%len(ColorCycle)]
	*slot = next
	return next, nil
}
