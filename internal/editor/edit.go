// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"

	"cardstudio/internal/card"
	"cardstudio/internal/state"
)

// ErrNotEditing is returned by session operations outside edit mode.
var ErrNotEditing = errors.New("editor: no edit session in progress")

// withSession runs fn on the live edit session under the lock.
func (e *Editor) withSession(fn func(*card.EditSession) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine.Mode() != state.Edit || e.session == nil {
		return ErrNotEditing
	}
	return fn(e.session)
}

// Session operations below mutate only the working copy. Nothing
// reaches the committed store until Generate.

// EditTextFromVariant copies a text field from another variant.
func (e *Editor) EditTextFromVariant(field card.TextField, from card.ID) error {
	return e.withSession(func(s *card.EditSession) error {
		return s.SetTextFromVariant(e.store, field, from)
	})
}

// EditTextCustom sets a text field to user-typed content.
func (e *Editor) EditTextCustom(field card.TextField, text string) error {
	return e.withSession(func(s *card.EditSession) error {
		return s.SetTextCustom(field, text)
	})
}

// EditPhotoFromVariant copies the background of another variant.
func (e *Editor) EditPhotoFromVariant(from card.ID) error {
	return e.withSession(func(s *card.EditSession) error {
		return s.SetPhoto(e.store, from)
	})
}

// EditPhotoCustom sets the background to an uploaded data URI.
func (e *Editor) EditPhotoCustom(dataURI string) error {
	return e.withSession(func(s *card.EditSession) error {
		s.SetPhotoCustom(dataURI)
		return nil
	})
}

// EditVisual adjusts a filter, overlay or layout field on the session.
func (e *Editor) EditVisual(field card.VisualField, value any) error {
	return e.withSession(func(s *card.EditSession) error {
		return s.SetVisual(field, value)
	})
}

// EditShowTag toggles pill visibility on the session.
func (e *Editor) EditShowTag(show bool) error {
	return e.withSession(func(s *card.EditSession) error {
		s.SetShowTag(show)
		return nil
	})
}

// CycleColor advances one of the session's color slots through the
// brand/white/black cycle and returns the new value.
func (e *Editor) CycleColor(field card.VisualField) (card.ColorName, error) {
	var next card.ColorName
	err := e.withSession(func(s *card.EditSession) error {
		var err error
		next, err = s.CycleColor(field)
		return err
	})
	return next, err
}

// Store operations below act on committed cards from the overview.

// UpdateCardText edits a committed card's text directly while in the
// overview, e.g. inline caption fixes on the caption card.
func (e *Editor) UpdateCardText(id card.ID, field card.TextField, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine.Mode() != state.App {
		return &state.ErrRejected{Mode: e.machine.Mode(), Event: "update_card"}
	}
	return e.store.SetField(id, field, value)
}

// UpdateCardVisual edits a committed card's visual field from the
// overview.
func (e *Editor) UpdateCardVisual(id card.ID, field card.VisualField, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.machine.Mode() != state.App {
		return &state.ErrRejected{Mode: e.machine.Mode(), Event: "update_card"}
	}
	return e.store.SetVisual(id, field, value)
}
