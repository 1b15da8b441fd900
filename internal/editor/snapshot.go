// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"cardstudio/internal/card"
	"cardstudio/internal/state"
)

// Snapshot is the editor's persistable state: the machine position, the
// committed cards, and the edit session if one is open.
type Snapshot struct {
	Machine state.Snapshot    `json:"machine"`
	Cards   []card.Card       `json:"cards"`
	Session *card.EditSession `json:"session,omitempty"`
	ThemeID string            `json:"theme_id,omitempty"`
}

// Snap captures the editor for persistence. Mid-flight states are
// normalized by the machine: a snapshot never records Loading or
// Transition.
func (e *Editor) Snap() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Machine: e.machine.Snap(),
		Cards:   e.store.All(),
		ThemeID: e.themeID,
	}
	if e.session != nil {
		sess := *e.session
		s.Session = &sess
	}
	return s
}

// Restore applies a snapshot over a fresh editor. Damaged pieces are
// dropped individually rather than failing the whole restore: an
// unknown card id keeps that variant's placeholder, and an Edit-mode
// snapshot with no session reopens one from the committed card.
func (e *Editor) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.machine.Restore(s.Machine)
	e.themeID = s.ThemeID

	for _, c := range s.Cards {
		_ = e.store.Replace(c) // invalid ids keep the placeholder
	}

	if e.machine.Mode() != state.Edit {
		return
	}
	active := e.machine.Active()
	if !active.Valid() {
		// An Edit snapshot must name its card; without one the safest
		// stable mode is the overview.
		e.machine.Restore(state.Snapshot{Mode: state.App, Step: state.StepPickCover})
		return
	}
	if s.Session != nil && s.Session.Card.ID == active {
		sess := *s.Session
		e.session = &sess
	} else {
		e.session = card.Begin(e.store.MustGet(active))
	}
}
