// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package state implements the studio's top-level view-state machine.
// The machine decides which regions of the UI are visible and which
// renderers run on entry; every user-facing action funnels through a
// single transition function with an exhaustive switch, instead of mode
// checks scattered across handlers.
package state

import (
	"fmt"

	"cardstudio/internal/card"
)

// Mode is the top-level UI mode.
type Mode string

const (
	Landing Mode = "LANDING"
	Loading Mode = "LOADING"
	App     Mode = "APP"
	Edit    Mode = "EDIT"
	// Transition is a guard mode held while a choreographed animation is
	// in flight. All state-changing triggers are rejected until the
	// sequence's completion callback restores a stable mode.
	Transition Mode = "TRANSITION"
)

// Step is the secondary, linear workflow position within App/Edit.
type Step string

const (
	StepPickCover   Step = "pick_cover"
	StepEditDetails Step = "edit_details"
	StepGenCarousel Step = "gen_carousel"
	StepExport      Step = "export"
)

// Event is a state-machine trigger.
type Event string

const (
	EvSubmitURL       Event = "submit_url"
	EvScrapeSucceeded Event = "scrape_succeeded"
	EvScrapeFailed    Event = "scrape_failed"
	EvSelectCard      Event = "select_card"
	EvNext            Event = "next"
	EvBack            Event = "back"
	EvGenerate        Event = "generate"
	EvReset           Event = "reset"
	// evSettle is fired internally by choreography completion callbacks.
	evSettle Event = "settle"
)

// ErrRejected is returned when an event is not legal in the current mode.
// Callers treat it as a no-op, not a failure: the guard exists precisely
// to swallow re-entrant triggers.
type ErrRejected struct {
	Mode  Mode
	Event Event
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("state: event %q rejected in mode %q", e.Event, e.Mode)
}

// Hooks are the entry/exit actions the owning editor installs. All are
// optional. EnterApp re-renders every card and rebinds overview handlers;
// EnterEdit renders the edit session onto the active card and binds the
// dashboard; LeaveEdit unbinds the same controls (symmetry — leaked edit
// bindings across transitions were a recurring bug in earlier drafts).
type Hooks struct {
	EnterLoading func()
	EnterApp     func()
	EnterEdit    func(active card.ID)
	LeaveEdit    func(active card.ID)
	EnterLanding func()
}

// Machine is the view-state machine. It is not self-locking: it is owned
// by one editor which serializes all access.
type Machine struct {
	mode   Mode
	step   Step
	active card.ID // zero value means none
	url    string

	// epoch increments on every reset so in-flight async work can detect
	// it resolved against a stale generation and drop its result.
	epoch uint64

	// settleTo is the stable mode the current transition resolves into.
	settleTo Mode

	hooks Hooks
}

// NewMachine returns a machine in Landing with no active card.
func NewMachine(hooks Hooks) *Machine {
	return &Machine{mode: Landing, step: StepPickCover, hooks: hooks}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Step returns the current workflow step.
func (m *Machine) Step() Step { return m.step }

// Active returns the currently selected card id ("" if none).
func (m *Machine) Active() card.ID { return m.active }

// URL returns the last submitted source URL.
func (m *Machine) URL() string { return m.url }

// Epoch returns the current generation counter. Async work captures it
// before starting and passes it back through StillCurrent when applying
// results.
func (m *Machine) Epoch() uint64 { return m.epoch }

// StillCurrent reports whether an async result started at epoch may still
// be applied: the generation must match and the machine must still be
// waiting in Loading.
func (m *Machine) StillCurrent(epoch uint64) bool {
	return m.epoch == epoch && m.mode == Loading
}

// Input carries optional event payload.
type Input struct {
	URL  string
	Card card.ID
}

// Fire runs one event through the transition table. It returns
// *ErrRejected for events that are not legal in the current mode and a
// plain error for malformed input (empty URL, bad card id).
func (m *Machine) Fire(ev Event, in Input) error {
	// The transition guard comes first: while a choreographed sequence is
	// in flight only the internal settle event may move the machine.
	if m.mode == Transition && ev != evSettle && ev != EvReset {
		return &ErrRejected{Mode: m.mode, Event: ev}
	}

	switch ev {
	case EvSubmitURL:
		if m.mode != Landing {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		if in.URL == "" {
			return fmt.Errorf("state: submit with empty url")
		}
		m.url = in.URL
		m.enter(Loading)

	case EvScrapeSucceeded:
		if m.mode != Loading {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		m.step = StepPickCover
		m.enter(App)

	case EvScrapeFailed:
		if m.mode != Loading {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		m.enter(Landing)

	case EvSelectCard:
		if m.mode != App {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		if !in.Card.Valid() {
			return fmt.Errorf("state: select unknown card %q", in.Card)
		}
		m.active = in.Card

	case EvNext:
		if m.mode != App {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		if m.active == "" {
			return fmt.Errorf("state: next with no card selected")
		}
		m.step = StepEditDetails
		m.beginTransition(Edit)

	case EvBack:
		if m.mode != Edit {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		if m.hooks.LeaveEdit != nil {
			m.hooks.LeaveEdit(m.active)
		}
		m.step = StepPickCover
		m.beginTransition(App)

	case EvGenerate:
		if m.mode != Edit {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		if m.hooks.LeaveEdit != nil {
			m.hooks.LeaveEdit(m.active)
		}
		m.step = StepGenCarousel
		m.beginTransition(App)

	case EvReset:
		m.reset()

	case evSettle:
		if m.mode != Transition {
			return &ErrRejected{Mode: m.mode, Event: ev}
		}
		m.enter(m.settleTo)

	default:
		return fmt.Errorf("state: unknown event %q", ev)
	}

	return nil
}

// Settle completes the current transition, restoring the stable mode the
// choreography was heading for. Called from the sequence's completion
// callback.
func (m *Machine) Settle() error { return m.Fire(evSettle, Input{}) }

// beginTransition parks the machine in Transition until Settle.
func (m *Machine) beginTransition(to Mode) {
	m.mode = Transition
	m.settleTo = to
}

// enter switches to a stable mode and runs its entry hook.
func (m *Machine) enter(to Mode) {
	m.mode = to
	switch to {
	case Loading:
		if m.hooks.EnterLoading != nil {
			m.hooks.EnterLoading()
		}
	case App:
		if m.hooks.EnterApp != nil {
			m.hooks.EnterApp()
		}
	case Edit:
		if m.hooks.EnterEdit != nil {
			m.hooks.EnterEdit(m.active)
		}
	case Landing:
		if m.hooks.EnterLanding != nil {
			m.hooks.EnterLanding()
		}
	}
}

// reset returns to Landing from any mode, clearing selection and bumping
// the epoch so stale async results are dropped.
func (m *Machine) reset() {
	if m.mode == Edit && m.hooks.LeaveEdit != nil {
		m.hooks.LeaveEdit(m.active)
	}
	m.active = ""
	m.url = ""
	m.step = StepPickCover
	m.epoch++
	m.enter(Landing)
}

// Snapshot is the machine's persistable state.
type Snapshot struct {
	Mode   Mode    `json:"mode"`
	Step   Step    `json:"step"`
	Active card.ID `json:"active"`
	URL    string  `json:"url"`
}

// Snap captures the machine state. A machine persisted mid-Transition or
// mid-Loading is normalized to the nearest stable mode: animations and
// in-flight requests cannot survive a restore.
func (m *Machine) Snap() Snapshot {
	mode := m.mode
	switch mode {
	case Transition:
		mode = m.settleTo
	case Loading:
		mode = Landing
	}
	return Snapshot{Mode: mode, Step: m.step, Active: m.active, URL: m.url}
}

// Restore applies a snapshot over a fresh machine.
func (m *Machine) Restore(s Snapshot) {
	switch s.Mode {
	case Landing, App, Edit:
		m.mode = s.Mode
	default:
		m.mode = Landing
	}
	m.step = s.Step
	m.active = s.Active
	m.url = s.URL
}
