// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor owns one user's working state: the view-state machine,
// the four-card store, and the edit session in flight. Every mutation
// goes through the editor's mutex, so the machine and store themselves
// stay lock-free.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cardstudio/internal/card"
	"cardstudio/internal/pipeline"
	"cardstudio/internal/scrape"
	"cardstudio/internal/state"
)

// pipelineTimeout bounds one full scrape+rewrite run.
const pipelineTimeout = 60 * time.Second

// transitionDelay matches the stage crossfade duration: the machine is
// parked in Transition for this long before settling.
const transitionDelay = 400 * time.Millisecond

// Runner is the content pipeline the editor submits URLs to.
type Runner interface {
	Run(ctx context.Context, url string) (*pipeline.Result, error)
}

// Event is pushed to the notifier on every externally visible change so
// connected clients can re-render without polling.
type Event struct {
	Type string     `json:"type"` // "mode", "reveal", "card", "error"
	Mode state.Mode `json:"mode,omitempty"`
	Card card.ID    `json:"card,omitempty"`
	Msg  string     `json:"msg,omitempty"`
}

// Notifier receives editor events. Implementations must not block.
type Notifier interface {
	Publish(ev Event)
}

// Failure describes the last failed URL submission, kept so the client
// can show the message and the alternative articles found for it.
type Failure struct {
	URL          string               `json:"url"`
	Message      string               `json:"message"`
	Alternatives *scrape.Alternatives `json:"alternatives,omitempty"`
}

// Editor serializes all access to one user's machine, store and session.
type Editor struct {
	mu sync.Mutex

	machine *state.Machine
	store   *card.Store
	session *card.EditSession

	runner Runner
	clock  state.Clock
	notify Notifier

	themeID string
	article *scrape.Article
	failure *Failure
}

// New creates an editor in Landing with placeholder cards. runner and
// notify may be nil (no scraping, no push events); a nil clock gets the
// real one.
func New(runner Runner, clock state.Clock, notify Notifier) *Editor {
	if clock == nil {
		clock = state.RealClock{}
	}
	e := &Editor{
		store:  card.NewStore(),
		runner: runner,
		clock:  clock,
		notify: notify,
	}
	e.machine = state.NewMachine(state.Hooks{
		EnterEdit: e.enterEdit,
		LeaveEdit: e.leaveEdit,
	})
	return e
}

// enterEdit and leaveEdit run inside Fire, under the editor's lock.
func (e *Editor) enterEdit(active card.ID) {
	e.session = card.Begin(e.store.MustGet(active))
}

func (e *Editor) leaveEdit(card.ID) {
	e.session = nil
}

// publish pushes an event if a notifier is installed.
func (e *Editor) publish(ev Event) {
	if e.notify != nil {
		e.notify.Publish(ev)
	}
}

// View is a consistent read of the editor's state for rendering.
type View struct {
	Mode    state.Mode        `json:"mode"`
	Step    state.Step        `json:"step"`
	Active  card.ID           `json:"active,omitempty"`
	URL     string            `json:"url,omitempty"`
	Cards   []card.Card       `json:"cards"`
	Session *card.EditSession `json:"session,omitempty"`
	ThemeID string            `json:"theme_id,omitempty"`
	Failure *Failure          `json:"failure,omitempty"`
}

// View returns a snapshot of everything a client needs to render.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Mode:    e.machine.Mode(),
		Step:    e.machine.Step(),
		Active:  e.machine.Active(),
		URL:     e.machine.URL(),
		Cards:   e.store.All(),
		ThemeID: e.themeID,
		Failure: e.failure,
	}
	if e.session != nil {
		s := *e.session
		v.Session = &s
	}
	return v
}

// Article returns the last scraped article, if any.
func (e *Editor) Article() *scrape.Article {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.article == nil {
		return nil
	}
	a := *e.article
	return &a
}

// SetTheme records the active theme for this editor.
func (e *Editor) SetTheme(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.themeID = id
}

// SubmitURL starts a pipeline run for url. The editor moves to Loading
// immediately; the result is applied asynchronously, guarded by the
// machine's epoch so a reset in the meantime discards it.
func (e *Editor) SubmitURL(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runner == nil {
		return errors.New("editor: no pipeline configured")
	}
	if err := e.machine.Fire(state.EvSubmitURL, state.Input{URL: url}); err != nil {
		return err
	}
	e.failure = nil
	epoch := e.machine.Epoch()
	e.publish(Event{Type: "mode", Mode: state.Loading})

	go e.runPipeline(url, epoch)
	return nil
}

// runPipeline executes the content pipeline off the lock and applies
// the outcome only if the machine is still waiting on this generation.
func (e *Editor) runPipeline(url string, epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	res, err := e.runner.Run(ctx, url)

	e.mu.Lock()
	if !e.machine.StillCurrent(epoch) {
		e.mu.Unlock()
		slog.Debug("pipeline result dropped, stale epoch", "url", url)
		return
	}

	if err != nil {
		f := &Failure{URL: url, Message: "could not read that article"}
		var se *pipeline.ErrScrape
		if errors.As(err, &se) {
			f.Alternatives = se.Alternatives
		}
		e.failure = f
		_ = e.machine.Fire(state.EvScrapeFailed, state.Input{})
		e.mu.Unlock()
		slog.Warn("url submission failed", "url", url, "error", err)
		e.publish(Event{Type: "error", Msg: f.Message})
		e.publish(Event{Type: "mode", Mode: state.Landing})
		return
	}

	e.store.ApplyScrape(res.Content)
	e.article = &res.Article
	_ = e.machine.Fire(state.EvScrapeSucceeded, state.Input{})
	e.mu.Unlock()

	e.publish(Event{Type: "mode", Mode: state.App})
	e.reveal(ctx)
}

// reveal pushes one event per card on the fixed stagger so clients
// animate the overview in sequence.
func (e *Editor) reveal(ctx context.Context) {
	steps := make([]state.SeqStep, 0, len(card.IDs))
	for _, id := range card.IDs {
		id := id
		steps = append(steps, state.SeqStep{
			Delay: state.RevealDelay,
			Run:   func() { e.publish(Event{Type: "reveal", Card: id}) },
		})
	}
	if err := state.Sequence(ctx, e.clock, steps); err != nil {
		slog.Debug("reveal sequence cancelled", "error", err)
	}
}

// SelectCard marks a card active in the overview.
func (e *Editor) SelectCard(id card.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.machine.Fire(state.EvSelectCard, state.Input{Card: id}); err != nil {
		return err
	}
	e.publish(Event{Type: "card", Card: id})
	return nil
}

// BeginEdit moves the active card into edit mode. The call returns
// after the stage transition has settled.
func (e *Editor) BeginEdit(ctx context.Context) error {
	return e.transition(ctx, state.EvNext)
}

// CancelEdit abandons the edit session and returns to the overview.
// The committed card is untouched.
func (e *Editor) CancelEdit(ctx context.Context) error {
	return e.transition(ctx, state.EvBack)
}

// Generate commits the edit session to the store and returns to the
// overview at the carousel step. The commit and the transition trigger
// share one critical section, so a concurrent event can never find the
// commit applied with the transition still pending.
func (e *Editor) Generate(ctx context.Context) error {
	e.mu.Lock()
	var committed *card.Card
	if e.machine.Mode() == state.Edit && e.session != nil {
		c := e.session.Card
		if !e.session.ShowTag {
			c.Tag = ""
		}
		committed = &c
	}
	if err := e.machine.Fire(state.EvGenerate, state.Input{}); err != nil {
		e.mu.Unlock()
		return err
	}
	if committed != nil {
		if err := e.store.Replace(*committed); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	e.mu.Unlock()
	return e.settle(ctx)
}

// transition fires ev, then holds the machine in Transition for the
// stage crossfade before settling. Events arriving during the crossfade
// are rejected by the machine's guard.
func (e *Editor) transition(ctx context.Context, ev state.Event) error {
	e.mu.Lock()
	if err := e.machine.Fire(ev, state.Input{}); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	return e.settle(ctx)
}

// settle announces the crossfade, waits it out, then lands the machine
// on its settle target.
func (e *Editor) settle(ctx context.Context) error {
	e.publish(Event{Type: "mode", Mode: state.Transition})

	if err := e.clock.Sleep(ctx, transitionDelay); err != nil {
		slog.Debug("transition sleep interrupted", "error", err)
	}

	e.mu.Lock()
	err := e.machine.Settle()
	mode := e.machine.Mode()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.publish(Event{Type: "mode", Mode: mode})
	return nil
}

// Reset returns to Landing from any mode, restoring placeholder cards
// and invalidating any in-flight pipeline run.
func (e *Editor) Reset() {
	e.mu.Lock()
	_ = e.machine.Fire(state.EvReset, state.Input{})
	e.store.Reset()
	e.article = nil
	e.failure = nil
	e.mu.Unlock()
	e.publish(Event{Type: "mode", Mode: state.Landing})
}
