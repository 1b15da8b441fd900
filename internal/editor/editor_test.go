// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cardstudio/internal/card"
	"cardstudio/internal/pipeline"
	"cardstudio/internal/scrape"
	"cardstudio/internal/state"
)

// fakeRunner answers Run from a channel so tests control exactly when
// the pipeline resolves.
type fakeRunner struct {
	results chan result
}

type result struct {
	res *pipeline.Result
	err error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(chan result, 4)}
}

func (f *fakeRunner) Run(ctx context.Context, url string) (*pipeline.Result, error) {
	select {
	case r := <-f.results:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func okResult() *pipeline.Result {
	return &pipeline.Result{
		Content: card.ScrapeResult{
			Source: "EXAMPLE",
			Images: map[card.ID]string{card.VariantA: "https://img/a.jpg"},
			Variants: map[card.ID]card.VariantCopy{
				card.VariantA: {Title: "Headline", Subtitle: "Standfirst"},
			},
			Caption:  "Caption.",
			Original: card.VariantCopy{Title: "Original", Subtitle: "Sub"},
		},
		Article: scrape.Article{URL: "https://example.com", Title: "Original"},
	}
}

// recorder collects published events and closes gates when waited-for
// events arrive.
type recorder struct {
	mu     sync.Mutex
	events []Event
	waits  map[string]chan struct{}
}

func newRecorder() *recorder {
	return &recorder{waits: make(map[string]chan struct{})}
}

func (r *recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	key := ev.Type + ":" + string(ev.Mode) + string(ev.Card)
	if ch, ok := r.waits[key]; ok {
		close(ch)
		delete(r.waits, key)
	}
}

// wait blocks until an event with the given type and mode/card suffix
// has been published.
func (r *recorder) wait(t *testing.T, typ string, suffix string) {
	t.Helper()
	key := typ + ":" + suffix
	r.mu.Lock()
	for _, ev := range r.events {
		if ev.Type+":"+string(ev.Mode)+string(ev.Card) == key {
			r.mu.Unlock()
			return
		}
	}
	ch := make(chan struct{})
	r.waits[key] = ch
	r.mu.Unlock()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event %s", key)
	}
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestSubmitAppliesResult(t *testing.T) {
	runner := newFakeRunner()
	rec := newRecorder()
	e := New(runner, state.InstantClock{}, rec)

	if err := e.SubmitURL("https://example.com/a"); err != nil {
		t.Fatal(err)
	}
	if e.View().Mode != state.Loading {
		t.Fatalf("mode = %q, want loading", e.View().Mode)
	}

	runner.results <- result{res: okResult()}
	rec.wait(t, "mode", string(state.App))
	rec.wait(t, "reveal", string(card.VariantD))

	v := e.View()
	if v.Mode != state.App || v.Step != state.StepPickCover {
		t.Fatalf("after pipeline: mode=%q step=%q", v.Mode, v.Step)
	}
	if v.Cards[0].Title != "HEADLINE" {
		t.Errorf("card A title = %q", v.Cards[0].Title)
	}
	if a := e.Article(); a == nil || a.Title != "Original" {
		t.Errorf("article = %+v", a)
	}

	// All four cards revealed in presentation order.
	var reveals []card.ID
	for _, ev := range rec.all() {
		if ev.Type == "reveal" {
			reveals = append(reveals, ev.Card)
		}
	}
	if len(reveals) != 4 || reveals[0] != card.VariantA || reveals[3] != card.VariantD {
		t.Errorf("reveal order = %v", reveals)
	}
}

func TestSubmitFailureKeepsAlternatives(t *testing.T) {
	runner := newFakeRunner()
	rec := newRecorder()
	e := New(runner, state.InstantClock{}, rec)

	if err := e.SubmitURL("https://example.com/bad"); err != nil {
		t.Fatal(err)
	}
	alts := &scrape.Alternatives{Query: "bad article", Results: []scrape.AltResult{{URL: "https://other.com/a"}}}
	runner.results <- result{err: &pipeline.ErrScrape{URL: "https://example.com/bad", Err: errors.New("404"), Alternatives: alts}}
	rec.wait(t, "mode", string(state.Landing))

	v := e.View()
	if v.Mode != state.Landing {
		t.Fatalf("mode = %q, want landing", v.Mode)
	}
	if v.Failure == nil || v.Failure.Alternatives == nil || len(v.Failure.Alternatives.Results) != 1 {
		t.Fatalf("failure = %+v", v.Failure)
	}

	// The next submit clears the failure.
	if err := e.SubmitURL("https://example.com/retry"); err != nil {
		t.Fatal(err)
	}
	if e.View().Failure != nil {
		t.Error("failure survived resubmit")
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	runner := newFakeRunner()
	rec := newRecorder()
	e := New(runner, state.InstantClock{}, rec)

	if err := e.SubmitURL("https://example.com/slow"); err != nil {
		t.Fatal(err)
	}
	// Reset while the pipeline is still in flight bumps the epoch.
	e.Reset()
	runner.results <- result{res: okResult()}

	// A second run resolves normally; it proves the goroutine from the
	// first run has consumed its result and dropped it.
	if err := e.SubmitURL("https://example.com/fresh"); err != nil {
		t.Fatal(err)
	}
	runner.results <- result{res: okResult()}
	rec.wait(t, "mode", string(state.App))

	v := e.View()
	if v.URL != "https://example.com/fresh" {
		t.Errorf("url = %q", v.URL)
	}
	if v.Cards[0].IsPlaceholder {
		t.Error("fresh result not applied")
	}
}

func TestEditLifecycle(t *testing.T) {
	e := newAppEditor(t)
	ctx := context.Background()

	if err := e.SelectCard(card.VariantA); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginEdit(ctx); err != nil {
		t.Fatal(err)
	}

	v := e.View()
	if v.Mode != state.Edit || v.Session == nil {
		t.Fatalf("after begin: mode=%q session=%v", v.Mode, v.Session)
	}
	if v.Session.Card.ID != card.VariantA {
		t.Errorf("session card = %q", v.Session.Card.ID)
	}

	// Session edits stay off the committed store until Generate.
	if err := e.EditTextCustom(card.FieldTitle, "Reworked"); err != nil {
		t.Fatal(err)
	}
	if got := e.View().Cards[0].Title; got != "HEADLINE" {
		t.Errorf("committed title changed early: %q", got)
	}

	if err := e.Generate(ctx); err != nil {
		t.Fatal(err)
	}
	v = e.View()
	if v.Mode != state.App || v.Step != state.StepGenCarousel {
		t.Fatalf("after generate: mode=%q step=%q", v.Mode, v.Step)
	}
	if v.Session != nil {
		t.Error("session survived generate")
	}
	if got := v.Cards[0].Title; got != "Reworked" {
		t.Errorf("commit lost: title = %q", got)
	}
}

func TestCancelDiscardsSession(t *testing.T) {
	e := newEditEditor(t)
	ctx := context.Background()

	if err := e.EditTextCustom(card.FieldTitle, "thrown away"); err != nil {
		t.Fatal(err)
	}
	if err := e.CancelEdit(ctx); err != nil {
		t.Fatal(err)
	}

	v := e.View()
	if v.Mode != state.App || v.Session != nil {
		t.Fatalf("after cancel: mode=%q", v.Mode)
	}
	if got := v.Cards[0].Title; got != "HEADLINE" {
		t.Errorf("cancel leaked into store: %q", got)
	}
}

func TestGenerateClearsHiddenTag(t *testing.T) {
	e := newEditEditor(t)
	if err := e.EditShowTag(false); err != nil {
		t.Fatal(err)
	}
	if err := e.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := e.View().Cards[0].Tag; got != "" {
		t.Errorf("hidden tag committed as %q, want empty", got)
	}
}

func TestSessionOpsOutsideEdit(t *testing.T) {
	e := newAppEditor(t)
	if err := e.EditTextCustom(card.FieldTitle, "x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("got %v, want ErrNotEditing", err)
	}
	if _, err := e.CycleColor(card.VisualTitleColor); !errors.Is(err, ErrNotEditing) {
		t.Errorf("got %v, want ErrNotEditing", err)
	}
}

func TestUpdateCardRequiresOverview(t *testing.T) {
	e := newEditEditor(t)
	err := e.UpdateCardText(card.VariantD, card.FieldCaption, "new caption")
	var rej *state.ErrRejected
	if !errors.As(err, &rej) {
		t.Fatalf("got %v, want ErrRejected", err)
	}

	if err := e.CancelEdit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateCardText(card.VariantD, card.FieldCaption, "new caption"); err != nil {
		t.Fatal(err)
	}
	if got := e.View().Cards[3].Caption; got != "new caption" {
		t.Errorf("caption = %q", got)
	}
}

func TestSubmitWithoutRunner(t *testing.T) {
	e := New(nil, state.InstantClock{}, nil)
	if err := e.SubmitURL("https://example.com"); err == nil {
		t.Fatal("submit with no pipeline should error")
	}
	if e.View().Mode != state.Landing {
		t.Errorf("mode moved to %q", e.View().Mode)
	}
}

// newAppEditor returns an editor settled in App with scraped content.
func newAppEditor(t *testing.T) *Editor {
	t.Helper()
	runner := newFakeRunner()
	rec := newRecorder()
	e := New(runner, state.InstantClock{}, rec)
	if err := e.SubmitURL("https://example.com"); err != nil {
		t.Fatal(err)
	}
	runner.results <- result{res: okResult()}
	rec.wait(t, "mode", string(state.App))
	return e
}

// newEditEditor returns an editor in Edit on variant A.
func newEditEditor(t *testing.T) *Editor {
	t.Helper()
	e := newAppEditor(t)
	if err := e.SelectCard(card.VariantA); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginEdit(context.Background()); err != nil {
		t.Fatal(err)
	}
	return e
}

// Generate and CancelEdit fired from two goroutines must never leave
// the store holding a commit whose Generate call reported failure.
// Exactly one of the pair can leave Edit; the commit rides inside that
// same critical section.
func TestGenerateCancelRaceKeepsStoreConsistent(t *testing.T) {
	const edited = "headline from the edit pass"
	for i := 0; i < 50; i++ {
		e := newEditEditor(t)
		if err := e.EditTextCustom(card.FieldTitle, edited); err != nil {
			t.Fatal(err)
		}

		genErr := make(chan error, 1)
		go func() { genErr <- e.Generate(context.Background()) }()
		cancelErr := e.CancelEdit(context.Background())
		err := <-genErr

		if (err == nil) == (cancelErr == nil) {
			t.Fatalf("iteration %d: generate err = %v, cancel err = %v, want exactly one winner", i, err, cancelErr)
		}
		got := e.View().Cards[0].Title
		if err == nil && got != edited {
			t.Fatalf("iteration %d: generate won but store title = %q", i, got)
		}
		if err != nil && got == edited {
			t.Fatalf("iteration %d: generate was rejected but its commit reached the store", i)
		}
	}
}
