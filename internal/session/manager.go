// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cardstudio/internal/editor"
)

// EditorFactory builds a fresh editor for a session, with its push
// notifier bound to the session ID.
type EditorFactory func(sessionID string) *editor.Editor

const (
	// idleTTL is how long a live editor survives without a request
	// before the reaper persists and evicts it. The snapshot stays in
	// Valkey, so a returning browser restores seamlessly.
	idleTTL = 30 * time.Minute

	// reapInterval is how often the reaper sweeps for idle editors.
	reapInterval = 5 * time.Minute
)

// managerEntry pairs a live editor with its last-request time.
type managerEntry struct {
	ed       *editor.Editor
	lastSeen time.Time
}

// Manager hands each request its session's live editor, creating or
// restoring one as needed. Live editors are kept in memory; their
// snapshots go to Valkey on Persist so a restart or a returning browser
// picks up where it left off. A background reaper persists and evicts
// editors idle past idleTTL so abandoned sessions don't pin memory.
type Manager struct {
	mu      sync.Mutex
	editors map[string]*managerEntry
	onEvict []func(sessionID string)

	store   *Store
	factory EditorFactory
	stopCh  chan struct{}
}

// NewManager creates a manager over the given snapshot store and starts
// the idle reaper.
func NewManager(store *Store, factory EditorFactory) *Manager {
	m := &Manager{
		editors: make(map[string]*managerEntry),
		store:   store,
		factory: factory,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.reapIdle(time.Now())
			case <-m.stopCh:
				return
			}
		}
	}()

	return m
}

// Stop terminates the background reaper goroutine.
func (m *Manager) Stop() {
	close(m.stopCh)
}

// OnEvict registers a callback invoked with the session ID whenever a
// live editor leaves memory (reaped or dropped). Used to release
// per-session state held elsewhere.
func (m *Manager) OnEvict(fn func(sessionID string)) {
	m.mu.Lock()
	m.onEvict = append(m.onEvict, fn)
	m.mu.Unlock()
}

// Acquire returns the editor for the request's session, restoring it
// from Valkey or creating a fresh one (and setting the cookie) as
// needed. A damaged stored snapshot falls back to a fresh editor.
func (m *Manager) Acquire(ctx context.Context, w http.ResponseWriter, r *http.Request) (*editor.Editor, string, error) {
	id := ID(r)

	if id != "" {
		m.mu.Lock()
		if e, ok := m.editors[id]; ok {
			e.lastSeen = time.Now()
			m.mu.Unlock()
			return e.ed, id, nil
		}
		m.mu.Unlock()

		snap, err := m.store.Load(ctx, id)
		if err != nil {
			slog.Warn("session restore failed, starting fresh", "error", err)
		}
		ed := m.factory(id)
		if snap != nil {
			ed.Restore(*snap)
			slog.Debug("session restored", "mode", snap.Machine.Mode)
		}
		m.mu.Lock()
		// Another request for the same session may have won the race.
		if existing, ok := m.editors[id]; ok {
			existing.lastSeen = time.Now()
			ed = existing.ed
		} else {
			m.editors[id] = &managerEntry{ed: ed, lastSeen: time.Now()}
		}
		m.mu.Unlock()
		return ed, id, nil
	}

	id, err := m.store.Create(w)
	if err != nil {
		return nil, "", err
	}
	ed := m.factory(id)
	m.mu.Lock()
	m.editors[id] = &managerEntry{ed: ed, lastSeen: time.Now()}
	m.mu.Unlock()
	return ed, id, nil
}

// Persist writes the session's current snapshot to Valkey. Called after
// every mutating request; failures are logged, not surfaced, since the
// in-memory editor stays authoritative.
func (m *Manager) Persist(ctx context.Context, id string) {
	m.mu.Lock()
	e, ok := m.editors[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := m.store.Save(ctx, id, e.ed.Snap()); err != nil {
		slog.Warn("session persist failed", "error", err)
	}
}

// Drop removes the live editor and its stored snapshot.
func (m *Manager) Drop(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id := ID(r)
	if id == "" {
		return
	}
	m.mu.Lock()
	_, ok := m.editors[id]
	delete(m.editors, id)
	hooks := m.onEvict
	m.mu.Unlock()
	if ok {
		for _, fn := range hooks {
			fn(id)
		}
	}
	if err := m.store.Destroy(ctx, w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
}

// reapIdle persists and evicts every editor whose last request is older
// than idleTTL. The persisted snapshot keeps its Valkey TTL, so the
// session itself is not lost, only its memory.
func (m *Manager) reapIdle(now time.Time) {
	cutoff := now.Add(-idleTTL)

	m.mu.Lock()
	var idle []string
	for id, e := range m.editors {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	hooks := m.onEvict
	m.mu.Unlock()

	for _, id := range idle {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		m.Persist(ctx, id)
		cancel()

		m.mu.Lock()
		// A request may have revived the session since the scan.
		if e, ok := m.editors[id]; ok && e.lastSeen.Before(cutoff) {
			delete(m.editors, id)
			m.mu.Unlock()
			for _, fn := range hooks {
				fn(id)
			}
			continue
		}
		m.mu.Unlock()
	}

	if len(idle) > 0 {
		slog.Info("idle sessions evicted", "count", len(idle))
	}
}

// PersistAll snapshots every live editor, used during graceful shutdown.
func (m *Manager) PersistAll(ctx context.Context) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Persist(ctx, id)
	}
	if len(ids) > 0 {
		slog.Info("sessions persisted", "count", len(ids))
	}
}
