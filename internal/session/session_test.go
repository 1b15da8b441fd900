// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Cookie handling is tested in-process; snapshot persistence tests are
// integration tests that skip when Valkey is unreachable.
package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"cardstudio/internal/editor"
	"cardstudio/internal/state"
)

func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// deadClient returns a client pointed at a closed port. Commands fail
// fast instead of panicking, which is what the warn-and-continue paths
// need.
func deadClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "localhost:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func testFactory(id string) *editor.Editor {
	return editor.New(nil, state.InstantClock{}, nil)
}

// sessionCookie pulls the session cookie out of a recorded response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestCreateSetsCookie(t *testing.T) {
	store := NewStore(deadClient(), false)
	rec := httptest.NewRecorder()

	id, err := store.Create(rec)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(id) != idLength*2 {
		t.Errorf("id length = %d, want %d hex chars", len(id), idLength*2)
	}

	c := sessionCookie(t, rec)
	if c.Value != id {
		t.Error("cookie value differs from returned id")
	}
	if !c.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Error("cookie must be SameSite=Lax")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
}

func TestIDReadsCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ID(r); got != "" {
		t.Errorf("ID without cookie = %q, want empty", got)
	}

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "abc123"})
	if got := ID(r); got != "abc123" {
		t.Errorf("ID = %q, want abc123", got)
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	ed := testFactory("roundtrip")
	ed.SetTheme("cyber")
	snap := ed.Snap()

	if err := store.Save(ctx, "roundtrip", snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "roundtrip")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil for a saved session")
	}
	if got.ThemeID != "cyber" {
		t.Errorf("ThemeID = %q, want cyber", got.ThemeID)
	}
	if got.Machine.Mode != snap.Machine.Mode {
		t.Errorf("mode = %q, want %q", got.Machine.Mode, snap.Machine.Mode)
	}
}

func TestStoreLoadMiss(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)

	snap, err := store.Load(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Error("expected nil snapshot on miss")
	}
}

func TestStoreLoadCorruptSnapshot(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	client.Set(ctx, keyPrefix+"corrupt", "{broken json", time.Minute)

	snap, err := store.Load(ctx, "corrupt")
	if err != nil {
		t.Fatalf("corrupt snapshot should not error, got: %v", err)
	}
	if snap != nil {
		t.Error("corrupt snapshot should behave like a miss")
	}
}

func TestStoreDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	ed := testFactory("doomed")
	if err := store.Save(ctx, "doomed", ed.Snap()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "doomed"})
	rec := httptest.NewRecorder()

	if err := store.Destroy(ctx, rec, r); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if snap, _ := store.Load(ctx, "doomed"); snap != nil {
		t.Error("snapshot survived Destroy")
	}
	if c := sessionCookie(t, rec); c.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", c.MaxAge)
	}
}

func TestManagerAcquireNewSession(t *testing.T) {
	m := NewManager(NewStore(deadClient(), false), testFactory)

	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()

	ed, id, err := m.Acquire(context.Background(), rec, r)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if ed == nil || id == "" {
		t.Fatal("Acquire returned no editor or id")
	}
	if c := sessionCookie(t, rec); c.Value != id {
		t.Error("cookie does not carry the new session id")
	}
}

func TestManagerReusesLiveEditor(t *testing.T) {
	m := NewManager(NewStore(deadClient(), false), testFactory)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	first, id, err := m.Acquire(ctx, rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	second, _, err := m.Acquire(ctx, httptest.NewRecorder(), r)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if first != second {
		t.Error("same session must return the same live editor")
	}
}

func TestManagerFallsBackWhenStoreIsDown(t *testing.T) {
	// A cookie for an unknown session with Valkey unreachable must still
	// yield a working editor.
	m := NewManager(NewStore(deadClient(), false), testFactory)

	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "ghost-session"})

	ed, id, err := m.Acquire(context.Background(), httptest.NewRecorder(), r)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if id != "ghost-session" {
		t.Errorf("id = %q, want ghost-session", id)
	}
	if got := ed.View().Mode; got != state.Landing {
		t.Errorf("fresh editor mode = %q, want %q", got, state.Landing)
	}
}

func TestManagerPersistAndRestore(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false)
	ctx := context.Background()

	m := NewManager(store, testFactory)
	rec := httptest.NewRecorder()
	ed, id, err := m.Acquire(ctx, rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	ed.SetTheme("mono")
	m.Persist(ctx, id)

	// A second manager simulates a process restart.
	m2 := NewManager(store, testFactory)
	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	restored, _, err := m2.Acquire(ctx, httptest.NewRecorder(), r)
	if err != nil {
		t.Fatalf("restore Acquire: %v", err)
	}
	if restored == ed {
		t.Fatal("expected a distinct editor instance after restart")
	}
	if got := restored.View().ThemeID; got != "mono" {
		t.Errorf("restored theme = %q, want mono", got)
	}
}

func TestManagerReapsIdleEditors(t *testing.T) {
	m := NewManager(NewStore(deadClient(), false), testFactory)
	defer m.Stop()
	ctx := context.Background()

	var evicted []string
	m.OnEvict(func(id string) { evicted = append(evicted, id) })

	first, id, err := m.Acquire(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// A fresh editor survives a sweep.
	m.reapIdle(time.Now())
	if len(evicted) != 0 {
		t.Fatalf("fresh session evicted: %v", evicted)
	}

	// Backdate the session past the idle cutoff.
	m.mu.Lock()
	m.editors[id].lastSeen = time.Now().Add(-idleTTL - time.Minute)
	m.mu.Unlock()

	m.reapIdle(time.Now())
	if len(evicted) != 1 || evicted[0] != id {
		t.Fatalf("evicted = %v, want [%s]", evicted, id)
	}

	// The next request for the session gets a fresh editor.
	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	second, _, err := m.Acquire(ctx, httptest.NewRecorder(), r)
	if err != nil {
		t.Fatalf("Acquire after reap: %v", err)
	}
	if second == first {
		t.Error("reaped editor still live")
	}
}

func TestManagerReapSparesRevivedSession(t *testing.T) {
	m := NewManager(NewStore(deadClient(), false), testFactory)
	defer m.Stop()
	ctx := context.Background()

	_, id, err := m.Acquire(ctx, httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	// A sweep with a cutoff in the past must not touch an active session.
	m.reapIdle(time.Now().Add(-time.Hour))

	m.mu.Lock()
	_, alive := m.editors[id]
	m.mu.Unlock()
	if !alive {
		t.Error("active session reaped")
	}
}

func TestManagerDrop(t *testing.T) {
	client := testValkeyClient(t)
	m := NewManager(NewStore(client, false), testFactory)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	_, id, err := m.Acquire(ctx, rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	m.Persist(ctx, id)

	r := httptest.NewRequest(http.MethodPost, "/api/reset", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	m.Drop(ctx, httptest.NewRecorder(), r)

	if snap, _ := NewStore(client, false).Load(ctx, id); snap != nil {
		t.Error("snapshot survived Drop")
	}
}
