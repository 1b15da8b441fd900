// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session ties a browser to its editor. Each browser gets a
// secure cookie; the editor's snapshot is stored as JSON in Valkey with
// automatic TTL expiry, so closing the tab and coming back restores the
// working state.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"cardstudio/internal/editor"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "cs_session"

	// DefaultTTL is how long a session lives in Valkey before automatic expiry.
	DefaultTTL = 7 * 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Store persists editor snapshots in Valkey keyed by session ID.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure controls the Secure flag on the session cookie and should be
// true behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Create generates a new session ID and sets the session cookie on the
// response. Nothing is written to Valkey until the first Save.
func (s *Store) Create(w http.ResponseWriter) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// ID returns the session ID from the request cookie, or "" when the
// browser has no session yet.
func ID(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Load retrieves the stored snapshot for a session ID. Returns nil on
// miss; a corrupt payload is treated as a miss so the caller falls back
// to a fresh editor instead of failing.
func (s *Store) Load(ctx context.Context, id string) (*editor.Snapshot, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	var snap editor.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, nil // corrupt snapshot, start fresh
	}
	return &snap, nil
}

// Save writes the editor snapshot for a session ID, resetting the TTL.
func (s *Store) Save(ctx context.Context, id string, snap editor.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := ID(r)
	if id == "" {
		return nil // No cookie, nothing to destroy
	}

	s.client.Del(ctx, keyPrefix+id)

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
