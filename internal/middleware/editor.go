// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"cardstudio/internal/editor"
	"cardstudio/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// EditorKey is the context key for the session's editor.
	EditorKey contextKey = "editor"

	// SessionIDKey is the context key for the session ID.
	SessionIDKey contextKey = "session_id"
)

// LoadEditor resolves the request's session to its live editor (creating
// or restoring one as needed) and stores both the editor and the session
// ID in the request context. Downstream handlers access them via
// EditorFromCtx and SessionIDFromCtx.
func LoadEditor(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ed, id, err := manager.Acquire(r.Context(), w, r)
			if err != nil {
				slog.Error("session acquire failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), EditorKey, ed)
			ctx = context.WithValue(ctx, SessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EditorFromCtx extracts the editor from the request context. Returns
// nil outside the LoadEditor chain.
func EditorFromCtx(ctx context.Context) *editor.Editor {
	ed, _ := ctx.Value(EditorKey).(*editor.Editor)
	return ed
}

// SessionIDFromCtx extracts the session ID from the request context.
func SessionIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(SessionIDKey).(string)
	return id
}
