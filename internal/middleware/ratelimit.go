// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"cardstudio/internal/session"
)

// visitor tracks request timestamps for one limiter key.
type visitor struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter enforces a sliding-window request limit per visitor.
// Requests carrying a session cookie are keyed by session, so browsers
// behind a shared NAT don't consume each other's submit budget; requests
// without a session fall back to the client IP.
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*visitor
	limit    int           // max requests per window
	window   time.Duration // sliding window duration
	stopCh   chan struct{}
}

// NewRateLimiter creates a limiter allowing limit requests per window
// and starts a background goroutine that drops stale visitors.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		stopCh:   make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow records a hit for key and reports whether it stays within the
// window limit.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.RLock()
	v, ok := rl.visitors[key]
	rl.mu.RUnlock()

	if !ok {
		rl.mu.Lock()
		// Another request may have created the visitor meanwhile.
		v, ok = rl.visitors[key]
		if !ok {
			v = &visitor{}
			rl.visitors[key] = v
		}
		rl.mu.Unlock()
	}

	now := time.Now()
	cutoff := now.Add(-rl.window)

	v.mu.Lock()
	defer v.mu.Unlock()

	live := v.hits[:0]
	for _, ts := range v.hits {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	v.hits = live

	if len(v.hits) >= rl.limit {
		return false
	}
	v.hits = append(v.hits, now)
	return true
}

// cleanup drops visitors whose last hit fell out of the window.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		v.mu.Lock()
		stale := true
		for _, ts := range v.hits {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		v.mu.Unlock()

		if stale {
			delete(rl.visitors, key)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(limiterKey(r)) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limiterKey prefers the session over the network address: the session
// cookie is present on every studio request after the first state fetch.
func limiterKey(r *http.Request) string {
	if id := session.ID(r); id != "" {
		return "s:" + id
	}
	return "ip:" + clientIP(r)
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// X-Forwarded-For may list several hops; the leftmost is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
