// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package realtime pushes editor events to connected browsers over
// WebSocket. The reveal stagger and mode changes originate server-side,
// so the client needs a push channel to animate them in time.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cardstudio/internal/editor"
)

const (
	// writeWait bounds one frame write to a slow client.
	writeWait = 5 * time.Second

	// sendBuffer is the per-connection event queue. A client that falls
	// this far behind is dropped rather than allowed to block the editor.
	sendBuffer = 32
)

// conn is one subscribed browser tab.
type conn struct {
	ws   *websocket.Conn
	send chan editor.Event
}

// Hub fans editor events out to each session's open tabs.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]map[*conn]bool
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same-origin only: the cookie-bound session already scopes
			// what this socket can observe.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// Subscribe upgrades the request and streams the session's events until
// the client goes away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, sessionID string) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &conn{ws: ws, send: make(chan editor.Event, sendBuffer)}
	h.mu.Lock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[*conn]bool)
	}
	h.sessions[sessionID][c] = true
	h.mu.Unlock()

	go h.writeLoop(sessionID, c)
	h.readLoop(sessionID, c)
}

// writeLoop drains the send queue onto the socket.
func (h *Hub) writeLoop(sessionID string, c *conn) {
	for ev := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteJSON(ev); err != nil {
			h.drop(sessionID, c)
			return
		}
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, nil)
	c.ws.Close()
}

// readLoop consumes (and discards) client frames so pings and closes
// are processed.
func (h *Hub) readLoop(sessionID string, c *conn) {
	defer h.drop(sessionID, c)
	c.ws.SetReadLimit(512)
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// drop unregisters a connection and closes its socket.
func (h *Hub) drop(sessionID string, c *conn) {
	h.mu.Lock()
	if conns, ok := h.sessions[sessionID]; ok && conns[c] {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.sessions, sessionID)
		}
		close(c.send)
	}
	h.mu.Unlock()
	c.ws.Close()
}

// publish queues an event for every tab of one session. Never blocks:
// a full queue drops the event for that tab.
func (h *Hub) publish(sessionID string, ev editor.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- ev:
		default:
			slog.Debug("realtime queue full, event dropped", "session", sessionID)
		}
	}
}

// sessionNotifier adapts the hub to one editor's Notifier.
type sessionNotifier struct {
	hub *Hub
	id  string
}

func (n sessionNotifier) Publish(ev editor.Event) { n.hub.publish(n.id, ev) }

// Notifier returns the editor.Notifier bound to a session.
func (h *Hub) Notifier(sessionID string) editor.Notifier {
	return sessionNotifier{hub: h, id: sessionID}
}
