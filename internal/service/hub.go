package service

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub pushes invalidation events to connected UI clients over websockets
// so views can re-pull affected queries without polling.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Broadcast sends the event to every connected client. Clients that fail
// to receive are dropped; the UI reconnects on its own.
func (h *Hub) Broadcast(event InvalidationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		err := conn.WriteJSON(event)
		if err != nil {
			slog.Debug("dropping realtime client", slog.String("error", err.Error()))
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Count reports connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
