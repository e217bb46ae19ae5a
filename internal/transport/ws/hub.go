package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub manages all active WebSocket clients and routes events to them.
// Lifecycle changes flow through the Run loop; the clients map is also read
// by the notifier and the poller, so it is mutex-guarded.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("ws hub: user %s connected (%d total)", client.userID, total)

			h.broadcastPresence(client.userID, "online")

		case client := <-h.unregister:
			h.mu.Lock()
			cur, ok := h.clients[client.userID]
			evicted := ok && cur == client
			if evicted {
				delete(h.clients, client.userID)
			}
			total := len(h.clients)
			h.mu.Unlock()
			close(client.send)
			close(client.done)
			if !evicted {
				// A stale connection; the user already reconnected and the
				// map entry belongs to the newer client.
				continue
			}
			log.Printf("ws hub: user %s disconnected (%d total)", client.userID, total)

			h.broadcastPresence(client.userID, "offline")
		}
	}
}

// SendToUser delivers an event to one user, if connected. The event is
// dropped silently when the client's buffer is full; the poller snapshot
// converges them later.
func (h *Hub) SendToUser(userID uuid.UUID, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// ActiveUserIDs returns the users that currently hold a connection.
func (h *Hub) ActiveUserIDs() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// broadcastPresence sends online/offline to all other connected clients.
func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, PresencePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.userID == userID {
			continue
		}
		select {
		case client.send <- data:
		default:
		}
	}
}
