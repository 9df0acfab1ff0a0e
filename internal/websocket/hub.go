package websocket

import (
	"encoding/json"
	"sync"

	"giftboard/internal/notify"
	"giftboard/pkg/logger"
)

// Hub maintains the set of active WebSocket clients and routes published
// events to the clients subscribed to the event's topic.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish implements notify.Publisher. Delivery is best-effort: a client
// with a full send buffer misses the event rather than block the caller.
func (h *Hub) Publish(event notify.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws: marshal event", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.subscribed(event.Topic) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// buffer full, drop for this client
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
