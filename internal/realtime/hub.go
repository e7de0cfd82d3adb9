package realtime

import (
	"sync"

	"github.com/bytedance/sonic"
)

// Client is a single connection of a user. The network side lives in the
// websocket handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Event types pushed to clients.
const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"
)

// Event is the payload pushed to clients when a task changes.
type Event struct {
	Type      string `json:"type"`
	TaskID    string `json:"task_id"`
	CompanyID string `json:"company_id"`
	Status    string `json:"status"`
	ActorID   string `json:"actor_id"`
	Version   int    `json:"version"`
}

// Hub maintains active user connections and fans events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Connected returns the number of clients registered for a user.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends a message to all clients of a user and returns how many
// accepted it. Failed clients are cleaned up by their handler.
func (h *Hub) Broadcast(userID string, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.clients[userID] {
		if c.Send(message) {
			sent++
		}
	}
	return sent
}

// Publish encodes evt once and sends it to each distinct user.
func (h *Hub) Publish(evt Event, userIDs ...string) error {
	if evt.Version == 0 {
		evt.Version = 1
	}
	msg, err := sonic.Marshal(evt)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		h.Broadcast(id, msg)
	}
	return nil
}
