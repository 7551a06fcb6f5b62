package hub

import (
	"encoding/json"
	"log"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection. It's essentially a
// channel that the SSE handler will listen to.
type Client chan []byte

// clientBuffer bounds how many undelivered events a slow client may hold.
const clientBuffer = 16

// Hub tracks live connections and the broadcast group of each lobby.
type Hub struct {
	conns  map[string]Client          // connection id -> delivery channel
	groups map[string]map[string]bool // lobby id -> set of connection ids
	mu     sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]Client),
		groups: make(map[string]map[string]bool),
	}
}

// Register adds a connection and returns the channel its handler should
// drain. Registering an id twice replaces the previous channel.
func (h *Hub) Register(connectionID string) Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.conns[connectionID]; ok {
		close(old)
	}
	client := make(Client, clientBuffer)
	h.conns[connectionID] = client
	return client
}

// Unregister removes a connection from the hub and from every broadcast
// group it joined. The channel is closed to signal the handler to stop.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.conns[connectionID]
	if !ok {
		return
	}
	delete(h.conns, connectionID)
	close(client)

	for lobbyID, members := range h.groups {
		if members[connectionID] {
			delete(members, connectionID)
			if len(members) == 0 {
				delete(h.groups, lobbyID)
			}
		}
	}
}

// Join adds a connection to a lobby's broadcast group.
func (h *Hub) Join(lobbyID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[lobbyID]; !ok {
		h.groups[lobbyID] = make(map[string]bool)
	}
	h.groups[lobbyID][connectionID] = true
}

// Leave removes a connection from a lobby's broadcast group.
func (h *Hub) Leave(lobbyID, connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[lobbyID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.groups, lobbyID)
		}
	}
}

// CloseGroup drops a lobby's broadcast group. The connections themselves
// stay registered.
func (h *Hub) CloseGroup(lobbyID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, lobbyID)
}

// Send delivers an event to a single connection.
func (h *Hub) Send(connectionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.conns[connectionID]
	if !ok {
		return
	}
	h.push(client, event)
}

// Broadcast sends an event to all connections in a lobby's group.
func (h *Hub) Broadcast(lobbyID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.groups[lobbyID]
	if !ok {
		return
	}
	for connectionID := range members {
		if client, ok := h.conns[connectionID]; ok {
			h.push(client, event)
		}
	}
}

func (h *Hub) push(client Client, event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub: failed to marshal %s event: %v", event.Type, err)
		return
	}
	// Non-blocking send so a slow client cannot block the hub. The
	// unsubscribe logic cleans up dead clients eventually.
	select {
	case client <- messageBytes:
	default:
	}
}
