package ws

import (
	"log"
	"sync"
)

// Message is the JSON envelope for every server-to-client event.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected clients and their room memberships across all
// namespaces. Rooms are purely additive bookkeeping with no persistence;
// a reconnecting client has to rejoin.
type Hub struct {
	mu         sync.RWMutex
	namespaces map[string]map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	membership map[*Client]map[string]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		namespaces: make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		membership: make(map[*Client]map[string]struct{}),
	}
}

// Add registers a connected client under its namespace.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ns, ok := h.namespaces[c.namespace]
	if !ok {
		ns = make(map[*Client]struct{})
		h.namespaces[c.namespace] = ns
	}
	ns[c] = struct{}{}
	h.membership[c] = make(map[string]struct{})
}

// Remove unregisters a client from its namespace and every room it joined.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ns, ok := h.namespaces[c.namespace]; ok {
		delete(ns, c)
	}
	for room := range h.membership[c] {
		h.dropFromRoom(c, room)
	}
	delete(h.membership, c)
}

// Join adds a client to a room.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	if joined, ok := h.membership[c]; ok {
		joined[room] = struct{}{}
	}
}

// Leave removes a client from a room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromRoom(c, room)
	if joined, ok := h.membership[c]; ok {
		delete(joined, room)
	}
}

func (h *Hub) dropFromRoom(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// ToRoom sends an event to every client joined to a room.
func (h *Hub) ToRoom(room, event string, data any) {
	h.toRoomExcept(room, nil, event, data)
}

// ToRoomExcept sends an event to every client joined to a room except one,
// typically the sender.
func (h *Hub) ToRoomExcept(room string, except *Client, event string, data any) {
	h.toRoomExcept(room, except, event, data)
}

func (h *Hub) toRoomExcept(room string, except *Client, event string, data any) {
	msg := &Message{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueue(msg)
	}
}

// ToNamespace sends an event to every client connected to a namespace,
// regardless of room membership. Used for the global machine-status fan-out.
func (h *Hub) ToNamespace(namespace, event string, data any) {
	msg := &Message{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.namespaces[namespace] {
		c.enqueue(msg)
	}
}

// DisconnectAll closes every connected client. Called on shutdown.
func (h *Hub) DisconnectAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.membership))
	for c := range h.membership {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	log.Printf("disconnected %d websocket clients", len(clients))
}
