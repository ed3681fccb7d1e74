package socket

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strconv"
	"sync"
)

// Hub is the room-based broadcast primitive.  Every operation is a
// room keyed by its stringified id; connections join a room to
// receive its events.  Delivery is best-effort and at-most-once: a
// disconnected client misses events until it reconnects and
// re-synchronizes with a full fetch, and a client whose send buffer
// stays full is dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Room returns the room name for an operation id.
func Room(opID uint64) string { return strconv.FormatUint(opID, 10) }

// Add registers a connection with the hub.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

// Remove detaches a connection from the hub and every room it
// joined, and closes its outbound queue.  Idempotent.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c.ID]
	delete(h.clients, c.ID)
	for name, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, name)
		}
	}
	h.mu.Unlock()
	if present {
		c.close()
	}
}

// Join adds a connection to a room.  Joining twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// Leave removes a connection from a room.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitToRoom sends an event to every member of a room.
func (h *Hub) EmitToRoom(room, event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.deliver(targets, data)
}

// EmitToConn sends an event to one connection.
func (h *Hub) EmitToConn(connID, event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c != nil {
		h.deliver([]*Client{c}, data)
	}
}

// EmitGlobal sends an event to every connected client, used for
// notifications not scoped to one room.
func (h *Hub) EmitGlobal(event string, payload any) {
	data, err := marshalEnvelope(event, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.deliver(targets, data)
}

// CloseConn force-closes one connection, detaching it first so its
// rooms are left.  Used when a second login displaces an earlier
// connection of the same user.
func (h *Hub) CloseConn(connID string) {
	h.mu.RLock()
	c := h.clients[connID]
	h.mu.RUnlock()
	if c != nil {
		h.Remove(c)
	}
}

func (h *Hub) deliver(targets []*Client, data []byte) {
	for _, c := range targets {
		if !c.enqueue(data) {
			// Slow consumer: drop the whole connection rather than
			// block the broadcast path.
			log.Printf("socket: dropping slow connection %s", c.ID)
			h.Remove(c)
		}
	}
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		log.Printf("socket: marshal %s event: %v", event, err)
		return nil, err
	}
	return data, nil
}

// newConnID returns a random 16-byte hex connection identifier.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(buf)
}
