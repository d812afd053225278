package server

import (
	"sync"

	"github.com/liaptui/liaptui-server/internal/protocol"
)

// Sender delivers one outbound message to a single transport. Connections
// implement it; tests substitute a recording fake.
type Sender interface {
	Send(msg protocol.ServerMessage) error
}

type binding struct {
	roomID string
	player string
	sender Sender
}

// Registry maps transport ids to (room, player) seats and back. It is the
// only place that knows which socket speaks for which seat.
type Registry struct {
	mu       sync.RWMutex
	byConn   map[string]binding
	byPlayer map[string]map[string]string // roomID -> player -> connID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn:   make(map[string]binding),
		byPlayer: make(map[string]map[string]string),
	}
}

// Register binds a transport to a seat. Re-registering the same transport id
// is idempotent; registering a new transport for the same seat displaces the
// old binding (the reconnect path).
func (r *Registry) Register(connID string, sender Sender, roomID, player string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byPlayer[roomID][player]; ok && old != connID {
		delete(r.byConn, old)
	}
	r.byConn[connID] = binding{roomID: roomID, player: player, sender: sender}
	if r.byPlayer[roomID] == nil {
		r.byPlayer[roomID] = make(map[string]string)
	}
	r.byPlayer[roomID][player] = connID
}

// OnDisconnect removes a transport binding and reports the seat it spoke for.
func (r *Registry) OnDisconnect(connID string) (roomID, player string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, found := r.byConn[connID]
	if !found {
		return "", "", false
	}
	delete(r.byConn, connID)
	if r.byPlayer[b.roomID] != nil && r.byPlayer[b.roomID][b.player] == connID {
		delete(r.byPlayer[b.roomID], b.player)
	}
	return b.roomID, b.player, true
}

// Lookup resolves a transport id to its seat.
func (r *Registry) Lookup(connID string) (roomID, player string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, found := r.byConn[connID]
	return b.roomID, b.player, found
}

// Sender returns the live transport for a seat, or nil when the seat is
// disconnected.
func (r *Registry) Sender(roomID, player string) Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byPlayer[roomID][player]
	if !ok {
		return nil
	}
	return r.byConn[connID].sender
}

// Bindings returns the live (connID, sender) pairs for a room.
func (r *Registry) Bindings(roomID string) map[string]Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Sender)
	for _, connID := range r.byPlayer[roomID] {
		out[connID] = r.byConn[connID].sender
	}
	return out
}

// DropRoom removes every binding for a destroyed room.
func (r *Registry) DropRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, connID := range r.byPlayer[roomID] {
		delete(r.byConn, connID)
	}
	delete(r.byPlayer, roomID)
}
