// Package room holds the lobby-side state of one game room: the four-slot
// seat roster, host identity and per-seat connection status. Game state lives
// with the state machine; the room is the membership truth.
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/liaptui/liaptui-server/internal/game"
)

var (
	ErrRoomFull    = errors.New("room is full")
	ErrNameTaken   = errors.New("name already taken")
	ErrRoomStarted = errors.New("game already started")
	ErrNotFound    = errors.New("player not found")
	ErrSlotTaken   = errors.New("slot already occupied")
)

// Seat is one of the four stable slots. A seat never migrates slots; its
// occupant may flip to bot control on disconnect and back on reconnect.
type Seat struct {
	Name          string
	IsBot         bool
	OriginalIsBot bool
	Connected     bool
	DisconnectAt  time.Time
}

// Room is a four-seat lobby. All methods are safe for concurrent use; the
// supervisor is the only writer, the machine and broadcaster read through it.
type Room struct {
	mu sync.RWMutex

	ID        string
	CreatedAt time.Time

	host    string
	seats   [game.NumSeats]*Seat
	started bool
}

// New creates an empty room. The creator joins separately.
func New(id string, now time.Time) *Room {
	return &Room{ID: id, CreatedAt: now}
}

// AddPlayer seats a player in the lowest empty slot and returns its index.
// The first occupant becomes host.
func (r *Room) AddPlayer(name string, isBot bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return -1, ErrRoomStarted
	}
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			return -1, ErrNameTaken
		}
	}
	for i, s := range r.seats {
		if s == nil {
			r.seats[i] = &Seat{
				Name:          name,
				IsBot:         isBot,
				OriginalIsBot: isBot,
				Connected:     !isBot,
			}
			if r.host == "" {
				r.host = name
			}
			return i, nil
		}
	}
	return -1, ErrRoomFull
}

// AddBot seats a bot in a specific slot, or the lowest empty one when slot is
// negative.
func (r *Room) AddBot(name string, slot int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return -1, ErrRoomStarted
	}
	if slot >= game.NumSeats {
		return -1, ErrSlotTaken
	}
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			return -1, ErrNameTaken
		}
	}

	place := func(i int) (int, error) {
		if r.seats[i] != nil {
			return -1, ErrSlotTaken
		}
		r.seats[i] = &Seat{Name: name, IsBot: true, OriginalIsBot: true}
		return i, nil
	}

	if slot >= 0 {
		return place(slot)
	}
	for i, s := range r.seats {
		if s == nil {
			return place(i)
		}
	}
	return -1, ErrRoomFull
}

// Removed describes the result of removing a player.
type Removed struct {
	SeatIndex int
	WasHost   bool
}

// RemovePlayer vacates a seat. When the removed player was host the caller
// must follow up with MigrateHost.
func (r *Room) RemovePlayer(name string) (Removed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.seats {
		if s != nil && s.Name == name {
			wasHost := r.host == name
			r.seats[i] = nil
			if wasHost {
				r.host = ""
			}
			return Removed{SeatIndex: i, WasHost: wasHost}, nil
		}
	}
	return Removed{}, ErrNotFound
}

// MigrateHost deterministically elects a host: the lowest-slot connected
// human, else the lowest-slot human, else the lowest-slot bot, else "". A
// no-op when the current host is a seated, connected human.
func (r *Room) MigrateHost() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.host != "" {
		for _, s := range r.seats {
			if s != nil && s.Name == r.host && !s.OriginalIsBot && s.Connected {
				return r.host
			}
		}
	}

	pick := func(match func(*Seat) bool) string {
		for _, s := range r.seats {
			if s != nil && match(s) {
				return s.Name
			}
		}
		return ""
	}

	name := pick(func(s *Seat) bool { return !s.OriginalIsBot && s.Connected })
	if name == "" {
		name = pick(func(s *Seat) bool { return !s.OriginalIsBot })
	}
	if name == "" {
		name = pick(func(s *Seat) bool { return true })
	}
	r.host = name
	return name
}

// IsHost reports whether name currently holds the host role.
func (r *Room) IsHost(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return name != "" && r.host == name
}

// Host returns the current host name.
func (r *Room) Host() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

// HasAnyHumans reports whether any seat is still under human control.
// Disconnected humans count as bots here; the room dies when the last human
// connection is gone, which is also what forecloses reconnection.
func (r *Room) HasAnyHumans() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s != nil && !s.IsBot {
			return true
		}
	}
	return false
}

// HasAnyConnectedHumans reports whether any human seat is currently
// connected.
func (r *Room) HasAnyConnectedHumans() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s != nil && !s.OriginalIsBot && s.Connected {
			return true
		}
	}
	return false
}

// SetStarted latches the room into its in-game state.
func (r *Room) SetStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
}

// Started reports whether the game has begun.
func (r *Room) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

// SeatCount returns the number of occupied seats.
func (r *Room) SeatCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.seats {
		if s != nil {
			n++
		}
	}
	return n
}

// FindSeat returns the slot index for a name, or -1.
func (r *Room) FindSeat(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, s := range r.seats {
		if s != nil && s.Name == name {
			return i
		}
	}
	return -1
}

// MarkDisconnected flips a seat to bot control and records the time.
func (r *Room) MarkDisconnected(name string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			s.Connected = false
			s.DisconnectAt = now
			s.IsBot = true
			return true
		}
	}
	return false
}

// MarkReconnected restores a seat to its original controller.
func (r *Room) MarkReconnected(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			s.Connected = true
			s.DisconnectAt = time.Time{}
			s.IsBot = s.OriginalIsBot
			return true
		}
	}
	return false
}

// SeatInfos implements game.Roster.
func (r *Room) SeatInfos() [game.NumSeats]game.SeatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var infos [game.NumSeats]game.SeatInfo
	for i, s := range r.seats {
		if s == nil {
			continue
		}
		infos[i] = game.SeatInfo{
			Name:      s.Name,
			IsBot:     s.IsBot,
			Connected: s.Connected,
			Occupied:  true,
		}
	}
	return infos
}

// Seats returns a copy of the roster for serialization.
func (r *Room) Seats() [game.NumSeats]*Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out [game.NumSeats]*Seat
	for i, s := range r.seats {
		if s != nil {
			copied := *s
			out[i] = &copied
		}
	}
	return out
}

var _ game.Roster = (*Room)(nil)
