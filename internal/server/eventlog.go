package server

import (
	"sync"
	"time"
)

// EventLogSize is the number of recent events retained per room for the debug
// endpoints.
const EventLogSize = 128

// LoggedEvent is one broadcast event retained for observability.
type LoggedEvent struct {
	Sequence int64     `json:"sequence"`
	Type     string    `json:"type"`
	At       time.Time `json:"at"`
}

// EventLog is a fixed-size ring of a room's recent broadcasts. Purely
// observational; nothing in the game path reads it.
type EventLog struct {
	mu     sync.Mutex
	ring   [EventLogSize]LoggedEvent
	next   int
	filled bool
}

// NewEventLog returns an empty ring.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append records one event.
func (l *EventLog) Append(seq int64, eventType string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = LoggedEvent{Sequence: seq, Type: eventType, At: at}
	l.next = (l.next + 1) % EventLogSize
	if l.next == 0 {
		l.filled = true
	}
}

// Recent returns the retained events oldest-first.
func (l *EventLog) Recent() []LoggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.filled {
		out := make([]LoggedEvent, l.next)
		copy(out, l.ring[:l.next])
		return out
	}
	out := make([]LoggedEvent, 0, EventLogSize)
	out = append(out, l.ring[l.next:]...)
	out = append(out, l.ring[:l.next]...)
	return out
}
