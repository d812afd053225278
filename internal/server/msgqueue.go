package server

import (
	"sync"
	"time"

	"github.com/liaptui/liaptui-server/internal/protocol"
)

// DefaultQueueCap is the soft cap on queued events per disconnected seat.
const DefaultQueueCap = 256

// criticalEvents is the set of event types whose loss would desynchronize a
// reconnected client. Everything else is dropped for disconnected recipients.
var criticalEvents = map[string]bool{
	protocol.EventPhaseChange:   true,
	protocol.EventTurnResolved:  true,
	protocol.EventRoundComplete: true,
	protocol.EventScoreUpdate:   true,
	protocol.EventGameEnded:     true,
	protocol.EventHostChanged:   true,
}

// QueuedMessage is one event held for a disconnected seat.
type QueuedMessage struct {
	Sequence   int64          `json:"sequence"`
	EventType  string         `json:"event"`
	Data       map[string]any `json:"data"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

type seatQueue struct {
	messages     []QueuedMessage
	resyncQueued bool
}

// MessageQueue holds ordered critical events for disconnected seats, keyed by
// (room, player). Queues overflow by dropping the oldest events and flagging a
// single resync_required marker.
type MessageQueue struct {
	mu     sync.Mutex
	queues map[string]map[string]*seatQueue // roomID -> player
	cap    int
	now    func() time.Time
}

// NewMessageQueue creates a queue store with the given per-seat cap.
func NewMessageQueue(cap int) *MessageQueue {
	if cap <= 0 {
		cap = DefaultQueueCap
	}
	return &MessageQueue{
		queues: make(map[string]map[string]*seatQueue),
		cap:    cap,
		now:    time.Now,
	}
}

// Queue stores an event for a disconnected seat. Returns false when the event
// type is not critical and was dropped.
func (q *MessageQueue) Queue(roomID, player string, seq int64, eventType string, data map[string]any) bool {
	if !criticalEvents[eventType] {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queues[roomID] == nil {
		q.queues[roomID] = make(map[string]*seatQueue)
	}
	sq := q.queues[roomID][player]
	if sq == nil {
		sq = &seatQueue{}
		q.queues[roomID][player] = sq
	}

	sq.messages = append(sq.messages, QueuedMessage{
		Sequence:   seq,
		EventType:  eventType,
		Data:       data,
		EnqueuedAt: q.now(),
	})

	if len(sq.messages) > q.cap {
		if sq.resyncQueued {
			// The marker stays pinned at the front; only real events age out.
			tail := sq.messages[1:]
			sq.messages = append(sq.messages[:1:1], tail[len(tail)-(q.cap-1):]...)
		} else {
			sq.resyncQueued = true
			keep := append([]QueuedMessage(nil), sq.messages[len(sq.messages)-(q.cap-1):]...)
			sq.messages = append([]QueuedMessage{{
				EventType:  protocol.EventResyncRequired,
				Data:       map[string]any{"reason": "queue_overflow"},
				EnqueuedAt: q.now(),
			}}, keep...)
		}
	}
	return true
}

// Drain returns and clears a seat's queue in FIFO order.
func (q *MessageQueue) Drain(roomID, player string) []QueuedMessage {
	q.mu.Lock()
	defer q.mu.Unlock()

	sq := q.queues[roomID][player]
	if sq == nil {
		return nil
	}
	delete(q.queues[roomID], player)
	return sq.messages
}

// Len reports the queue depth for one seat.
func (q *MessageQueue) Len(roomID, player string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	sq := q.queues[roomID][player]
	if sq == nil {
		return 0
	}
	return len(sq.messages)
}

// DestroyRoom discards every queue belonging to a room.
func (q *MessageQueue) DestroyRoom(roomID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.queues, roomID)
}
