package game

import (
	"context"
	"sync"
)

// ActionQueue is the per-room FIFO serializer. Producers are the transport
// handlers, the bot actor and the machine's own timers; the single consumer
// is the machine driver loop. Enqueue order is the total order of the room.
type ActionQueue struct {
	mu     sync.Mutex
	items  []Action
	seq    int64
	closed bool
	notify chan struct{}
}

// NewActionQueue creates an empty unbounded queue.
func NewActionQueue() *ActionQueue {
	return &ActionQueue{notify: make(chan struct{}, 1)}
}

// Enqueue appends an action and returns its assigned sequence number.
// Enqueueing on a closed queue returns 0 and drops the action.
func (q *ActionQueue) Enqueue(a Action) int64 {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.seq++
	a.Seq = q.seq
	q.items = append(q.items, a)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return a.Seq
}

// Dequeue blocks until an action is available, the queue is closed, or ctx is
// cancelled. The second return is false when no action will ever arrive.
func (q *ActionQueue) Dequeue(ctx context.Context) (Action, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			a := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return a, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return Action{}, false
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return Action{}, false
		}
	}
}

// Close stops the queue. Pending items are discarded; blocked consumers wake.
func (q *ActionQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of queued actions.
func (q *ActionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
