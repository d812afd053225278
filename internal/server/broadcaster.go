package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/liaptui/liaptui-server/internal/game"
	"github.com/liaptui/liaptui-server/internal/protocol"
	"github.com/liaptui/liaptui-server/internal/room"
)

// Broadcaster fans one room's events out to its seats with monotonic sequence
// numbers. Bots never receive wire traffic; disconnected humans get critical
// events queued for redelivery; a send failure to a connected seat degrades to
// the same queueing path instead of failing the broadcast.
type Broadcaster struct {
	mu sync.Mutex

	roomID   string
	roster   *room.Room
	registry *Registry
	queues   *MessageQueue
	log      *EventLog
	logger   zerolog.Logger

	seq int64
}

// NewBroadcaster wires a broadcaster to one room.
func NewBroadcaster(logger zerolog.Logger, r *room.Room, registry *Registry, queues *MessageQueue, log *EventLog) *Broadcaster {
	return &Broadcaster{
		roomID:   r.ID,
		roster:   r,
		registry: registry,
		queues:   queues,
		log:      log,
		logger:   logger.With().Str("component", "broadcaster").Str("room_id", r.ID).Logger(),
	}
}

// Broadcast implements game.EventSink. The sequence number is assigned under
// the broadcaster's lock, which is also what keeps reconnect drains atomic
// with respect to new broadcasts.
func (b *Broadcaster) Broadcast(ev game.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	seq := b.seq
	b.log.Append(seq, ev.Type, time.Now())

	delivered := 0
	for _, seat := range b.roster.Seats() {
		if seat == nil || seat.OriginalIsBot {
			continue
		}
		data := b.payload(ev, seat.Name, seq)
		msg := protocol.ServerMessage{Event: ev.Type, Data: data}

		if seat.Connected {
			if sender := b.registry.Sender(b.roomID, seat.Name); sender != nil {
				if err := sender.Send(msg); err == nil {
					delivered++
					continue
				}
				b.logger.Warn().Str("player", seat.Name).Str("event", ev.Type).
					Msg("Send failed, queueing for recipient")
			}
		}
		b.queues.Queue(b.roomID, seat.Name, seq, ev.Type, data)
	}

	b.logger.Debug().Str("event", ev.Type).Int64("seq", seq).
		Int("recipients", delivered).Msg("Broadcast event")
}

// Unicast implements game.EventSink. No sequence number is consumed.
func (b *Broadcaster) Unicast(player string, ev game.Event) {
	sender := b.registry.Sender(b.roomID, player)
	if sender == nil {
		return
	}
	msg := protocol.ServerMessage{Event: ev.Type, Data: b.payload(ev, player, 0)}
	if err := sender.Send(msg); err != nil {
		b.logger.Debug().Err(err).Str("player", player).Str("event", ev.Type).
			Msg("Unicast failed")
	}
}

// Reconnect atomically rebinds a returning player and replays their queue.
// bind runs under the broadcast lock, so no new broadcast can reach the seat
// between the rebind, the snapshot and the queued redelivery.
func (b *Broadcaster) Reconnect(player string, bind func(), snapshot protocol.ServerMessage) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	bind()
	sender := b.registry.Sender(b.roomID, player)
	if sender == nil {
		return 0
	}

	if err := sender.Send(snapshot); err != nil {
		b.logger.Warn().Err(err).Str("player", player).Msg("Snapshot send failed on reconnect")
		return 0
	}

	queued := b.queues.Drain(b.roomID, player)
	events := make([]map[string]any, len(queued))
	for i, m := range queued {
		events[i] = map[string]any{
			"event":    m.EventType,
			"data":     m.Data,
			"sequence": m.Sequence,
		}
	}
	msg := protocol.ServerMessage{
		Event: protocol.EventQueuedMessages,
		Data:  map[string]any{"events": events},
	}
	if err := sender.Send(msg); err != nil {
		b.logger.Warn().Err(err).Str("player", player).Msg("Queued redelivery failed")
	}
	return len(queued)
}

// Seq returns the last assigned sequence number.
func (b *Broadcaster) Seq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// payload merges the shared event data, the recipient's personal fragment and
// the sequence number into one outbound map. Personal fields land inside
// phase_data when the event carries one, so my_hand sits next to players.
func (b *Broadcaster) payload(ev game.Event, player string, seq int64) map[string]any {
	data := make(map[string]any, len(ev.Data)+2)
	for k, v := range ev.Data {
		data[k] = v
	}
	if personal, ok := ev.Personal[player]; ok {
		if shared, isMap := data["phase_data"].(map[string]any); isMap {
			merged := make(map[string]any, len(shared)+len(personal))
			for k, v := range shared {
				merged[k] = v
			}
			for k, v := range personal {
				merged[k] = v
			}
			data["phase_data"] = merged
		} else {
			for k, v := range personal {
				data[k] = v
			}
		}
	}
	if seq > 0 {
		data["sequence"] = seq
	}
	return data
}

var _ game.EventSink = (*Broadcaster)(nil)
