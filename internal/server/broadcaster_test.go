package server

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liaptui/liaptui-server/internal/game"
	"github.com/liaptui/liaptui-server/internal/protocol"
	"github.com/liaptui/liaptui-server/internal/room"
)

// fakeSender records outbound messages in place of a websocket connection.
type fakeSender struct {
	mu   sync.Mutex
	msgs []protocol.ServerMessage
	fail bool
}

func (f *fakeSender) Send(msg protocol.ServerMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func (f *fakeSender) message(i int) protocol.ServerMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msgs[i]
}

type broadcastFixture struct {
	room     *room.Room
	registry *Registry
	queues   *MessageQueue
	b        *Broadcaster
	alice    *fakeSender
}

// newBroadcastFixture seats alice (connected human), bob (disconnected human)
// and a bot, with alice's transport registered.
func newBroadcastFixture(t *testing.T) *broadcastFixture {
	t.Helper()
	r := room.New("ROOM01", time.Now())
	for _, name := range []string{"alice", "bob"} {
		_, err := r.AddPlayer(name, false)
		require.NoError(t, err)
	}
	_, err := r.AddBot("Bot 1", -1)
	require.NoError(t, err)
	r.MarkDisconnected("bob", time.Now())

	registry := NewRegistry()
	alice := &fakeSender{}
	registry.Register("conn-alice", alice, "ROOM01", "alice")

	queues := NewMessageQueue(8)
	b := NewBroadcaster(zerolog.Nop(), r, registry, queues, NewEventLog())
	return &broadcastFixture{room: r, registry: registry, queues: queues, b: b, alice: alice}
}

func TestBroadcastSequencesAndDelivers(t *testing.T) {
	f := newBroadcastFixture(t)

	f.b.Broadcast(game.NewEvent(game.EventPhaseChange, map[string]any{"phase": "turn"}))
	f.b.Broadcast(game.NewEvent(game.EventTurnResolved, map[string]any{"winner": "alice"}))

	require.Equal(t, 2, f.alice.count())
	assert.Equal(t, int64(1), f.alice.message(0).Data["sequence"])
	assert.Equal(t, int64(2), f.alice.message(1).Data["sequence"])
	assert.Equal(t, game.EventPhaseChange, f.alice.message(0).Event)
	assert.Equal(t, int64(2), f.b.Seq())
}

func TestBroadcastQueuesForDisconnected(t *testing.T) {
	f := newBroadcastFixture(t)

	f.b.Broadcast(game.NewEvent(game.EventPhaseChange, map[string]any{"phase": "turn"}))
	assert.Equal(t, 1, f.queues.Len("ROOM01", "bob"))

	// Non-critical events are not worth queueing.
	f.b.Broadcast(game.NewEvent(protocol.EventRoomUpdate, nil))
	assert.Equal(t, 1, f.queues.Len("ROOM01", "bob"))

	// Bots never get wire traffic, queued or live.
	assert.Equal(t, 0, f.queues.Len("ROOM01", "Bot 1"))
}

func TestBroadcastSendFailureFallsBackToQueue(t *testing.T) {
	f := newBroadcastFixture(t)
	f.alice.fail = true

	f.b.Broadcast(game.NewEvent(game.EventPhaseChange, map[string]any{"phase": "turn"}))
	assert.Equal(t, 1, f.queues.Len("ROOM01", "alice"))
}

func TestBroadcastMergesPersonalIntoPhaseData(t *testing.T) {
	f := newBroadcastFixture(t)

	hand := []game.Piece{{Kind: game.General, Color: game.Red, Point: 14}}
	ev := game.NewEvent(game.EventPhaseChange, map[string]any{
		"phase":      "preparation",
		"phase_data": map[string]any{"players": []map[string]any{}},
	}).WithPersonal("alice", map[string]any{"my_hand": hand})

	f.b.Broadcast(ev)

	require.Equal(t, 1, f.alice.count())
	phaseData := f.alice.message(0).Data["phase_data"].(map[string]any)
	assert.Equal(t, hand, phaseData["my_hand"])
	assert.Contains(t, phaseData, "players")

	// The shared event payload must not absorb anyone's personal fragment.
	original := ev.Data["phase_data"].(map[string]any)
	assert.NotContains(t, original, "my_hand")
}

func TestUnicastCarriesNoSequence(t *testing.T) {
	f := newBroadcastFixture(t)

	f.b.Unicast("alice", game.NewEvent(game.EventError, map[string]any{"code": "not_your_turn"}))

	require.Equal(t, 1, f.alice.count())
	assert.NotContains(t, f.alice.message(0).Data, "sequence")
	assert.Equal(t, int64(0), f.b.Seq(), "unicasts consume no sequence numbers")

	// Unicast to a disconnected seat is silently dropped.
	f.b.Unicast("bob", game.NewEvent(game.EventError, nil))
}

func TestReconnectReplaysQueueAfterSnapshot(t *testing.T) {
	f := newBroadcastFixture(t)

	f.b.Broadcast(game.NewEvent(game.EventPhaseChange, map[string]any{"phase": "turn"}))
	f.b.Broadcast(game.NewEvent(game.EventScoreUpdate, map[string]any{"round_number": 1}))
	require.Equal(t, 2, f.queues.Len("ROOM01", "bob"))

	bob := &fakeSender{}
	snapshot := protocol.ServerMessage{Event: "room_state", Data: map[string]any{"phase": "turn"}}
	n := f.b.Reconnect("bob", func() {
		f.room.MarkReconnected("bob")
		f.registry.Register("conn-bob", bob, "ROOM01", "bob")
	}, snapshot)

	assert.Equal(t, 2, n)
	require.Equal(t, 2, bob.count())
	assert.Equal(t, "room_state", bob.message(0).Event, "snapshot precedes the replay")

	replay := bob.message(1)
	assert.Equal(t, protocol.EventQueuedMessages, replay.Event)
	events := replay.Data["events"].([]map[string]any)
	require.Len(t, events, 2)
	assert.Equal(t, game.EventPhaseChange, events[0]["event"])
	assert.Equal(t, int64(1), events[0]["sequence"])

	assert.Equal(t, 0, f.queues.Len("ROOM01", "bob"), "queue is cleared")

	// Subsequent broadcasts reach bob live with the next sequence number.
	f.b.Broadcast(game.NewEvent(game.EventPhaseChange, map[string]any{"phase": "turn"}))
	require.Equal(t, 3, bob.count())
	assert.Equal(t, int64(3), bob.message(2).Data["sequence"])
}
