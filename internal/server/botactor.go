package server

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/liaptui/liaptui-server/internal/bot"
	"github.com/liaptui/liaptui-server/internal/game"
)

// Think delay bounds, per decision kind.
const (
	thinkMin       = 500 * time.Millisecond
	thinkMax       = 1500 * time.Millisecond
	redealThinkMin = 300 * time.Millisecond
	redealThinkMax = 800 * time.Millisecond
)

// intentKey identifies one decision slot. The actor enqueues at most one
// action per key; DecisionSeq distinguishes repeated offers to the same seat
// within a phase (redeal walks after a re-deal).
type intentKey struct {
	phase game.Phase
	turn  int
	seat  int
	seq   uint64
}

// BotActor watches one room's snapshots and plays every bot-controlled seat.
// It subscribes in-process, never over the wire: each decision is scheduled
// after a randomized think delay and submitted through the same action queue
// as human input. A phase change during the delay discards the pending
// intent.
type BotActor struct {
	logger   zerolog.Logger
	queue    *game.ActionQueue
	strategy bot.Strategy
	clock    quartz.Clock

	mu      sync.Mutex
	rng     *rand.Rand
	latest  *game.Snapshot
	pending *quartz.Timer
	planned intentKey
	fired   intentKey
	stopped bool
}

// NewBotActor creates an actor feeding the given action queue.
func NewBotActor(logger zerolog.Logger, roomID string, queue *game.ActionQueue, strategy bot.Strategy, clock quartz.Clock, rng *rand.Rand) *BotActor {
	return &BotActor{
		logger:   logger.With().Str("component", "bot_actor").Str("room_id", roomID).Logger(),
		queue:    queue,
		strategy: strategy,
		clock:    clock,
		rng:      rng,
	}
}

// OnStateChange implements game.Observer.
func (a *BotActor) OnStateChange(snap *game.Snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}
	a.latest = snap

	seat := snap.CurrentSeat
	key := intentKey{phase: snap.Phase, turn: snap.Turn, seat: seat, seq: snap.DecisionSeq}

	if !a.wantsBotAction(snap, seat) {
		a.cancelPendingLocked()
		return
	}
	if a.pending != nil && a.planned == key {
		return // already scheduled
	}
	if a.fired == key {
		return // exactly-once per decision slot
	}

	a.cancelPendingLocked()
	a.planned = key
	delay := a.thinkDelayLocked(snap.Phase)
	a.pending = a.clock.AfterFunc(delay, func() { a.fire(key) }, "bot-think")

	a.logger.Debug().
		Str("phase", string(snap.Phase)).
		Int("seat", seat).
		Dur("delay", delay).
		Msg("Scheduled bot action")
}

// wantsBotAction reports whether the snapshot is waiting on a bot seat the
// actor should play. Turn-results animation for bot winners is covered by the
// machine's own fallback timer.
func (a *BotActor) wantsBotAction(snap *game.Snapshot, seat int) bool {
	if seat < 0 || snap.Phase == game.PhaseTurnResults {
		return false
	}
	ps := snap.Seat(seat)
	return ps != nil && ps.IsBot
}

// fire consults the strategy against the latest snapshot and enqueues the
// chosen action, unless the decision moved on during the think delay.
func (a *BotActor) fire(key intentKey) {
	a.mu.Lock()
	if a.stopped || a.planned != key || a.pending == nil {
		a.mu.Unlock()
		return
	}
	a.pending = nil

	snap := a.latest
	current := intentKey{phase: snap.Phase, turn: snap.Turn, seat: snap.CurrentSeat, seq: snap.DecisionSeq}
	if current != key {
		a.mu.Unlock()
		return
	}

	action := a.strategy.Decide(snap, key.seat)
	if action == nil {
		a.mu.Unlock()
		return
	}
	a.fired = key
	a.mu.Unlock()

	action.ReceivedAt = time.Now()
	a.queue.Enqueue(*action)

	a.logger.Debug().
		Str("action", string(action.Type)).
		Str("player", action.PlayerName).
		Str("phase", string(key.phase)).
		Msg("Bot action enqueued")
}

// Stop discards any pending intent and ignores further snapshots.
func (a *BotActor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.cancelPendingLocked()
}

func (a *BotActor) cancelPendingLocked() {
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
}

// thinkDelayLocked samples the humanlike pause before a bot acts.
func (a *BotActor) thinkDelayLocked(phase game.Phase) time.Duration {
	min, max := thinkMin, thinkMax
	if phase == game.PhasePreparation {
		min, max = redealThinkMin, redealThinkMax
	}
	return min + time.Duration(a.rng.Int64N(int64(max-min)))
}

var _ game.Observer = (*BotActor)(nil)
