package game

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Timing holds the machine's timer durations. Tests shrink these or drive
// them through a mock clock.
type Timing struct {
	RoundStartDelay  time.Duration
	AnimationTimeout time.Duration
}

// DefaultTiming returns the production timer durations.
func DefaultTiming() Timing {
	return Timing{
		RoundStartDelay:  5 * time.Second,
		AnimationTimeout: 3 * time.Second,
	}
}

// Machine drives one room's game. A single goroutine drains the action
// queue, applies the current phase's handler, broadcasts resulting events and
// walks synchronous phase chains. No action is processed mid-transition.
type Machine struct {
	game      *Game
	queue     *ActionQueue
	sink      EventSink
	observers []Observer
	clock     quartz.Clock
	timing    Timing
	logger    zerolog.Logger

	// timerGen invalidates timers scheduled for phases already exited. Only
	// the driver goroutine touches it.
	timerGen uint64

	done chan struct{}
}

// NewMachine wires a machine around a game. Observers must be added before
// Run is called.
func NewMachine(logger zerolog.Logger, g *Game, queue *ActionQueue, sink EventSink, clock quartz.Clock, timing Timing) *Machine {
	return &Machine{
		game:   g,
		queue:  queue,
		sink:   sink,
		clock:  clock,
		timing: timing,
		logger: logger.With().Str("component", "machine").Str("room_id", g.RoomID).Logger(),
		done:   make(chan struct{}),
	}
}

// AddObserver subscribes an in-process observer to state changes.
func (m *Machine) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// Done is closed when the driver loop has exited.
func (m *Machine) Done() <-chan struct{} { return m.done }

// Snapshot returns the current game state. Safe to call from any goroutine
// only before Run starts or after Done closes; concurrent readers go through
// observer snapshots instead.
func (m *Machine) Snapshot() *Snapshot { return m.game.Snapshot() }

// Run drains the action queue until the context is cancelled, the queue is
// closed, or a fatal invariant violation terminates the room.
func (m *Machine) Run(ctx context.Context) {
	defer close(m.done)
	for {
		action, ok := m.queue.Dequeue(ctx)
		if !ok {
			return
		}
		if !m.step(action) {
			return
		}
	}
}

// step processes one action. Returns false on fatal termination.
func (m *Machine) step(a Action) bool {
	g := m.game

	switch a.Type {
	case ActionTimer:
		if a.TimerGen != m.timerGen {
			m.logger.Debug().Uint64("timer_gen", a.TimerGen).Msg("Dropping stale timer")
			return true
		}
	case ActionSeatDisconnected, ActionSeatReconnected:
		m.applyConnectivity(a)
		m.notifyObservers()
		return true
	}

	desc, ok := phaseTable[g.Phase]
	if !ok {
		return m.fatal("unknown phase")
	}

	result := desc.handle(g, a)
	if !result.Accepted {
		m.logger.Debug().
			Str("action", string(a.Type)).
			Str("player", a.PlayerName).
			Str("reason", string(result.Reason)).
			Msg("Action rejected")
		if a.PlayerName != "" {
			m.sink.Unicast(a.PlayerName, errorEvent(result.Reason))
		}
		return true
	}

	m.logger.Debug().
		Str("action", string(a.Type)).
		Str("player", a.PlayerName).
		Int64("seq", a.Seq).
		Msg("Action accepted")

	for _, ev := range result.Events {
		m.sink.Broadcast(ev)
	}

	if !m.transition(result.Next) {
		return false
	}
	if !m.checkInvariants() {
		return false
	}

	m.notifyObservers()
	return true
}

// transition walks a synchronous phase chain, broadcasting each phase's entry
// events and scheduling any requested timer.
func (m *Machine) transition(next Phase) bool {
	g := m.game
	for next != "" {
		desc := phaseTable[g.Phase]
		desc.exit(g)

		m.logger.Info().
			Str("from", string(g.Phase)).
			Str("to", string(next)).
			Int("round", g.Round).
			Int("turn", g.Turn).
			Msg("Phase transition")

		g.Phase = next
		m.timerGen++

		entryDesc, ok := phaseTable[next]
		if !ok {
			return m.fatal("unknown phase " + string(next))
		}
		entry := entryDesc.enter(g)
		for _, ev := range entry.Events {
			m.sink.Broadcast(ev)
		}
		if entry.Timer != TimerNone {
			m.scheduleTimer(entry.Timer)
		}
		next = entry.Next
	}
	return true
}

// scheduleTimer arms a phase timer that re-enters the queue as an internal
// action tagged with the current generation.
func (m *Machine) scheduleTimer(kind TimerKind) {
	var d time.Duration
	switch kind {
	case TimerRoundStart:
		d = m.timing.RoundStartDelay
	case TimerAnimation:
		d = m.timing.AnimationTimeout
	default:
		return
	}

	gen := m.timerGen
	queue := m.queue
	m.clock.AfterFunc(d, func() {
		queue.Enqueue(Action{Type: ActionTimer, TimerGen: gen, ReceivedAt: time.Now()})
	}, "phase-timer")
}

// applyConnectivity mirrors a seat's connection change into the game state.
// The supervisor owns the roster truth; this keeps snapshots and bot control
// in sync, and wakes the bot actor when the disconnected seat is on the move.
func (m *Machine) applyConnectivity(a Action) {
	g := m.game
	seat := g.seatOf(a.PlayerName)
	if seat < 0 {
		return
	}
	p := g.Players[seat]

	switch a.Type {
	case ActionSeatDisconnected:
		p.Connected = false
		p.DisconnectAt = a.ReceivedAt
		p.IsBot = true
	case ActionSeatReconnected:
		p.Connected = true
		p.DisconnectAt = time.Time{}
		p.IsBot = p.OriginalIsBot
	}

	if seat == g.currentDecisionSeat() {
		g.decisionSeq++
	}
}

// checkInvariants verifies structural invariants after every accepted action.
// A violation is unrecoverable; the room terminates rather than limp on.
func (m *Machine) checkInvariants() bool {
	g := m.game
	if g.Players[0] == nil {
		return true // lobby, nothing dealt yet
	}
	for seat, p := range g.Players {
		if p == nil {
			return m.fatal("seat lost its player")
		}
		if len(p.Hand) > HandSize {
			m.logger.Error().Int("seat", seat).Int("hand", len(p.Hand)).Msg("Hand over size")
			return m.fatal("hand exceeds maximum size")
		}
	}
	if g.Phase == PhaseTurn && g.requiredCount > 0 {
		for _, sp := range g.plays {
			if len(sp.Pieces) != g.requiredCount {
				return m.fatal("play size diverged from required count")
			}
		}
	}
	return true
}

// fatal broadcasts a critical error and stops the machine. The supervisor
// observes the terminated snapshot and destroys the room.
func (m *Machine) fatal(reason string) bool {
	m.logger.Error().Str("reason", reason).Msg("Fatal invariant violation, terminating room")
	m.sink.Broadcast(NewEvent(EventCriticalError, map[string]any{
		"reason": reason,
	}))

	snap := m.game.Snapshot()
	snap.Terminated = true
	snap.TerminatedReason = reason
	for _, o := range m.observers {
		o.OnStateChange(snap)
	}
	return false
}

func (m *Machine) notifyObservers() {
	snap := m.game.Snapshot()
	for _, o := range m.observers {
		o.OnStateChange(snap)
	}
}
