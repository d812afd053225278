package game

// Game event types broadcast to clients. Room-lifecycle event types live in
// the protocol package; these are the ones the state machine itself emits.
const (
	EventPhaseChange    = "phase_change"
	EventTurnResolved   = "turn_resolved"
	EventRoundComplete  = "round_complete"
	EventScoreUpdate    = "score_update"
	EventGameEnded      = "game_ended"
	EventGameTerminated = "game_terminated"
	EventCriticalError  = "critical_error"
	EventError          = "error"
)

// Event is a broadcastable room event. The sequence number is assigned by the
// broadcaster at send time, never here.
type Event struct {
	Type string
	Data map[string]any

	// Personal carries per-recipient additions (for example my_hand) merged
	// into Data for that recipient only.
	Personal map[string]map[string]any
}

// NewEvent builds an event with the given type and payload.
func NewEvent(eventType string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{Type: eventType, Data: data}
}

// WithPersonal attaches a per-recipient payload fragment.
func (e Event) WithPersonal(player string, data map[string]any) Event {
	if e.Personal == nil {
		e.Personal = map[string]map[string]any{}
	}
	e.Personal[player] = data
	return e
}

// EventSink receives events from the state machine. The broadcaster
// implements it; tests substitute a recording fake.
type EventSink interface {
	// Broadcast fans an event out to every seat in the room.
	Broadcast(ev Event)

	// Unicast sends an event to a single named player without consuming a
	// sequence number. Used for error responses.
	Unicast(playerName string, ev Event)
}

// Observer is notified in-process after every state change, with an immutable
// snapshot. The bot actor and the room supervisor subscribe this way instead
// of over the wire.
type Observer interface {
	OnStateChange(snap *Snapshot)
}

// errorEvent builds the unicast error payload for a rejected action.
func errorEvent(reason RejectReason) Event {
	return NewEvent(EventError, map[string]any{
		"code":    string(reason),
		"message": reason.Message(),
	})
}
