package game

import (
	rand "math/rand/v2"
)

// Phase identifies one of the eight game phases.
type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhasePreparation Phase = "preparation"
	PhaseRoundStart  Phase = "round_start"
	PhaseDeclaration Phase = "declaration"
	PhaseTurn        Phase = "turn"
	PhaseTurnResults Phase = "turn_results"
	PhaseScoring     Phase = "scoring"
	PhaseGameOver    Phase = "game_over"
)

const (
	// MaxRedealMultiplier caps the redeal multiplier. Accepts past the cap
	// still redeal but no longer raise it.
	MaxRedealMultiplier = 4

	// ScoreLimit ends the game when any seat reaches it.
	ScoreLimit = 50

	// RoundLimit ends the game after this many rounds regardless of score.
	RoundLimit = 20

	// MaxDeclaration is the highest pile count a seat may declare.
	MaxDeclaration = 8
)

// SeatInfo is a read-only view of one lobby seat.
type SeatInfo struct {
	Name      string
	IsBot     bool
	Connected bool
	Occupied  bool
}

// Roster is the room's seat roster as seen by the state machine. The room
// implementation is thread-safe; the machine only reads through it.
type Roster interface {
	IsHost(name string) bool
	SeatInfos() [NumSeats]SeatInfo
}

// SeatPlay is one accepted play within a turn, in play order.
type SeatPlay struct {
	Seat   int
	Player string
	Pieces []Piece
	Type   PlayType
	Value  int
}

// TurnRecord is the resolved outcome of one completed turn.
type TurnRecord struct {
	Turn   int
	Plays  []SeatPlay
	Winner int
	Piles  int
}

// Game holds all mutable state for one room's match. It is confined to the
// machine's driver goroutine; snapshots are the only thing that leaves it.
type Game struct {
	RoomID string
	Rules  Rules

	roster Roster
	rng    *rand.Rand

	Players [NumSeats]*Player
	Phase   Phase

	Round            int
	Turn             int
	RedealMultiplier int

	starter         int // round starter seat
	lastTurnWinner  int // winner of the most recent resolved turn, -1 before any
	lastRoundWinner int // winner of the last turn of the previous round, -1 before any
	redealStarter   int // accepting redealer this round, -1 if none

	weakSeats      []int
	redealOffer    int   // seat currently offered a redeal, -1
	redealDeclined []int // seats that declined since the last deal

	current       int // seat expected to declare or play, -1
	declaredCount int
	declTotal     int

	requiredCount int // latched piece count for the turn, 0 = not latched
	plays         []SeatPlay
	turnWinner    int
	turnStarter   int

	history []TurnRecord
	winners []string

	// decisionSeq increments whenever the machine starts waiting on a new
	// decision. The bot actor keys its exactly-once guard on it.
	decisionSeq uint64
}

// NewGame builds a game in the Waiting phase bound to a room roster.
func NewGame(roomID string, rules Rules, roster Roster, rng *rand.Rand) *Game {
	return &Game{
		RoomID:           roomID,
		Rules:            rules,
		roster:           roster,
		rng:              rng,
		Phase:            PhaseWaiting,
		RedealMultiplier: 1,
		lastTurnWinner:   -1,
		lastRoundWinner:  -1,
		redealStarter:    -1,
		redealOffer:      -1,
		current:          -1,
		turnWinner:       -1,
	}
}

// seatOf returns the seat index for a player name, or -1.
func (g *Game) seatOf(name string) int {
	for i, p := range g.Players {
		if p != nil && p.Name == name {
			return i
		}
	}
	return -1
}

// player returns the seat's player, or nil for an unfilled game.
func (g *Game) player(seat int) *Player {
	if seat < 0 || seat >= NumSeats {
		return nil
	}
	return g.Players[seat]
}

// nextSeat advances one seat clockwise.
func nextSeat(seat int) int { return (seat + 1) % NumSeats }

// awaitDecision marks a seat as the one the machine is waiting on and bumps
// the decision sequence so bot intents never double-fire.
func (g *Game) awaitDecision(seat int) {
	g.current = seat
	g.decisionSeq++
}

// totalHandPieces sums the pieces still held across all seats.
func (g *Game) totalHandPieces() int {
	total := 0
	for _, p := range g.Players {
		if p != nil {
			total += len(p.Hand)
		}
	}
	return total
}

// anyHandNonEmpty reports whether any seat still holds pieces.
func (g *Game) anyHandNonEmpty() bool {
	for _, p := range g.Players {
		if p != nil && p.HasPieces() {
			return true
		}
	}
	return false
}

// playersData builds the players array included in phase_change payloads.
// The contract requires an array, never a name-keyed map.
func (g *Game) playersData() []map[string]any {
	out := make([]map[string]any, 0, NumSeats)
	for _, p := range g.Players {
		if p == nil {
			continue
		}
		out = append(out, map[string]any{
			"name":           p.Name,
			"is_bot":         p.IsBot,
			"is_connected":   p.Connected,
			"score":          p.Score,
			"hand_size":      len(p.Hand),
			"captured_piles": p.CapturedPiles,
			"declared":       p.Declared,
		})
	}
	return out
}

// playsData serialises the current turn's plays in play order.
func playsData(plays []SeatPlay) []map[string]any {
	out := make([]map[string]any, len(plays))
	for i, sp := range plays {
		out[i] = map[string]any{
			"seat":      sp.Seat,
			"player":    sp.Player,
			"pieces":    sp.Pieces,
			"play_type": sp.Type.String(),
			"value":     sp.Value,
		}
	}
	return out
}

// phaseChangeEvent builds the canonical phase_change payload and merges any
// extra phase data into it.
func (g *Game) phaseChangeEvent(extra map[string]any) Event {
	data := map[string]any{
		"phase":        string(g.Phase),
		"round_number": g.Round,
		"turn_number":  g.Turn,
		"phase_data": map[string]any{
			"players": g.playersData(),
		},
	}
	phaseData := data["phase_data"].(map[string]any)
	for k, v := range extra {
		phaseData[k] = v
	}
	return NewEvent(EventPhaseChange, data)
}

// withHands attaches each human seat's private hand view to ev. Seats that
// are bot-controlled only because of a disconnect still get theirs, so the
// queued copy is complete when the player reconnects.
func (g *Game) withHands(ev Event) Event {
	for _, p := range g.Players {
		if p == nil || p.OriginalIsBot {
			continue
		}
		hand := make([]Piece, len(p.Hand))
		copy(hand, p.Hand)
		ev = ev.WithPersonal(p.Name, map[string]any{"my_hand": hand})
	}
	return ev
}
