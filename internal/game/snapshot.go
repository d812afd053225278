package game

// PlayerSnapshot is an immutable per-seat view.
type PlayerSnapshot struct {
	Name          string
	IsBot         bool
	Connected     bool
	Score         int
	Declared      int
	CapturedPiles int
	ZeroStreak    int
	Hand          []Piece
}

// Snapshot is an immutable view of a game, emitted to in-process observers
// after every state change. It is safe to retain across goroutines.
type Snapshot struct {
	RoomID string
	Phase  Phase

	Round            int
	Turn             int
	RedealMultiplier int

	Players []PlayerSnapshot

	// CurrentSeat is the seat the machine is waiting on, or -1. Its meaning
	// follows the phase: redeal decision in Preparation, declarer in
	// Declaration, player in Turn, animation signal in TurnResults.
	CurrentSeat int

	// DecisionSeq changes every time CurrentSeat is (re)assigned.
	DecisionSeq uint64

	Starter       int
	RequiredCount int
	CurrentPlays  []SeatPlay
	TurnWinner    int

	DeclaredCount int
	DeclTotal     int

	WeakSeats []int
	Winners   []string

	// Terminated is set when the machine shut the room down abnormally.
	Terminated       bool
	TerminatedReason string
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() *Snapshot {
	snap := &Snapshot{
		RoomID:           g.RoomID,
		Phase:            g.Phase,
		Round:            g.Round,
		Turn:             g.Turn,
		RedealMultiplier: g.RedealMultiplier,
		CurrentSeat:      g.currentDecisionSeat(),
		DecisionSeq:      g.decisionSeq,
		Starter:          g.starter,
		RequiredCount:    g.requiredCount,
		TurnWinner:       g.turnWinner,
		DeclaredCount:    g.declaredCount,
		DeclTotal:        g.declTotal,
	}

	for _, p := range g.Players {
		if p == nil {
			continue
		}
		hand := make([]Piece, len(p.Hand))
		copy(hand, p.Hand)
		snap.Players = append(snap.Players, PlayerSnapshot{
			Name:          p.Name,
			IsBot:         p.IsBot,
			Connected:     p.Connected,
			Score:         p.Score,
			Declared:      p.Declared,
			CapturedPiles: p.CapturedPiles,
			ZeroStreak:    p.ZeroStreak,
			Hand:          hand,
		})
	}

	snap.CurrentPlays = make([]SeatPlay, len(g.plays))
	copy(snap.CurrentPlays, g.plays)
	snap.WeakSeats = append([]int(nil), g.weakSeats...)
	snap.Winners = append([]string(nil), g.winners...)
	return snap
}

// currentDecisionSeat resolves which seat the machine currently waits on.
func (g *Game) currentDecisionSeat() int {
	switch g.Phase {
	case PhasePreparation:
		return g.redealOffer
	case PhaseDeclaration, PhaseTurn:
		return g.current
	case PhaseTurnResults:
		return g.turnWinner
	default:
		return -1
	}
}

// Seat returns the snapshot entry for seat index, or nil.
func (s *Snapshot) Seat(seat int) *PlayerSnapshot {
	if seat < 0 || seat >= len(s.Players) {
		return nil
	}
	return &s.Players[seat]
}
