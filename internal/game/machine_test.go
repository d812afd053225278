package game

import (
	rand "math/rand/v2"
	"testing"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liaptui/liaptui-server/internal/randutil"
)

// stubRoster is a fixed four-human roster.
type stubRoster struct {
	host  string
	names [NumSeats]string
}

func (r stubRoster) IsHost(name string) bool { return name == r.host }

func (r stubRoster) SeatInfos() [NumSeats]SeatInfo {
	var infos [NumSeats]SeatInfo
	for i, name := range r.names {
		infos[i] = SeatInfo{Name: name, Connected: true, Occupied: true}
	}
	return infos
}

// stubRules deals scripted hands, one deal per call, repeating the last.
type stubRules struct {
	StandardRules
	deals []([NumSeats][]Piece)
	calls int
}

func (r *stubRules) Deal(rng *rand.Rand) [NumSeats][]Piece {
	i := r.calls
	if i >= len(r.deals) {
		i = len(r.deals) - 1
	}
	r.calls++

	var hands [NumSeats][]Piece
	for seat := range r.deals[i] {
		hands[seat] = append([]Piece(nil), r.deals[i][seat]...)
	}
	return hands
}

type sunkUnicast struct {
	player string
	ev     Event
}

type recordingSink struct {
	events   []Event
	unicasts []sunkUnicast
}

func (s *recordingSink) Broadcast(ev Event)              { s.events = append(s.events, ev) }
func (s *recordingSink) Unicast(player string, ev Event) {
	s.unicasts = append(s.unicasts, sunkUnicast{player: player, ev: ev})
}

func (s *recordingSink) lastUnicast(t *testing.T) sunkUnicast {
	t.Helper()
	require.NotEmpty(t, s.unicasts)
	return s.unicasts[len(s.unicasts)-1]
}

// strongHands partitions the deck so every seat holds a piece above the weak
// threshold. The red general sits at seat 0.
func strongHands() [NumSeats][]Piece {
	return [NumSeats][]Piece{
		{gr, ab, eb, cb, hb, nb, sb, sb},
		{gb, ar, er, cr, hr, nr, sr, sr},
		{ab, eb, cb, hb, nb, sb, sb, sb},
		{ar, er, cr, hr, nr, sr, sr, sr},
	}
}

// weakHands partitions the deck so seats 2 and 3 hold nothing above the weak
// threshold.
func weakHands() [NumSeats][]Piece {
	return [NumSeats][]Piece{
		{gb, gr, ab, ar, ab, ar, eb, er},
		{eb, er, cb, cr, cb, cr, hb, hr},
		{hb, hr, nb, nr, nb, nr, sb, sr},
		{sb, sr, sb, sr, sb, sr, sb, sr},
	}
}

func newTestMachine(t *testing.T, rules Rules) (*Machine, *Game, *recordingSink) {
	t.Helper()
	roster := stubRoster{
		host:  "Alice",
		names: [NumSeats]string{"Alice", "Bob", "Cara", "Dan"},
	}
	g := NewGame("ROOM01", rules, roster, randutil.New(1))
	sink := &recordingSink{}
	m := NewMachine(zerolog.Nop(), g, NewActionQueue(), sink, quartz.NewMock(t), DefaultTiming())
	return m, g, sink
}

func eventsOfType(events []Event, eventType string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func phaseOf(ev Event) string {
	phase, _ := ev.Data["phase"].(string)
	return phase
}

func TestStartGameRequiresHost(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})

	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Bob"}))
	assert.Equal(t, PhaseWaiting, g.Phase)
	assert.Equal(t, RejectNotHost, RejectReason(sink.lastUnicast(t).ev.Data["code"].(string)))
}

func TestStartGameChainsToRoundStart(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})

	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))
	assert.Equal(t, PhaseRoundStart, g.Phase)
	assert.Equal(t, 1, g.Round)

	changes := eventsOfType(sink.events, EventPhaseChange)
	require.Len(t, changes, 2)
	assert.Equal(t, "preparation", phaseOf(changes[0]))
	assert.Equal(t, "round_start", phaseOf(changes[1]))

	// Dealt hands ride along as personal payloads for every human seat.
	hand, ok := changes[0].Personal["Alice"]["my_hand"].([]Piece)
	require.True(t, ok)
	assert.Len(t, hand, HandSize)

	// The unique red-general holder starts round one.
	assert.Equal(t, 0, g.starter)

	data, _ := changes[1].Data["phase_data"].(map[string]any)
	assert.Equal(t, "Alice", data["starter"])
}

func TestRoundStartTimerAdvancesToDeclaration(t *testing.T) {
	m, g, _ := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	// A stale timer from an earlier phase generation is ignored.
	require.True(t, m.step(Action{Type: ActionTimer, TimerGen: m.timerGen - 1}))
	assert.Equal(t, PhaseRoundStart, g.Phase)

	require.True(t, m.step(Action{Type: ActionTimer, TimerGen: m.timerGen}))
	assert.Equal(t, PhaseDeclaration, g.Phase)
}

// advanceToDeclaration drives a freshly built machine to the declaration
// phase.
func advanceToDeclaration(t *testing.T, m *Machine, g *Game) {
	t.Helper()
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))
	require.True(t, m.step(Action{Type: ActionTimer, TimerGen: m.timerGen}))
	require.Equal(t, PhaseDeclaration, g.Phase)
}

func TestDeclarationConstraints(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	advanceToDeclaration(t, m, g)

	// Out of turn.
	m.step(Action{Type: ActionDeclare, PlayerName: "Bob", Value: 1})
	assert.Equal(t, "not_your_turn", sink.lastUnicast(t).ev.Data["code"])

	// Out of range.
	m.step(Action{Type: ActionDeclare, PlayerName: "Alice", Value: 9})
	assert.Equal(t, "invalid_value", sink.lastUnicast(t).ev.Data["code"])

	m.step(Action{Type: ActionDeclare, PlayerName: "Alice", Value: 2})
	m.step(Action{Type: ActionDeclare, PlayerName: "Bob", Value: 2})
	m.step(Action{Type: ActionDeclare, PlayerName: "Cara", Value: 2})
	assert.Equal(t, PhaseDeclaration, g.Phase)

	// The last declarer may not complete a total of eight.
	m.step(Action{Type: ActionDeclare, PlayerName: "Dan", Value: 2})
	assert.Equal(t, "total_cannot_equal_8", sink.lastUnicast(t).ev.Data["code"])
	assert.Equal(t, PhaseDeclaration, g.Phase)

	m.step(Action{Type: ActionDeclare, PlayerName: "Dan", Value: 3})
	assert.Equal(t, PhaseTurn, g.Phase)
	assert.Equal(t, 1, g.Turn)
}

func TestDeclarationZeroStreak(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	advanceToDeclaration(t, m, g)

	g.Players[0].ZeroStreak = 2
	m.step(Action{Type: ActionDeclare, PlayerName: "Alice", Value: 0})
	assert.Equal(t, "no_third_consecutive_zero", sink.lastUnicast(t).ev.Data["code"])

	m.step(Action{Type: ActionDeclare, PlayerName: "Alice", Value: 1})
	assert.Equal(t, 0, g.Players[0].ZeroStreak, "non-zero declaration resets the streak")

	g.Players[1].ZeroStreak = 1
	m.step(Action{Type: ActionDeclare, PlayerName: "Bob", Value: 0})
	assert.Equal(t, 2, g.Players[1].ZeroStreak)
}

// advanceToTurn runs declarations 2/2/2/3 and lands in the first turn.
func advanceToTurn(t *testing.T, m *Machine, g *Game) {
	t.Helper()
	advanceToDeclaration(t, m, g)
	m.step(Action{Type: ActionDeclare, PlayerName: "Alice", Value: 2})
	m.step(Action{Type: ActionDeclare, PlayerName: "Bob", Value: 2})
	m.step(Action{Type: ActionDeclare, PlayerName: "Cara", Value: 2})
	m.step(Action{Type: ActionDeclare, PlayerName: "Dan", Value: 3})
	require.Equal(t, PhaseTurn, g.Phase)
}

func TestTurnPlayValidationAndResolution(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	advanceToTurn(t, m, g)

	// Duplicate indices.
	m.step(Action{Type: ActionPlay, PlayerName: "Alice", Indices: []int{0, 0}})
	assert.Equal(t, "invalid_pieces", sink.lastUnicast(t).ev.Data["code"])

	// Out of turn.
	m.step(Action{Type: ActionPlay, PlayerName: "Bob", Indices: []int{0}})
	assert.Equal(t, "not_your_turn", sink.lastUnicast(t).ev.Data["code"])

	// First play latches the required count.
	m.step(Action{Type: ActionPlay, PlayerName: "Alice", Indices: []int{0}})
	assert.Equal(t, 1, g.requiredCount)
	assert.Len(t, g.Players[0].Hand, HandSize-1)

	m.step(Action{Type: ActionPlay, PlayerName: "Bob", Indices: []int{0, 1}})
	assert.Equal(t, "wrong_piece_count", sink.lastUnicast(t).ev.Data["code"])

	m.step(Action{Type: ActionPlay, PlayerName: "Bob", Indices: []int{0}})
	m.step(Action{Type: ActionPlay, PlayerName: "Cara", Indices: []int{0}})

	before := len(sink.events)
	m.step(Action{Type: ActionPlay, PlayerName: "Dan", Indices: []int{0}})
	require.Equal(t, PhaseTurnResults, g.Phase)

	// The final play broadcast precedes the turn_results transition.
	newEvents := sink.events[before:]
	require.NotEmpty(t, newEvents)
	assert.Equal(t, "turn", phaseOf(newEvents[0]))
	lastPlays := newEvents[0].Data["phase_data"].(map[string]any)["current_plays"].([]map[string]any)
	assert.Len(t, lastPlays, NumSeats)

	// Red general wins the single-piece trick.
	assert.Equal(t, 0, g.turnWinner)
	assert.Equal(t, 1, g.Players[0].CapturedPiles)
	assert.Equal(t, (NumSeats*HandSize)-NumSeats*1, g.totalHandPieces())
}

func TestTurnResultsAnimationGate(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	advanceToTurn(t, m, g)
	for _, name := range []string{"Alice", "Bob", "Cara", "Dan"} {
		m.step(Action{Type: ActionPlay, PlayerName: name, Indices: []int{0}})
	}
	require.Equal(t, PhaseTurnResults, g.Phase)

	// Only the winner's signal is accepted.
	m.step(Action{Type: ActionAnimationComplete, PlayerName: "Bob"})
	assert.Equal(t, "not_your_turn", sink.lastUnicast(t).ev.Data["code"])
	assert.Equal(t, PhaseTurnResults, g.Phase)

	m.step(Action{Type: ActionAnimationComplete, PlayerName: "Alice"})
	assert.Equal(t, PhaseTurn, g.Phase)
	assert.Equal(t, 2, g.Turn)
	assert.Equal(t, 0, g.turnStarter, "previous winner leads the next turn")
}

func TestTurnResultsTimerFallback(t *testing.T) {
	m, g, _ := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	advanceToTurn(t, m, g)
	for _, name := range []string{"Alice", "Bob", "Cara", "Dan"} {
		m.step(Action{Type: ActionPlay, PlayerName: name, Indices: []int{0}})
	}
	require.Equal(t, PhaseTurnResults, g.Phase)

	// The 3 s fallback behaves exactly like the winner's signal.
	m.step(Action{Type: ActionTimer, TimerGen: m.timerGen})
	assert.Equal(t, PhaseTurn, g.Phase)
}

func TestRedealDeclineWalk(t *testing.T) {
	rules := &stubRules{deals: []([NumSeats][]Piece){weakHands()}}
	m, g, sink := newTestMachine(t, rules)

	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))
	assert.Equal(t, PhasePreparation, g.Phase)
	assert.Equal(t, []int{2, 3}, g.weakSeats)
	assert.Equal(t, 2, g.redealOffer, "lowest-slot weak seat is offered first")

	// Only the offered seat may answer.
	m.step(Action{Type: ActionRedealDecision, PlayerName: "Alice", Accept: true})
	assert.Equal(t, "not_your_decision", sink.lastUnicast(t).ev.Data["code"])

	m.step(Action{Type: ActionRedealDecision, PlayerName: "Cara", Accept: false})
	assert.Equal(t, 3, g.redealOffer)

	m.step(Action{Type: ActionRedealDecision, PlayerName: "Dan", Accept: false})
	assert.Equal(t, PhaseRoundStart, g.Phase)
	assert.Equal(t, 1, g.RedealMultiplier)
}

func TestRedealAcceptRedealsAndStarts(t *testing.T) {
	rules := &stubRules{deals: []([NumSeats][]Piece){weakHands(), strongHands()}}
	m, g, _ := newTestMachine(t, rules)

	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))
	require.Equal(t, 2, g.redealOffer)

	m.step(Action{Type: ActionRedealDecision, PlayerName: "Cara", Accept: true})
	assert.Equal(t, PhaseRoundStart, g.Phase)
	assert.Equal(t, 2, g.RedealMultiplier)
	assert.Equal(t, 2, g.starter, "the accepting redealer starts the round")
	assert.Equal(t, 2, rules.calls)
}

func TestRedealMultiplierCap(t *testing.T) {
	// Every deal is weak; Cara keeps accepting.
	rules := &stubRules{deals: []([NumSeats][]Piece){weakHands()}}
	m, g, _ := newTestMachine(t, rules)
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	for i := 0; i < 6; i++ {
		m.step(Action{Type: ActionRedealDecision, PlayerName: "Cara", Accept: true})
	}
	assert.Equal(t, MaxRedealMultiplier, g.RedealMultiplier)
}

func TestScoringAppliesAndLoops(t *testing.T) {
	m, g, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	g.Players[0].Declared, g.Players[0].CapturedPiles = 3, 3
	g.Players[1].Declared, g.Players[1].CapturedPiles = 0, 0
	g.Players[2].Declared, g.Players[2].CapturedPiles = 2, 5
	g.Players[3].Declared, g.Players[3].CapturedPiles = 0, 1
	for _, p := range g.Players {
		p.Hand = nil
	}
	g.Phase = PhaseScoring
	sink.events = nil

	result := enterScoring(g)
	assert.Equal(t, PhasePreparation, result.Next, "round two follows")
	assert.Equal(t, 8, g.Players[0].Score)
	assert.Equal(t, 3, g.Players[1].Score)
	assert.Equal(t, -3, g.Players[2].Score)
	assert.Equal(t, -1, g.Players[3].Score)
	assert.Equal(t, 1, g.RedealMultiplier, "multiplier resets after scoring")

	require.Len(t, result.Events, 2)
	assert.Equal(t, EventScoreUpdate, result.Events[0].Type)
	assert.Equal(t, EventRoundComplete, result.Events[1].Type)
}

func TestScoringEndsGameAtScoreLimit(t *testing.T) {
	m, g, _ := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	g.Players[1].Score = ScoreLimit - 3
	g.Players[1].Declared, g.Players[1].CapturedPiles = 3, 3
	g.Phase = PhaseScoring

	result := enterScoring(g)
	assert.Equal(t, PhaseGameOver, result.Next)
	assert.Equal(t, []string{"Bob"}, g.winners)

	entry := enterGameOver(g)
	require.Len(t, entry.Events, 1)
	assert.Equal(t, EventGameEnded, entry.Events[0].Type)
	assert.Equal(t, []string{"Bob"}, entry.Events[0].Data["winners"])
}

func TestConnectivityActionsToggleBotControl(t *testing.T) {
	m, g, _ := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	require.True(t, m.step(Action{Type: ActionSeatDisconnected, PlayerName: "Bob"}))
	assert.True(t, g.Players[1].IsBot)
	assert.False(t, g.Players[1].Connected)

	require.True(t, m.step(Action{Type: ActionSeatReconnected, PlayerName: "Bob"}))
	assert.False(t, g.Players[1].IsBot, "original human control restored")
	assert.True(t, g.Players[1].Connected)
}

func TestSnapshotIsDetached(t *testing.T) {
	m, g, _ := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	snap := g.Snapshot()
	require.Len(t, snap.Players, NumSeats)
	snap.Players[0].Hand[0] = Piece{}
	assert.NotEqual(t, Piece{}, g.Players[0].Hand[0], "snapshot hands are copies")

	assert.Equal(t, -1, snap.CurrentSeat, "round_start waits on nobody")
}

func TestPlayersDataIsArray(t *testing.T) {
	m, _, sink := newTestMachine(t, &stubRules{deals: []([NumSeats][]Piece){strongHands()}})
	require.True(t, m.step(Action{Type: ActionStartGame, PlayerName: "Alice"}))

	changes := eventsOfType(sink.events, EventPhaseChange)
	require.NotEmpty(t, changes)
	phaseData := changes[0].Data["phase_data"].(map[string]any)
	players, ok := phaseData["players"].([]map[string]any)
	require.True(t, ok, "players must be an array, never a name-keyed map")
	assert.Len(t, players, NumSeats)
	for _, p := range players {
		assert.Contains(t, p, "name")
		assert.Contains(t, p, "hand_size")
	}
}
