package game

// turnResultsPhase resolves the winner and then waits for the winner's
// animation_complete, with a server-side fallback timer covering bots and
// disconnected winners.
var turnResultsPhase = phaseDesc{
	enter: enterTurnResults,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.seatOf(player) == g.turnWinner {
			return []ActionType{ActionAnimationComplete}
		}
		return nil
	},
	handle: handleTurnResults,
}

func enterTurnResults(g *Game) EntryResult {
	winner := resolveTurnWinner(g.Rules, g.plays)
	g.turnWinner = winner
	g.lastTurnWinner = winner
	g.decisionSeq++

	piles := g.requiredCount
	g.Players[winner].CapturedPiles += piles
	g.history = append(g.history, TurnRecord{
		Turn:   g.Turn,
		Plays:  g.plays,
		Winner: winner,
		Piles:  piles,
	})

	phaseEv := g.phaseChangeEvent(map[string]any{
		"current_plays":  playsData(g.plays),
		"winner":         g.Players[winner].Name,
		"piles_awarded":  piles,
		"required_count": g.requiredCount,
	})
	resolvedEv := NewEvent(EventTurnResolved, map[string]any{
		"turn_number":   g.Turn,
		"winner":        g.Players[winner].Name,
		"piles_awarded": piles,
		"play_type":     g.plays[0].Type.String(),
	})
	return EntryResult{Events: []Event{phaseEv, resolvedEv}, Timer: TimerAnimation}
}

func handleTurnResults(g *Game, a Action) HandleResult {
	switch a.Type {
	case ActionTimer:
		// Fallback fired; same effect as the winner's signal.
	case ActionAnimationComplete:
		if g.seatOf(a.PlayerName) != g.turnWinner {
			return rejected(RejectNotYourTurn)
		}
	default:
		return rejected(RejectWrongPhase)
	}

	if g.anyHandNonEmpty() {
		return HandleResult{Accepted: true, Next: PhaseTurn}
	}
	return HandleResult{Accepted: true, Next: PhaseScoring}
}

// resolveTurnWinner picks the winning play. Only plays matching the first
// play's type compete; ties go to the earliest play. An invalid first play
// passes the lead to the earliest valid play, and if every play is invalid
// the first seat captures by default.
func resolveTurnWinner(rules Rules, plays []SeatPlay) int {
	firstType := plays[0].Type

	if firstType == Invalid {
		for _, sp := range plays {
			if sp.Type != Invalid {
				return sp.Seat
			}
		}
		return plays[0].Seat
	}

	best := plays[0]
	for _, sp := range plays[1:] {
		if sp.Type != firstType {
			continue
		}
		if rules.Compare(sp.Pieces, best.Pieces) == AWins {
			best = sp
		}
	}
	return best.Seat
}
