package game

// scoringPhase applies round scores and either loops back to preparation or
// ends the game. It accepts no actions; entry chains straight onward.
var scoringPhase = phaseDesc{
	enter:   enterScoring,
	exit:    noExit,
	allowed: noneAllowed,
	handle: func(g *Game, a Action) HandleResult {
		return rejected(RejectWrongPhase)
	},
}

func enterScoring(g *Game) EntryResult {
	roundScores := map[string]int{}
	totals := map[string]int{}
	for _, p := range g.Players {
		rs := g.Rules.Score(p.Declared, p.CapturedPiles, g.RedealMultiplier)
		p.Score += rs
		roundScores[p.Name] = rs
		totals[p.Name] = p.Score
	}

	multiplier := g.RedealMultiplier
	g.RedealMultiplier = 1
	g.lastRoundWinner = g.lastTurnWinner

	scoreEv := NewEvent(EventScoreUpdate, map[string]any{
		"round_number":      g.Round,
		"round_scores":      roundScores,
		"scores":            totals,
		"redeal_multiplier": multiplier,
	})
	completeEv := NewEvent(EventRoundComplete, map[string]any{
		"round_number": g.Round,
		"scores":       totals,
	})

	if g.gameFinished() {
		g.winners = g.computeWinners()
		return EntryResult{Events: []Event{scoreEv, completeEv}, Next: PhaseGameOver}
	}
	return EntryResult{Events: []Event{scoreEv, completeEv}, Next: PhasePreparation}
}

// gameFinished applies the termination predicate: a seat at the score limit
// or the round limit reached.
func (g *Game) gameFinished() bool {
	if g.Round >= RoundLimit {
		return true
	}
	for _, p := range g.Players {
		if p.Score >= ScoreLimit {
			return true
		}
	}
	return false
}

// computeWinners returns every seat tied for the highest score.
func (g *Game) computeWinners() []string {
	best := g.Players[0].Score
	for _, p := range g.Players[1:] {
		if p.Score > best {
			best = p.Score
		}
	}
	var winners []string
	for _, p := range g.Players {
		if p.Score == best {
			winners = append(winners, p.Name)
		}
	}
	return winners
}
