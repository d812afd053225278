package game

// turnPhase runs one cycle of four plays. The first player latches the
// required piece count for the turn; the updated play list is always
// broadcast before the transition to turn results, so clients never miss the
// last player's pieces.
var turnPhase = phaseDesc{
	enter: enterTurn,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.seatOf(player) == g.current {
			return []ActionType{ActionPlay}
		}
		return nil
	},
	handle: handleTurn,
}

func enterTurn(g *Game) EntryResult {
	g.Turn++
	g.plays = nil
	g.requiredCount = 0
	g.turnWinner = -1

	if g.Turn == 1 {
		g.turnStarter = g.starter
	} else {
		g.turnStarter = g.lastTurnWinner
	}
	g.awaitDecision(g.turnStarter)

	ev := g.phaseChangeEvent(map[string]any{
		"turn_starter":   g.Players[g.turnStarter].Name,
		"current_player": g.Players[g.current].Name,
	})
	return EntryResult{Events: []Event{ev}}
}

func handleTurn(g *Game, a Action) HandleResult {
	if a.Type != ActionPlay {
		return rejected(RejectWrongPhase)
	}
	seat := g.seatOf(a.PlayerName)
	if seat != g.current {
		return rejected(RejectNotYourTurn)
	}

	p := g.Players[seat]
	if reason := validateIndices(a.Indices, len(p.Hand)); reason != "" {
		return rejected(reason)
	}
	if g.requiredCount > 0 && len(a.Indices) != g.requiredCount {
		return rejected(RejectWrongPieceCount)
	}

	pieces := p.removePieces(a.Indices)
	if g.requiredCount == 0 {
		g.requiredCount = len(pieces)
	}

	playType := g.Rules.Classify(pieces)
	g.plays = append(g.plays, SeatPlay{
		Seat:   seat,
		Player: p.Name,
		Pieces: pieces,
		Type:   playType,
		Value:  PlayValue(pieces),
	})

	data := map[string]any{
		"played_by":      p.Name,
		"required_count": g.requiredCount,
		"current_plays":  playsData(g.plays),
	}

	if len(g.plays) == NumSeats {
		g.current = -1
		// The plays broadcast must precede the turn_results transition.
		ev := g.phaseChangeEvent(data)
		return HandleResult{Accepted: true, Events: []Event{ev}, Next: PhaseTurnResults}
	}

	g.awaitDecision(nextSeat(seat))
	data["current_player"] = g.Players[g.current].Name
	return accepted(g.phaseChangeEvent(data))
}

// validateIndices checks play indices for range, duplicates and count limits.
func validateIndices(indices []int, handSize int) RejectReason {
	if len(indices) < 1 || len(indices) > HandSize {
		return RejectWrongPieceCount
	}
	if len(indices) > handSize {
		return RejectInvalidPieces
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= handSize || seen[idx] {
			return RejectInvalidPieces
		}
		seen[idx] = true
	}
	return ""
}
