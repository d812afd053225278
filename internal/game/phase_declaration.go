package game

// declarationPhase collects pile-count bids from the starter clockwise. The
// fourth declarer may not bring the running total to exactly eight, and no
// seat may declare zero three rounds running.
var declarationPhase = phaseDesc{
	enter: enterDeclaration,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.seatOf(player) == g.current {
			return []ActionType{ActionDeclare}
		}
		return nil
	},
	handle: handleDeclaration,
}

func enterDeclaration(g *Game) EntryResult {
	g.declaredCount = 0
	g.declTotal = 0
	for _, p := range g.Players {
		p.Declared = 0
	}
	g.awaitDecision(g.starter)

	order := make([]string, NumSeats)
	for i := 0; i < NumSeats; i++ {
		order[i] = g.Players[(g.starter+i)%NumSeats].Name
	}
	ev := g.phaseChangeEvent(map[string]any{
		"declaration_order": order,
		"current_declarer":  g.Players[g.current].Name,
	})
	return EntryResult{Events: []Event{ev}}
}

func handleDeclaration(g *Game, a Action) HandleResult {
	if a.Type != ActionDeclare {
		return rejected(RejectWrongPhase)
	}
	seat := g.seatOf(a.PlayerName)
	if seat != g.current {
		return rejected(RejectNotYourTurn)
	}
	if a.Value < 0 || a.Value > MaxDeclaration {
		return rejected(RejectInvalidValue)
	}

	p := g.Players[seat]
	lastDeclarer := g.declaredCount == NumSeats-1
	if lastDeclarer && g.declTotal+a.Value == MaxDeclaration {
		return rejected(RejectTotalEight)
	}
	if a.Value == 0 && p.ZeroStreak >= 2 {
		return rejected(RejectThirdZero)
	}

	p.Declared = a.Value
	if a.Value == 0 {
		p.ZeroStreak++
	} else {
		p.ZeroStreak = 0
	}
	g.declTotal += a.Value
	g.declaredCount++

	data := map[string]any{
		"declared_by":       p.Name,
		"declared_value":    a.Value,
		"declaration_total": g.declTotal,
	}

	if g.declaredCount == NumSeats {
		g.current = -1
		ev := g.phaseChangeEvent(data)
		return HandleResult{Accepted: true, Events: []Event{ev}, Next: PhaseTurn}
	}

	g.awaitDecision(nextSeat(seat))
	data["current_declarer"] = g.Players[g.current].Name
	return accepted(g.phaseChangeEvent(data))
}
