package game

// preparationPhase deals hands and negotiates redeals for weak hands. The
// redeal offer travels through the weak seats in ascending slot order; an
// accept re-deals everything and restarts the offer walk.
var preparationPhase = phaseDesc{
	enter: enterPreparation,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.redealOffer >= 0 && g.seatOf(player) == g.redealOffer {
			return []ActionType{ActionRedealDecision}
		}
		return nil
	},
	handle: handlePreparation,
}

func enterPreparation(g *Game) EntryResult {
	g.Round++
	g.Turn = 0
	g.redealStarter = -1
	g.redealDeclined = nil
	g.requiredCount = 0
	g.plays = nil
	g.turnWinner = -1
	g.history = nil

	for _, p := range g.Players {
		p.Declared = 0
		p.CapturedPiles = 0
	}

	g.dealHands()
	g.starter = g.computeRoundStarter()

	if len(g.weakSeats) == 0 {
		ev := g.withHands(g.phaseChangeEvent(map[string]any{
			"redeal_multiplier": g.RedealMultiplier,
		}))
		return EntryResult{Events: []Event{ev}, Next: PhaseRoundStart}
	}

	g.offerRedeal(g.weakSeats[0])
	ev := g.withHands(g.phaseChangeEvent(g.redealOfferData()))
	return EntryResult{Events: []Event{ev}}
}

func handlePreparation(g *Game, a Action) HandleResult {
	if a.Type != ActionRedealDecision {
		return rejected(RejectWrongPhase)
	}
	if g.redealOffer < 0 {
		return rejected(RejectWrongPhase)
	}
	if g.seatOf(a.PlayerName) != g.redealOffer {
		return rejected(RejectNotYourDecision)
	}

	if a.Accept {
		return g.acceptRedeal()
	}
	return g.declineRedeal()
}

// acceptRedeal raises the multiplier (capped), re-deals every hand and
// restarts the weak-seat offer walk. The accepter tentatively starts the
// round.
func (g *Game) acceptRedeal() HandleResult {
	if g.RedealMultiplier < MaxRedealMultiplier {
		g.RedealMultiplier++
	}
	g.redealStarter = g.redealOffer
	g.redealDeclined = nil

	g.dealHands()
	g.starter = g.computeRoundStarter()

	if len(g.weakSeats) == 0 {
		ev := g.withHands(g.phaseChangeEvent(map[string]any{
			"redeal_accepted_by": g.Players[g.redealStarter].Name,
			"redeal_multiplier":  g.RedealMultiplier,
		}))
		g.redealOffer = -1
		return HandleResult{Accepted: true, Events: []Event{ev}, Next: PhaseRoundStart}
	}

	accepter := g.redealOffer
	g.offerRedeal(g.weakSeats[0])
	data := g.redealOfferData()
	data["redeal_accepted_by"] = g.Players[accepter].Name
	ev := g.withHands(g.phaseChangeEvent(data))
	return accepted(ev)
}

// declineRedeal moves the offer to the next undeclined weak seat, or ends the
// negotiation when every weak seat has declined.
func (g *Game) declineRedeal() HandleResult {
	g.redealDeclined = append(g.redealDeclined, g.redealOffer)

	for _, seat := range g.weakSeats {
		if !containsInt(g.redealDeclined, seat) {
			g.offerRedeal(seat)
			ev := g.phaseChangeEvent(g.redealOfferData())
			return accepted(ev)
		}
	}

	g.redealOffer = -1
	ev := g.phaseChangeEvent(map[string]any{
		"redeal_declined_by_all": true,
		"redeal_multiplier":      g.RedealMultiplier,
	})
	return HandleResult{Accepted: true, Events: []Event{ev}, Next: PhaseRoundStart}
}

// dealHands deals fresh hands and recomputes the weak seats.
func (g *Game) dealHands() {
	hands := g.Rules.Deal(g.rng)
	g.weakSeats = g.weakSeats[:0]
	for seat, p := range g.Players {
		p.Hand = hands[seat]
		if g.Rules.IsWeak(p.Hand) {
			g.weakSeats = append(g.weakSeats, seat)
		}
	}
}

// offerRedeal points the pending decision at a weak seat.
func (g *Game) offerRedeal(seat int) {
	g.redealOffer = seat
	g.decisionSeq++
}

func (g *Game) redealOfferData() map[string]any {
	weakNames := make([]string, 0, len(g.weakSeats))
	for _, seat := range g.weakSeats {
		weakNames = append(weakNames, g.Players[seat].Name)
	}
	return map[string]any{
		"weak_players":      weakNames,
		"redeal_offer_to":   g.Players[g.redealOffer].Name,
		"redeal_multiplier": g.RedealMultiplier,
	}
}

// computeRoundStarter applies the starter policy: an accepting redealer
// starts; otherwise the previous round's last-turn winner; otherwise the
// unique red-general holder; otherwise the lowest slot.
func (g *Game) computeRoundStarter() int {
	if g.redealStarter >= 0 {
		return g.redealStarter
	}
	if g.lastRoundWinner >= 0 {
		return g.lastRoundWinner
	}
	holder := -1
	for seat, p := range g.Players {
		if ContainsRedGeneral(p.Hand) {
			if holder >= 0 {
				return 0 // ambiguous holder, fall back to lowest slot
			}
			holder = seat
		}
	}
	if holder >= 0 {
		return holder
	}
	return 0
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
