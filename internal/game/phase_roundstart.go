package game

// roundStartPhase is a fixed announcement pause so clients can render the
// starter before declaration prompts arrive. No player actions are accepted;
// the machine's timer drives the transition.
var roundStartPhase = phaseDesc{
	enter: func(g *Game) EntryResult {
		ev := g.phaseChangeEvent(map[string]any{
			"starter":           g.Players[g.starter].Name,
			"redeal_multiplier": g.RedealMultiplier,
		})
		return EntryResult{Events: []Event{ev}, Timer: TimerRoundStart}
	},
	exit:    noExit,
	allowed: noneAllowed,
	handle: func(g *Game, a Action) HandleResult {
		if a.Type != ActionTimer {
			return rejected(RejectWrongPhase)
		}
		return HandleResult{Accepted: true, Next: PhaseDeclaration}
	},
}
