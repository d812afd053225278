package game

// waitingPhase covers the lobby. Seat membership (join, add_bot, removal) is
// the supervisor's domain; the only queued action here is starting the game.
var waitingPhase = phaseDesc{
	enter: noEntry,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.roster != nil && g.roster.IsHost(player) {
			return []ActionType{ActionStartGame}
		}
		return nil
	},
	handle: handleWaiting,
}

func handleWaiting(g *Game, a Action) HandleResult {
	if a.Type != ActionStartGame {
		return rejected(RejectWrongPhase)
	}
	if g.roster == nil || !g.roster.IsHost(a.PlayerName) {
		return rejected(RejectNotHost)
	}

	seats := g.roster.SeatInfos()
	for _, s := range seats {
		if !s.Occupied {
			return rejected(RejectNeedFourPlayers)
		}
	}

	for i, s := range seats {
		g.Players[i] = &Player{
			Name:          s.Name,
			IsBot:         s.IsBot,
			OriginalIsBot: s.IsBot,
			Connected:     s.Connected,
		}
	}

	return HandleResult{Accepted: true, Next: PhasePreparation}
}
