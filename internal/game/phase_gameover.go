package game

// gameOverPhase broadcasts final standings and then idles. player_ready is
// accepted as a keep-alive so the supervisor's teardown grace timer resets;
// everything else waits for the supervisor to reap the room.
var gameOverPhase = phaseDesc{
	enter: enterGameOver,
	exit:  noExit,
	allowed: func(g *Game, player string) []ActionType {
		if g.seatOf(player) >= 0 {
			return []ActionType{ActionPlayerReady}
		}
		return nil
	},
	handle: func(g *Game, a Action) HandleResult {
		if a.Type == ActionPlayerReady && g.seatOf(a.PlayerName) >= 0 {
			return accepted()
		}
		return rejected(RejectGameOver)
	},
}

func enterGameOver(g *Game) EntryResult {
	standings := make([]map[string]any, 0, NumSeats)
	for _, p := range g.Players {
		standings = append(standings, map[string]any{
			"name":  p.Name,
			"score": p.Score,
		})
	}
	ev := NewEvent(EventGameEnded, map[string]any{
		"winners":      g.winners,
		"standings":    standings,
		"round_number": g.Round,
	})
	return EntryResult{Events: []Event{ev}}
}
