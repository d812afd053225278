package game

import "time"

// Player is the in-game state of one seat. It is owned by the room's driver
// loop; nothing else mutates it.
type Player struct {
	Name          string
	IsBot         bool
	OriginalIsBot bool
	Connected     bool
	DisconnectAt  time.Time

	Hand          []Piece
	Declared      int
	CapturedPiles int
	Score         int

	// ZeroStreak counts consecutive zero declarations across rounds. Two in a
	// row forbids a third.
	ZeroStreak int
}

// HasPieces reports whether the player still holds pieces this round.
func (p *Player) HasPieces() bool { return len(p.Hand) > 0 }

// removePieces deletes the pieces at the given indices from the hand and
// returns them in selection order. Indices must be valid and unique.
func (p *Player) removePieces(indices []int) []Piece {
	taken := make([]Piece, len(indices))
	drop := make(map[int]bool, len(indices))
	for i, idx := range indices {
		taken[i] = p.Hand[idx]
		drop[idx] = true
	}
	remaining := make([]Piece, 0, len(p.Hand)-len(indices))
	for i, piece := range p.Hand {
		if !drop[i] {
			remaining = append(remaining, piece)
		}
	}
	p.Hand = remaining
	return taken
}
