// Package bot contains the decision logic for server-driven seats. The actor
// that schedules and submits bot actions lives with the server; strategies
// here are pure functions of a game snapshot.
package bot

import (
	"sort"

	"github.com/liaptui/liaptui-server/internal/game"
)

// Strategy decides what a bot seat does when the machine waits on it. Decide
// returns nil when the snapshot holds no decision for the seat.
type Strategy interface {
	Decide(snap *game.Snapshot, seat int) *game.Action
}

// Legal is the default strategy: always produces an action the machine will
// accept, with mild point-count heuristics on top.
type Legal struct {
	Rules game.Rules
}

// NewLegal returns the default strategy over the standard rules.
func NewLegal() *Legal {
	return &Legal{Rules: game.StandardRules{}}
}

// Decide maps the pending decision phase to an action.
func (s *Legal) Decide(snap *game.Snapshot, seat int) *game.Action {
	if snap.CurrentSeat != seat {
		return nil
	}
	ps := snap.Seat(seat)
	if ps == nil {
		return nil
	}

	switch snap.Phase {
	case game.PhasePreparation:
		return &game.Action{
			Type:       game.ActionRedealDecision,
			PlayerName: ps.Name,
			Accept:     s.acceptRedeal(snap, ps),
		}
	case game.PhaseDeclaration:
		return &game.Action{
			Type:       game.ActionDeclare,
			PlayerName: ps.Name,
			Value:      s.declare(snap, ps),
		}
	case game.PhaseTurn:
		return &game.Action{
			Type:       game.ActionPlay,
			PlayerName: ps.Name,
			Indices:    s.play(snap, ps),
		}
	case game.PhaseTurnResults:
		return &game.Action{
			Type:       game.ActionAnimationComplete,
			PlayerName: ps.Name,
		}
	}
	return nil
}

// acceptRedeal takes the offer while the multiplier can still rise; past the
// cap a redeal only re-rolls the hand for no upside.
func (s *Legal) acceptRedeal(snap *game.Snapshot, ps *game.PlayerSnapshot) bool {
	return s.Rules.IsWeak(ps.Hand) && snap.RedealMultiplier < game.MaxRedealMultiplier
}

// declare estimates capturable piles from high pieces and big combos, then
// nudges the value until it satisfies the declaration constraints.
func (s *Legal) declare(snap *game.Snapshot, ps *game.PlayerSnapshot) int {
	est := 0
	for _, p := range ps.Hand {
		if p.Point > game.WeakThreshold+1 {
			est++
		}
	}
	if len(s.Rules.ValidCombos(ps.Hand, 3)) > 0 {
		est++
	}
	if est > game.MaxDeclaration {
		est = game.MaxDeclaration
	}

	lastDeclarer := snap.DeclaredCount == game.NumSeats-1
	legal := func(v int) bool {
		if v < 0 || v > game.MaxDeclaration {
			return false
		}
		if v == 0 && ps.ZeroStreak >= 2 {
			return false
		}
		if lastDeclarer && snap.DeclTotal+v == game.HandSize {
			return false
		}
		return true
	}

	for delta := 0; delta <= game.MaxDeclaration; delta++ {
		if legal(est + delta) {
			return est + delta
		}
		if legal(est - delta) {
			return est - delta
		}
	}
	return 1
}

// play leads with the biggest valid combo it holds, follows with the highest
// valid combo of the required count, and surrenders its lowest pieces when
// nothing valid fits.
func (s *Legal) play(snap *game.Snapshot, ps *game.PlayerSnapshot) []int {
	if snap.RequiredCount > 0 {
		if combo := bestCombo(s.Rules, ps.Hand, snap.RequiredCount); combo != nil {
			return combo
		}
		return lowestPieces(ps.Hand, snap.RequiredCount)
	}

	for count := game.HandSize - 2; count >= 2; count-- {
		if count > len(ps.Hand) {
			continue
		}
		if combo := bestCombo(s.Rules, ps.Hand, count); combo != nil {
			return combo
		}
	}
	return highestSingle(ps.Hand)
}

// bestCombo returns the highest-value valid combo of the given size, or nil.
func bestCombo(rules game.Rules, hand []game.Piece, count int) []int {
	var best []int
	bestValue := -1
	for _, combo := range rules.ValidCombos(hand, count) {
		pieces := make([]game.Piece, len(combo))
		for i, idx := range combo {
			pieces[i] = hand[idx]
		}
		if v := game.PlayValue(pieces); v > bestValue {
			bestValue = v
			best = combo
		}
	}
	return best
}

// lowestPieces picks the count cheapest pieces as a forfeit play.
func lowestPieces(hand []game.Piece, count int) []int {
	if count > len(hand) {
		count = len(hand)
	}
	indices := make([]int, len(hand))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return hand[indices[a]].Point < hand[indices[b]].Point
	})
	picked := indices[:count]
	sort.Ints(picked)
	return picked
}

// highestSingle leads the strongest piece.
func highestSingle(hand []game.Piece) []int {
	best := 0
	for i, p := range hand {
		if p.Point > hand[best].Point {
			best = i
		}
	}
	return []int{best}
}
