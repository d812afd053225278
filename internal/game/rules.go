package game

import rand "math/rand/v2"

// Rules is the pure rules engine behind the state machine. It owns dealing,
// play classification and scoring; it never touches game state.
type Rules interface {
	Classify(pieces []Piece) PlayType
	Compare(a, b []Piece) CompareResult
	ValidCombos(hand []Piece, count int) [][]int
	IsWeak(hand []Piece) bool
	Deal(rng *rand.Rand) [NumSeats][]Piece
	Score(declared, captured, multiplier int) int
}

// StandardRules is the stock Liap Tui rule set.
type StandardRules struct{}

func (StandardRules) Classify(pieces []Piece) PlayType { return Classify(pieces) }

func (StandardRules) Compare(a, b []Piece) CompareResult { return Compare(a, b) }

func (StandardRules) ValidCombos(hand []Piece, count int) [][]int {
	return ValidCombos(hand, count)
}

func (StandardRules) IsWeak(hand []Piece) bool { return IsWeak(hand) }

// Deal shuffles the full deck and splits it into four hands of eight.
func (StandardRules) Deal(rng *rand.Rand) [NumSeats][]Piece {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	var hands [NumSeats][]Piece
	for seat := 0; seat < NumSeats; seat++ {
		hands[seat] = deck[seat*HandSize : (seat+1)*HandSize]
	}
	return hands
}

// Score converts a seat's declaration and captures into round points.
// Hitting the declaration exactly pays a bonus; missing it costs the
// difference. A declared zero kept clean pays three.
func (StandardRules) Score(declared, captured, multiplier int) int {
	var base int
	switch {
	case declared == 0 && captured == 0:
		base = 3
	case declared == captured:
		base = declared + 5
	case declared == 0:
		base = -captured
	default:
		diff := declared - captured
		if diff < 0 {
			diff = -diff
		}
		base = -diff
	}
	return base * multiplier
}

var _ Rules = StandardRules{}
