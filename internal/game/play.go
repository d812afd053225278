package game

// PlayType classifies a set of pieces put down together. Only plays of the
// same type as the turn's first play compete for the trick.
type PlayType int

const (
	Invalid PlayType = iota
	Single
	Pair
	ThreeOfAKind
	Straight
	FourOfAKind
	ExtendedStraight
	FiveOfAKind
	ExtendedStraightFive
	DoubleStraight
)

var playTypeNames = map[PlayType]string{
	Invalid:              "INVALID",
	Single:               "SINGLE",
	Pair:                 "PAIR",
	ThreeOfAKind:         "THREE_OF_A_KIND",
	Straight:             "STRAIGHT",
	FourOfAKind:          "FOUR_OF_A_KIND",
	ExtendedStraight:     "EXTENDED_STRAIGHT",
	FiveOfAKind:          "FIVE_OF_A_KIND",
	ExtendedStraightFive: "EXTENDED_STRAIGHT_5",
	DoubleStraight:       "DOUBLE_STRAIGHT",
}

func (t PlayType) String() string {
	if name, ok := playTypeNames[t]; ok {
		return name
	}
	return "INVALID"
}

// CompareResult is the outcome of comparing two plays of equal type.
type CompareResult int

const (
	Tie CompareResult = iota
	AWins
	BWins
)

// PlayValue is the scalar used to rank equal-typed plays.
func PlayValue(pieces []Piece) int {
	total := 0
	for _, p := range pieces {
		total += p.Point
	}
	return total
}

// Classify determines the play type of a piece set. Order does not matter.
func Classify(pieces []Piece) PlayType {
	switch len(pieces) {
	case 1:
		return Single
	case 2:
		if sameKindAndColor(pieces) {
			return Pair
		}
	case 3:
		if allSoldiers(pieces) && sameColor(pieces) {
			return ThreeOfAKind
		}
		if sameColor(pieces) && isStraightSet(pieces) {
			return Straight
		}
	case 4:
		if allSoldiers(pieces) && sameColor(pieces) {
			return FourOfAKind
		}
		if sameColor(pieces) && coversStraight(pieces) {
			return ExtendedStraight
		}
	case 5:
		if allSoldiers(pieces) && sameColor(pieces) {
			return FiveOfAKind
		}
		if sameColor(pieces) && coversStraight(pieces) {
			return ExtendedStraightFive
		}
	case 6:
		if sameColor(pieces) && isDoubleStraight(pieces) {
			return DoubleStraight
		}
	}
	return Invalid
}

// Compare ranks two plays the caller already knows share a type. The higher
// point sum wins; equal sums tie.
func Compare(a, b []Piece) CompareResult {
	av, bv := PlayValue(a), PlayValue(b)
	switch {
	case av > bv:
		return AWins
	case av < bv:
		return BWins
	default:
		return Tie
	}
}

// ValidCombos enumerates every subset of hand with exactly count pieces that
// classifies as a valid play. Each combo is an ascending index slice.
func ValidCombos(hand []Piece, count int) [][]int {
	if count < 1 || count > len(hand) {
		return nil
	}
	var combos [][]int
	indices := make([]int, 0, count)
	pieces := make([]Piece, 0, count)

	var walk func(start int)
	walk = func(start int) {
		if len(indices) == count {
			if Classify(pieces) != Invalid {
				combos = append(combos, append([]int(nil), indices...))
			}
			return
		}
		for i := start; i < len(hand); i++ {
			if len(hand)-i < count-len(indices) {
				return
			}
			indices = append(indices, i)
			pieces = append(pieces, hand[i])
			walk(i + 1)
			indices = indices[:len(indices)-1]
			pieces = pieces[:len(pieces)-1]
		}
	}
	walk(0)
	return combos
}

// IsWeak reports whether no piece in the hand exceeds the weak threshold.
func IsWeak(hand []Piece) bool {
	for _, p := range hand {
		if p.Point > WeakThreshold {
			return false
		}
	}
	return true
}

func sameKindAndColor(pieces []Piece) bool {
	for _, p := range pieces[1:] {
		if p.Kind != pieces[0].Kind || p.Color != pieces[0].Color {
			return false
		}
	}
	return true
}

func sameColor(pieces []Piece) bool {
	for _, p := range pieces[1:] {
		if p.Color != pieces[0].Color {
			return false
		}
	}
	return true
}

func allSoldiers(pieces []Piece) bool {
	for _, p := range pieces {
		if p.Kind != Soldier {
			return false
		}
	}
	return true
}

// isStraightSet accepts exactly one chariot, one horse and one cannon.
func isStraightSet(pieces []Piece) bool {
	counts := kindCounts(pieces)
	return counts[Chariot] == 1 && counts[Horse] == 1 && counts[Cannon] == 1 &&
		len(pieces) == 3
}

// coversStraight accepts sets built only of chariots, horses and cannons that
// contain at least one of each. Extra pieces duplicate a rank already present.
func coversStraight(pieces []Piece) bool {
	counts := kindCounts(pieces)
	total := counts[Chariot] + counts[Horse] + counts[Cannon]
	return total == len(pieces) &&
		counts[Chariot] >= 1 && counts[Horse] >= 1 && counts[Cannon] >= 1
}

// isDoubleStraight accepts exactly two each of chariot, horse and cannon.
func isDoubleStraight(pieces []Piece) bool {
	counts := kindCounts(pieces)
	return counts[Chariot] == 2 && counts[Horse] == 2 && counts[Cannon] == 2
}

func kindCounts(pieces []Piece) map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, p := range pieces {
		counts[p.Kind]++
	}
	return counts
}
