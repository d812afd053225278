// Package game implements the per-room state machine: the 32-piece deck, the
// rules engine, the eight phases and the single-goroutine driver that applies
// queued actions to them.
package game

const (
	NumSeats = 4
	HandSize = 8
	DeckSize = 32

	// WeakThreshold is the point value a hand must exceed somewhere to avoid
	// being weak.
	WeakThreshold = 9
)

// Kind is a piece rank.
type Kind string

const (
	General  Kind = "GENERAL"
	Advisor  Kind = "ADVISOR"
	Elephant Kind = "ELEPHANT"
	Chariot  Kind = "CHARIOT"
	Horse    Kind = "HORSE"
	Cannon   Kind = "CANNON"
	Soldier  Kind = "SOLDIER"
)

// Color is a piece color. Red outranks black by one point at every rank.
type Color string

const (
	Red   Color = "RED"
	Black Color = "BLACK"
)

// Piece is one immutable deck piece.
type Piece struct {
	Kind  Kind  `json:"kind"`
	Color Color `json:"color"`
	Point int   `json:"point"`
}

// RedGeneral decides the first-round starter when exactly one seat holds it.
var RedGeneral = Piece{Kind: General, Color: Red, Point: 14}

// deckTable lists each rank once with its copy count and black point value.
// The red copy of a rank is always worth one point more.
var deckTable = []struct {
	kind       Kind
	count      int
	blackPoint int
}{
	{General, 1, 13},
	{Advisor, 2, 11},
	{Elephant, 2, 9},
	{Chariot, 2, 7},
	{Horse, 2, 5},
	{Cannon, 2, 3},
	{Soldier, 5, 1},
}

// NewDeck returns the full 32-piece deck in a deterministic order.
func NewDeck() []Piece {
	deck := make([]Piece, 0, DeckSize)
	for _, e := range deckTable {
		for i := 0; i < e.count; i++ {
			deck = append(deck, Piece{Kind: e.kind, Color: Black, Point: e.blackPoint})
			deck = append(deck, Piece{Kind: e.kind, Color: Red, Point: e.blackPoint + 1})
		}
	}
	return deck
}

// ContainsRedGeneral reports whether a hand holds the red general.
func ContainsRedGeneral(hand []Piece) bool {
	for _, p := range hand {
		if p == RedGeneral {
			return true
		}
	}
	return false
}
