package game

import "time"

// ActionType identifies an inbound action on a room's queue.
type ActionType string

const (
	// Client actions.
	ActionStartGame         ActionType = "start_game"
	ActionRedealDecision    ActionType = "redeal_decision"
	ActionDeclare           ActionType = "declare"
	ActionPlay              ActionType = "play"
	ActionAnimationComplete ActionType = "animation_complete"
	ActionPlayerReady       ActionType = "player_ready"

	// Internal actions, never accepted from the wire.
	ActionTimer            ActionType = "__timer"
	ActionSeatDisconnected ActionType = "__seat_disconnected"
	ActionSeatReconnected  ActionType = "__seat_reconnected"
)

// Action is one unit of work on a room's action queue. Payload fields are a
// union; which ones are meaningful depends on Type.
type Action struct {
	Type       ActionType
	PlayerName string
	Seq        int64
	ReceivedAt time.Time

	Accept  bool  // redeal_decision
	Value   int   // declare
	Indices []int // play

	// TimerGen ties an internal timer action to the machine generation that
	// scheduled it; stale timers are dropped.
	TimerGen uint64
}

// RejectReason is a machine-readable code explaining a rejected action.
type RejectReason string

const (
	RejectWrongPhase       RejectReason = "wrong_phase"
	RejectNotYourTurn      RejectReason = "not_your_turn"
	RejectNotYourDecision  RejectReason = "not_your_decision"
	RejectNotHost          RejectReason = "not_host"
	RejectNeedFourPlayers  RejectReason = "need_4_players"
	RejectTotalEight       RejectReason = "total_cannot_equal_8"
	RejectThirdZero        RejectReason = "no_third_consecutive_zero"
	RejectWrongPieceCount  RejectReason = "wrong_piece_count"
	RejectInvalidPieces    RejectReason = "invalid_pieces"
	RejectInvalidValue     RejectReason = "invalid_value"
	RejectGameOver         RejectReason = "game_over"
)

// Message returns a human-readable description for the error unicast.
func (r RejectReason) Message() string {
	switch r {
	case RejectWrongPhase:
		return "action not allowed in the current phase"
	case RejectNotYourTurn:
		return "it is not your turn"
	case RejectNotYourDecision:
		return "this decision belongs to another player"
	case RejectNotHost:
		return "only the host may do that"
	case RejectNeedFourPlayers:
		return "need 4 players"
	case RejectTotalEight:
		return "declaration total cannot equal 8"
	case RejectThirdZero:
		return "cannot declare zero three rounds in a row"
	case RejectWrongPieceCount:
		return "play must match the required piece count"
	case RejectInvalidPieces:
		return "selected pieces are not in your hand"
	case RejectInvalidValue:
		return "value out of range"
	case RejectGameOver:
		return "the game has ended"
	default:
		return string(r)
	}
}
