// Package protocol defines the JSON wire contract between clients and the
// server core, plus the boundary validation every inbound action passes
// through before it may touch a room's action queue.
package protocol

import "encoding/json"

// ClientMessage is the inbound envelope.
type ClientMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the outbound envelope. Sequence-bearing events carry the
// number inside Data.
type ServerMessage struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// Client -> server action names (closed set).
const (
	// Connection.
	ActionClientReady = "client_ready"
	ActionAck         = "ack"
	ActionSyncRequest = "sync_request"
	ActionPing        = "ping"

	// Lobby.
	ActionCreateRoom      = "create_room"
	ActionJoinRoom        = "join_room"
	ActionRequestRoomList = "request_room_list"

	// Room.
	ActionGetRoomState = "get_room_state"
	ActionAddBot       = "add_bot"
	ActionRemovePlayer = "remove_player"
	ActionLeaveRoom    = "leave_room"
	ActionStartGame    = "start_game"

	// Game.
	ActionRedealDecision    = "redeal_decision"
	ActionDeclare           = "declare"
	ActionPlay              = "play"
	ActionAnimationComplete = "animation_complete"
	ActionPlayerReady       = "player_ready"
)

// Server -> client event names (closed set). Game events emitted by the
// state machine carry the same names from the game package.
const (
	// Connection.
	EventConnected      = "connected"
	EventPong           = "pong"
	EventQueuedMessages = "queued_messages"
	EventError          = "error"

	// Room.
	EventRoomCreated        = "room_created"
	EventRoomJoined         = "room_joined"
	EventRoomUpdate         = "room_update"
	EventRoomListUpdate     = "room_list_update"
	EventRoomClosed         = "room_closed"
	EventHostChanged        = "host_changed"
	EventPlayerDisconnected = "player_disconnected"
	EventPlayerReconnected  = "player_reconnected"

	// Game.
	EventPhaseChange    = "phase_change"
	EventTurnResolved   = "turn_resolved"
	EventRoundComplete  = "round_complete"
	EventScoreUpdate    = "score_update"
	EventGameEnded      = "game_ended"
	EventGameTerminated = "game_terminated"
	EventResyncRequired = "resync_required"
)

// Error codes for unicast error events raised at the boundary.
const (
	CodeInvalidRequest = "invalid_request"
	CodeRoomNotFound   = "room_not_found"
	CodeRateLimited    = "rate_limited"
	CodeNotInRoom      = "not_in_room"
)

// Client payloads.

type ClientReadyData struct {
	PlayerName string `json:"player_name"`
	RoomID     string `json:"room_id,omitempty"`
}

type AckData struct {
	Sequence int64 `json:"sequence"`
}

type CreateRoomData struct {
	PlayerName string `json:"player_name"`
}

type JoinRoomData struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

type AddBotData struct {
	Slot *int `json:"slot,omitempty"`
}

type RemovePlayerData struct {
	Name string `json:"name"`
}

type RedealDecisionData struct {
	Accept bool `json:"accept"`
}

type DeclareData struct {
	Value int `json:"value"`
}

type PlayData struct {
	Indices []int `json:"indices"`
}

// RoomSummary is one entry in room_list_update.
type RoomSummary struct {
	RoomID      string `json:"room_id"`
	HostName    string `json:"host_name"`
	PlayerCount int    `json:"player_count"`
	Started     bool   `json:"started"`
}

// ErrorData is the unicast error payload.
func ErrorData(code, message string) map[string]any {
	return map[string]any{"code": code, "message": message}
}
