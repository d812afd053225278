package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

const (
	MaxNameLength = 20
	RoomIDLength  = 6
	MaxDeclare    = 8
	MaxPlaySize   = 8
)

// ValidationError describes a rejected inbound message. It never reaches the
// action queue; the connection unicasts it back as an error event.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Code: CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// ValidatePlayerName enforces the name contract: 1..20 characters after
// trimming, letters, digits and spaces only.
func ValidatePlayerName(name string) (string, *ValidationError) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 1 || len(trimmed) > MaxNameLength {
		return "", invalid("player name must be 1-%d characters", MaxNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			return "", invalid("player name contains forbidden characters")
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return "", invalid("player name must be alphanumeric")
		}
	}
	return trimmed, nil
}

// ValidateRoomID enforces the 6-uppercase-alphanumeric room id format.
func ValidateRoomID(id string) *ValidationError {
	if len(id) != RoomIDLength {
		return invalid("room id must be %d characters", RoomIDLength)
	}
	for _, r := range id {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return invalid("room id must be uppercase alphanumeric")
		}
	}
	return nil
}

// knownActions is the closed inbound set.
var knownActions = map[string]bool{
	ActionClientReady: true, ActionAck: true, ActionSyncRequest: true, ActionPing: true,
	ActionCreateRoom: true, ActionJoinRoom: true, ActionRequestRoomList: true,
	ActionGetRoomState: true, ActionAddBot: true, ActionRemovePlayer: true,
	ActionLeaveRoom: true, ActionStartGame: true,
	ActionRedealDecision: true, ActionDeclare: true, ActionPlay: true,
	ActionAnimationComplete: true, ActionPlayerReady: true,
}

// ValidateMessage checks an inbound envelope: known action, parseable and
// in-range payload. It returns the decoded payload for actions that have one.
func ValidateMessage(msg *ClientMessage) (any, *ValidationError) {
	if !knownActions[msg.Action] {
		return nil, invalid("unknown action %q", msg.Action)
	}

	switch msg.Action {
	case ActionClientReady:
		var data ClientReadyData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		name, verr := ValidatePlayerName(data.PlayerName)
		if verr != nil {
			return nil, verr
		}
		data.PlayerName = name
		if data.RoomID != "" {
			if verr := ValidateRoomID(data.RoomID); verr != nil {
				return nil, verr
			}
		}
		return &data, nil

	case ActionCreateRoom:
		var data CreateRoomData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		name, verr := ValidatePlayerName(data.PlayerName)
		if verr != nil {
			return nil, verr
		}
		data.PlayerName = name
		return &data, nil

	case ActionJoinRoom:
		var data JoinRoomData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		name, verr := ValidatePlayerName(data.PlayerName)
		if verr != nil {
			return nil, verr
		}
		data.PlayerName = name
		if verr := ValidateRoomID(data.RoomID); verr != nil {
			return nil, verr
		}
		return &data, nil

	case ActionAddBot:
		var data AddBotData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		if data.Slot != nil && (*data.Slot < 0 || *data.Slot > 3) {
			return nil, invalid("slot must be 0-3")
		}
		return &data, nil

	case ActionRemovePlayer:
		var data RemovePlayerData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		name, verr := ValidatePlayerName(data.Name)
		if verr != nil {
			return nil, verr
		}
		data.Name = name
		return &data, nil

	case ActionRedealDecision:
		var data RedealDecisionData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		return &data, nil

	case ActionDeclare:
		var data DeclareData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		if data.Value < 0 || data.Value > MaxDeclare {
			return nil, invalid("declaration value must be 0-%d", MaxDeclare)
		}
		return &data, nil

	case ActionPlay:
		var data PlayData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		if len(data.Indices) < 1 || len(data.Indices) > MaxPlaySize {
			return nil, invalid("play must contain 1-%d indices", MaxPlaySize)
		}
		seen := make(map[int]bool, len(data.Indices))
		for _, idx := range data.Indices {
			if idx < 0 {
				return nil, invalid("play indices must be non-negative")
			}
			if seen[idx] {
				return nil, invalid("duplicate play index %d", idx)
			}
			seen[idx] = true
		}
		return &data, nil

	case ActionAck:
		var data AckData
		if err := unmarshal(msg.Data, &data); err != nil {
			return nil, err
		}
		if data.Sequence < 0 {
			return nil, invalid("sequence must be non-negative")
		}
		return &data, nil

	default:
		// Payload-free actions.
		return nil, nil
	}
}

func unmarshal(raw json.RawMessage, v any) *ValidationError {
	if len(raw) == 0 {
		return invalid("missing payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalid("malformed payload: %v", err)
	}
	return nil
}
