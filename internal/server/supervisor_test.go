package server

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liaptui/liaptui-server/internal/game"
	"github.com/liaptui/liaptui-server/internal/protocol"
	"github.com/liaptui/liaptui-server/internal/randutil"
)

func (f *fakeSender) hasEvent(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.msgs {
		if m.Event == event {
			return true
		}
	}
	return false
}

func (f *fakeSender) lastOf(event string) (protocol.ServerMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].Event == event {
			return f.msgs[i], true
		}
	}
	return protocol.ServerMessage{}, false
}

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	return NewSupervisor(zerolog.Nop(), DefaultConfig(), quartz.NewMock(t), randutil.New(1))
}

// createRoomAs connects a transport and creates a room, returning its id.
func createRoomAs(t *testing.T, s *Supervisor, connID, name string) (string, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	s.HandleConnect(connID, sender)
	s.CreateRoom(connID, sender, name)

	roomID, player, ok := s.registry.Lookup(connID)
	require.True(t, ok)
	require.Equal(t, name, player)
	return roomID, sender
}

func joinRoomAs(t *testing.T, s *Supervisor, roomID, connID, name string) *fakeSender {
	t.Helper()
	sender := &fakeSender{}
	s.HandleConnect(connID, sender)
	s.JoinRoom(connID, sender, &protocol.JoinRoomData{RoomID: roomID, PlayerName: name})
	return sender
}

func TestHandleConnectGreets(t *testing.T) {
	s := newTestSupervisor(t)
	sender := &fakeSender{}

	s.HandleConnect("conn-1", sender)

	require.Equal(t, 1, sender.count())
	msg := sender.message(0)
	assert.Equal(t, protocol.EventConnected, msg.Event)
	assert.Equal(t, "conn-1", msg.Data["connection_id"])
}

func TestCreateRoomSeatsHost(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, sender := createRoomAs(t, s, "conn-1", "alice")

	assert.Len(t, roomID, protocol.RoomIDLength)
	assert.Nil(t, protocol.ValidateRoomID(roomID), "generated ids pass their own validation")
	assert.Equal(t, 1, s.RoomCount())

	created, ok := sender.lastOf(protocol.EventRoomCreated)
	require.True(t, ok)
	assert.Equal(t, roomID, created.Data["room_id"])
	assert.Equal(t, "alice", created.Data["host_name"])
}

func TestJoinRoom(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")

	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	joined, ok := bob.lastOf(protocol.EventRoomJoined)
	require.True(t, ok)
	assert.Equal(t, 1, joined.Data["seat_index"])
	assert.True(t, host.hasEvent(protocol.EventRoomUpdate), "existing seats see the update")
}

func TestJoinRoomErrors(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, _ := createRoomAs(t, s, "conn-1", "alice")

	// Unknown room.
	ghost := &fakeSender{}
	s.HandleConnect("conn-2", ghost)
	s.JoinRoom("conn-2", ghost, &protocol.JoinRoomData{RoomID: "ZZZZZZ", PlayerName: "bob"})
	errMsg, ok := ghost.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeRoomNotFound, errMsg.Data["code"])

	// Duplicate name.
	dupe := joinRoomAs(t, s, roomID, "conn-3", "alice")
	errMsg, ok = dupe.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeInvalidRequest, errMsg.Data["code"])
}

func TestRoomListExcludesFullAndStarted(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, _ := createRoomAs(t, s, "conn-1", "alice")

	watcher := &fakeSender{}
	s.HandleConnect("conn-w", watcher)
	s.RequestRoomList(watcher)
	list, ok := watcher.lastOf(protocol.EventRoomListUpdate)
	require.True(t, ok)
	require.Len(t, list.Data["rooms"], 1)

	for _, name := range []string{"bob", "cara", "dan"} {
		joinRoomAs(t, s, roomID, "conn-j"+name, name)
	}
	s.RequestRoomList(watcher)
	list, ok = watcher.lastOf(protocol.EventRoomListUpdate)
	require.True(t, ok)
	assert.Empty(t, list.Data["rooms"], "full rooms are not joinable")
}

func TestAddBotHostOnly(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	s.AddBot("conn-2", bob, &protocol.AddBotData{})
	errMsg, ok := bob.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, string(game.RejectNotHost), errMsg.Data["code"])

	s.AddBot("conn-1", host, &protocol.AddBotData{})
	assert.Equal(t, 3, s.roomState(roomID).room.SeatCount())

	update, ok := host.lastOf(protocol.EventRoomUpdate)
	require.True(t, ok)
	players := update.Data["players"].([]any)
	botSeat := players[2].(map[string]any)
	assert.True(t, botSeat["is_bot"].(bool))
}

func TestRemovePlayerReturnsToLobby(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, _ := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	host := &fakeSender{}
	s.RemovePlayer("conn-1", host, "bob")

	closed, ok := bob.lastOf(protocol.EventRoomClosed)
	require.True(t, ok)
	assert.Equal(t, "removed_by_host", closed.Data["reason"])

	_, _, bound := s.registry.Lookup("conn-2")
	assert.False(t, bound, "booted player is unbound from the room")
	assert.Equal(t, 1, s.roomState(roomID).room.SeatCount())

	// Back in the lobby, the booted player still gets list updates.
	s.broadcastRoomList()
	assert.True(t, bob.hasEvent(protocol.EventRoomListUpdate))
}

func TestRemovePlayerGuards(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	// Non-host may not remove anyone.
	s.RemovePlayer("conn-2", bob, "alice")
	errMsg, ok := bob.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, string(game.RejectNotHost), errMsg.Data["code"])

	// The host may not remove itself.
	s.RemovePlayer("conn-1", host, "alice")
	errMsg, ok = host.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeInvalidRequest, errMsg.Data["code"])
}

func TestLeaveRoomBeforeStart(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	s.LeaveRoom("conn-2", bob)

	assert.Equal(t, 1, s.roomState(roomID).room.SeatCount())
	assert.True(t, host.hasEvent(protocol.EventRoomUpdate))
	_, _, bound := s.registry.Lookup("conn-2")
	assert.False(t, bound)
}

func TestHostLeaveBeforeStartFoldsRoom(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")

	s.LeaveRoom("conn-1", host)

	assert.Equal(t, 0, s.RoomCount())
	closed, ok := bob.lastOf(protocol.EventRoomClosed)
	require.True(t, ok)
	assert.Equal(t, "host_left", closed.Data["reason"])
	assert.Nil(t, s.roomState(roomID))
}

func TestStartGameGuards(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")

	s.StartGame("conn-1", host)
	errMsg, ok := host.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, string(game.RejectNeedFourPlayers), errMsg.Data["code"])

	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")
	s.StartGame("conn-2", bob)
	errMsg, ok = bob.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, string(game.RejectNotHost), errMsg.Data["code"])
}

func TestStartGameRunsMachine(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	for i := 0; i < 3; i++ {
		s.AddBot("conn-1", host, &protocol.AddBotData{})
	}
	require.Equal(t, game.NumSeats, s.roomState(roomID).room.SeatCount())

	s.StartGame("conn-1", host)
	assert.True(t, s.roomState(roomID).room.Started())

	// The machine runs on its own goroutine; the first phase_change lands on
	// the host's transport once start_game drains.
	require.Eventually(t, func() bool {
		return host.hasEvent(game.EventPhaseChange)
	}, 2*time.Second, 10*time.Millisecond)

	// Starting twice is rejected.
	s.StartGame("conn-1", host)
	errMsg, ok := host.lastOf(protocol.EventError)
	require.True(t, ok)
	assert.Equal(t, protocol.CodeInvalidRequest, errMsg.Data["code"])
}

func TestClientReadyReconnectsByNameAlone(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	bob := joinRoomAs(t, s, roomID, "conn-2", "bob")
	for i := 0; i < 2; i++ {
		s.AddBot("conn-1", host, &protocol.AddBotData{})
	}
	s.StartGame("conn-1", host)
	require.Eventually(t, func() bool {
		return bob.hasEvent(game.EventPhaseChange)
	}, 2*time.Second, 10*time.Millisecond)

	s.HandleDisconnect("conn-2")
	require.Equal(t, 1, s.RoomCount(), "a human remains, so the room survives")

	// client_ready with only a player name finds the parked seat.
	fresh := &fakeSender{}
	s.HandleConnect("conn-3", fresh)
	s.ClientReady("conn-3", fresh, &protocol.ClientReadyData{PlayerName: "bob"})

	gotRoom, player, ok := s.registry.Lookup("conn-3")
	require.True(t, ok)
	assert.Equal(t, roomID, gotRoom)
	assert.Equal(t, "bob", player)
	assert.True(t, fresh.hasEvent(protocol.EventRoomUpdate), "snapshot replayed")
	assert.True(t, fresh.hasEvent(protocol.EventQueuedMessages))
	assert.True(t, host.hasEvent(protocol.EventPlayerReconnected))

	// An unknown name just gets the lobby greeting back.
	ghost := &fakeSender{}
	s.HandleConnect("conn-4", ghost)
	s.ClientReady("conn-4", ghost, &protocol.ClientReadyData{PlayerName: "nobody"})
	greeting, ok := ghost.lastOf(protocol.EventConnected)
	require.True(t, ok)
	assert.Equal(t, "nobody", greeting.Data["player_name"])
}

func TestLastHumanDisconnectDestroysRoom(t *testing.T) {
	s := newTestSupervisor(t)
	roomID, host := createRoomAs(t, s, "conn-1", "alice")
	for i := 0; i < 3; i++ {
		s.AddBot("conn-1", host, &protocol.AddBotData{})
	}
	s.StartGame("conn-1", host)
	require.Eventually(t, func() bool {
		return host.hasEvent(game.EventPhaseChange)
	}, 2*time.Second, 10*time.Millisecond)

	s.HandleDisconnect("conn-1")

	assert.Equal(t, 0, s.RoomCount(), "a room of bots has no reason to live")
	assert.Nil(t, s.roomState(roomID))
}

func TestShutdownDestroysAllRooms(t *testing.T) {
	s := newTestSupervisor(t)
	_, a := createRoomAs(t, s, "conn-1", "alice")
	_, b := createRoomAs(t, s, "conn-2", "bob")

	s.Shutdown()

	assert.Equal(t, 0, s.RoomCount())
	for _, sender := range []*fakeSender{a, b} {
		closed, ok := sender.lastOf(protocol.EventRoomClosed)
		require.True(t, ok)
		assert.Equal(t, "server_shutdown", closed.Data["reason"])
	}
}
