package server

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/liaptui/liaptui-server/internal/bot"
	"github.com/liaptui/liaptui-server/internal/game"
	"github.com/liaptui/liaptui-server/internal/protocol"
	"github.com/liaptui/liaptui-server/internal/randutil"
	"github.com/liaptui/liaptui-server/internal/room"
)

const roomIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Supervisor owns the process-wide room registry: it creates and destroys
// rooms, routes inbound actions to their queues and runs the disconnect,
// reconnect and host-migration flows. It is the only component that mutates
// room membership.
type Supervisor struct {
	logger   zerolog.Logger
	clock    quartz.Clock
	cfg      *Config
	registry *Registry
	queues   *MessageQueue

	mu    sync.Mutex
	rng   *rand.Rand
	rooms map[string]*roomState
	lobby map[string]Sender
}

// roomState bundles one room's runtime: roster, broadcaster and, once the
// game starts, the machine stack.
type roomState struct {
	room        *room.Room
	broadcaster *Broadcaster
	log         *EventLog

	queue   *game.ActionQueue
	machine *game.Machine
	actor   *BotActor
	cancel  context.CancelFunc

	mu     sync.Mutex
	latest *game.Snapshot
	grace  *quartz.Timer
	botSeq int
}

// NewSupervisor creates the supervisor with its shared collaborators.
func NewSupervisor(logger zerolog.Logger, cfg *Config, clock quartz.Clock, rng *rand.Rand) *Supervisor {
	return &Supervisor{
		logger:   logger.With().Str("component", "supervisor").Logger(),
		clock:    clock,
		cfg:      cfg,
		registry: NewRegistry(),
		queues:   NewMessageQueue(cfg.Game.QueueCap),
		rng:      rng,
		rooms:    make(map[string]*roomState),
		lobby:    make(map[string]Sender),
	}
}

// Registry exposes the connection registry to the transport layer.
func (s *Supervisor) Registry() *Registry { return s.registry }

// HandleConnect registers a fresh transport in the lobby.
func (s *Supervisor) HandleConnect(connID string, sender Sender) {
	s.mu.Lock()
	s.lobby[connID] = sender
	s.mu.Unlock()

	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventConnected,
		Data:  map[string]any{"connection_id": connID},
	})
}

// HandleDisconnect runs the disconnect flow for a closed transport.
func (s *Supervisor) HandleDisconnect(connID string) {
	s.mu.Lock()
	delete(s.lobby, connID)
	s.mu.Unlock()

	roomID, player, ok := s.registry.OnDisconnect(connID)
	if !ok {
		return
	}
	s.seatLost(roomID, player, true)
}

// seatLost handles a seat losing its human, by socket close or by leave_room.
func (s *Supervisor) seatLost(roomID, player string, disconnect bool) {
	rs := s.roomState(roomID)
	if rs == nil {
		return
	}
	r := rs.room

	if !r.Started() {
		if r.IsHost(player) {
			// Host gone before the game: the room folds.
			s.destroyRoom(roomID, protocol.EventRoomClosed, "host_left")
			return
		}
		if _, err := r.RemovePlayer(player); err == nil {
			rs.broadcaster.Broadcast(game.NewEvent(protocol.EventRoomUpdate, s.roomData(rs)))
			s.broadcastRoomList()
		}
		return
	}

	wasHost := r.IsHost(player)
	r.MarkDisconnected(player, time.Now())
	if rs.queue != nil {
		rs.queue.Enqueue(game.Action{
			Type:       game.ActionSeatDisconnected,
			PlayerName: player,
			ReceivedAt: time.Now(),
		})
	}

	eventType := protocol.EventPlayerDisconnected
	reason := "connection_closed"
	if !disconnect {
		reason = "left_room"
	}
	rs.broadcaster.Broadcast(game.NewEvent(eventType, map[string]any{
		"player_name": player,
		"reason":      reason,
	}))

	if wasHost {
		newHost := r.MigrateHost()
		rs.broadcaster.Broadcast(game.NewEvent(protocol.EventHostChanged, map[string]any{
			"old": player,
			"new": newHost,
		}))
		s.logger.Info().Str("room_id", roomID).Str("old", player).Str("new", newHost).
			Msg("Host migrated")
	}

	if !r.HasAnyHumans() {
		s.logger.Info().Str("room_id", roomID).Msg("No humans remain, destroying room")
		s.destroyRoom(roomID, protocol.EventGameTerminated, "all_players_disconnected")
	}
}

// ClientReady greets a client, or runs the reconnect flow when the name
// matches a disconnected seat. A room_id pins the lookup to one room;
// without it the supervisor searches every live room for the name.
func (s *Supervisor) ClientReady(connID string, sender Sender, data *protocol.ClientReadyData) {
	roomID := data.RoomID
	if roomID == "" {
		roomID = s.findDisconnectedSeat(data.PlayerName)
	}
	if roomID == "" {
		_ = sender.Send(protocol.ServerMessage{
			Event: protocol.EventConnected,
			Data:  map[string]any{"player_name": data.PlayerName},
		})
		return
	}

	rs := s.roomState(roomID)
	if rs == nil {
		if data.RoomID == "" {
			// The matched room was torn down between lookup and here.
			_ = sender.Send(protocol.ServerMessage{
				Event: protocol.EventConnected,
				Data:  map[string]any{"player_name": data.PlayerName},
			})
			return
		}
		s.sendError(sender, protocol.CodeRoomNotFound, "room not found")
		return
	}

	seats := rs.room.Seats()
	seatIdx := rs.room.FindSeat(data.PlayerName)
	if seatIdx < 0 || seats[seatIdx].OriginalIsBot || seats[seatIdx].Connected {
		s.sendError(sender, protocol.CodeInvalidRequest, "no disconnected seat with that name")
		return
	}

	player := data.PlayerName
	snapshot := protocol.ServerMessage{
		Event: protocol.EventRoomUpdate,
		Data:  s.snapshotData(rs, player),
	}
	queued := rs.broadcaster.Reconnect(player, func() {
		rs.room.MarkReconnected(player)
		s.registry.Register(connID, sender, roomID, player)
		s.mu.Lock()
		delete(s.lobby, connID)
		s.mu.Unlock()
	}, snapshot)

	if rs.queue != nil {
		rs.queue.Enqueue(game.Action{
			Type:       game.ActionSeatReconnected,
			PlayerName: player,
			ReceivedAt: time.Now(),
		})
	}
	rs.broadcaster.Broadcast(game.NewEvent(protocol.EventPlayerReconnected, map[string]any{
		"player_name": player,
	}))

	s.logger.Info().Str("room_id", roomID).Str("player", player).
		Int("queued_replayed", queued).Msg("Player reconnected")
}

// findDisconnectedSeat returns the id of the room holding a disconnected,
// originally human seat with the given name. A name parked in more than one
// room is ambiguous and resolves to nothing; that client must send room_id.
func (s *Supervisor) findDisconnectedSeat(player string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := ""
	for id, rs := range s.rooms {
		idx := rs.room.FindSeat(player)
		if idx < 0 {
			continue
		}
		seats := rs.room.Seats()
		if seats[idx].OriginalIsBot || seats[idx].Connected {
			continue
		}
		if match != "" {
			return ""
		}
		match = id
	}
	return match
}

// CreateRoom builds a room with the creator seated as host.
func (s *Supervisor) CreateRoom(connID string, sender Sender, playerName string) {
	s.mu.Lock()
	roomID := s.newRoomIDLocked()
	r := room.New(roomID, time.Now())
	log := NewEventLog()
	rs := &roomState{
		room: r,
		log:  log,
	}
	rs.broadcaster = NewBroadcaster(s.logger, r, s.registry, s.queues, log)
	s.rooms[roomID] = rs
	delete(s.lobby, connID)
	s.mu.Unlock()

	if _, err := r.AddPlayer(playerName, false); err != nil {
		// Fresh room; only a pathological name collision could land here.
		s.sendError(sender, protocol.CodeInvalidRequest, err.Error())
		return
	}
	s.registry.Register(connID, sender, roomID, playerName)

	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventRoomCreated,
		Data:  s.roomData(rs),
	})
	rs.broadcaster.Broadcast(game.NewEvent(protocol.EventRoomUpdate, s.roomData(rs)))
	s.broadcastRoomList()

	s.logger.Info().Str("room_id", roomID).Str("host", playerName).Msg("Room created")
}

// JoinRoom seats a player in an existing room.
func (s *Supervisor) JoinRoom(connID string, sender Sender, data *protocol.JoinRoomData) {
	rs := s.roomState(data.RoomID)
	if rs == nil {
		s.sendError(sender, protocol.CodeRoomNotFound, "room not found")
		return
	}

	seatIdx, err := rs.room.AddPlayer(data.PlayerName, false)
	if err != nil {
		s.sendError(sender, protocol.CodeInvalidRequest, err.Error())
		return
	}

	s.registry.Register(connID, sender, data.RoomID, data.PlayerName)
	s.mu.Lock()
	delete(s.lobby, connID)
	s.mu.Unlock()

	roomData := s.roomData(rs)
	roomData["seat_index"] = seatIdx
	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventRoomJoined,
		Data:  roomData,
	})
	rs.broadcaster.Broadcast(game.NewEvent(protocol.EventRoomUpdate, s.roomData(rs)))
	s.broadcastRoomList()
}

// RequestRoomList sends the joinable-room list to one transport.
func (s *Supervisor) RequestRoomList(sender Sender) {
	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventRoomListUpdate,
		Data:  map[string]any{"rooms": s.roomSummaries()},
	})
}

// GetRoomState unicasts the caller's room state.
func (s *Supervisor) GetRoomState(connID string, sender Sender) {
	rs, player := s.callerRoom(connID)
	if rs == nil {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventRoomUpdate,
		Data:  s.snapshotData(rs, player),
	})
}

// SyncRequest behaves like GetRoomState; it exists so reconnected clients can
// re-anchor after a resync_required marker.
func (s *Supervisor) SyncRequest(connID string, sender Sender) {
	s.GetRoomState(connID, sender)
}

// AddBot seats a bot, host-only, optionally in a specific slot.
func (s *Supervisor) AddBot(connID string, sender Sender, data *protocol.AddBotData) {
	rs, player := s.callerRoom(connID)
	if rs == nil {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	if !rs.room.IsHost(player) {
		s.sendReject(sender, game.RejectNotHost)
		return
	}

	slot := -1
	if data.Slot != nil {
		slot = *data.Slot
	}

	rs.mu.Lock()
	rs.botSeq++
	seq := rs.botSeq
	rs.mu.Unlock()

	var err error
	for {
		_, err = rs.room.AddBot(fmt.Sprintf("Bot %d", seq+1), slot)
		if !errors.Is(err, room.ErrNameTaken) {
			break
		}
		rs.mu.Lock()
		rs.botSeq++
		seq = rs.botSeq
		rs.mu.Unlock()
	}
	if err != nil {
		s.sendError(sender, protocol.CodeInvalidRequest, err.Error())
		return
	}

	rs.broadcaster.Broadcast(game.NewEvent(protocol.EventRoomUpdate, s.roomData(rs)))
	s.broadcastRoomList()
}

// RemovePlayer boots a seat, host-only, never the host itself.
func (s *Supervisor) RemovePlayer(connID string, sender Sender, target string) {
	rs, player := s.callerRoom(connID)
	if rs == nil {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	if !rs.room.IsHost(player) {
		s.sendReject(sender, game.RejectNotHost)
		return
	}
	if target == player {
		s.sendError(sender, protocol.CodeInvalidRequest, "host cannot remove itself")
		return
	}

	if _, err := rs.room.RemovePlayer(target); err != nil {
		s.sendError(sender, protocol.CodeInvalidRequest, err.Error())
		return
	}

	// A removed human moves back to the lobby with its connection intact.
	if removedSender := s.registry.Sender(rs.room.ID, target); removedSender != nil {
		if connID, _, ok := s.lookupConn(rs.room.ID, target); ok {
			s.registry.OnDisconnect(connID)
			s.mu.Lock()
			s.lobby[connID] = removedSender
			s.mu.Unlock()
		}
		_ = removedSender.Send(protocol.ServerMessage{
			Event: protocol.EventRoomClosed,
			Data:  map[string]any{"room_id": rs.room.ID, "reason": "removed_by_host"},
		})
	}

	rs.broadcaster.Broadcast(game.NewEvent(protocol.EventRoomUpdate, s.roomData(rs)))
	s.broadcastRoomList()
}

// LeaveRoom vacates the caller's seat. Before the game it empties the slot;
// mid-game it behaves like a disconnect so a bot takes over.
func (s *Supervisor) LeaveRoom(connID string, sender Sender) {
	roomID, player, ok := s.registry.Lookup(connID)
	if !ok {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	s.registry.OnDisconnect(connID)
	s.mu.Lock()
	s.lobby[connID] = sender
	s.mu.Unlock()

	s.seatLost(roomID, player, false)
}

// StartGame builds and starts the machine stack for a fully seated room.
func (s *Supervisor) StartGame(connID string, sender Sender) {
	rs, player := s.callerRoom(connID)
	if rs == nil {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	r := rs.room

	if !r.IsHost(player) {
		s.sendReject(sender, game.RejectNotHost)
		return
	}
	if r.Started() {
		s.sendError(sender, protocol.CodeInvalidRequest, "game already started")
		return
	}
	if r.SeatCount() != game.NumSeats {
		s.sendReject(sender, game.RejectNeedFourPlayers)
		return
	}

	s.mu.Lock()
	roomRNG := randutil.Child(s.rng)
	actorRNG := randutil.Child(s.rng)
	s.mu.Unlock()

	g := game.NewGame(r.ID, game.StandardRules{}, r, roomRNG)
	queue := game.NewActionQueue()
	timing := game.Timing{
		RoundStartDelay:  s.cfg.RoundStartDelay(),
		AnimationTimeout: s.cfg.AnimationTimeout(),
	}
	machine := game.NewMachine(s.logger, g, queue, rs.broadcaster, s.clock, timing)

	actor := NewBotActor(s.logger, r.ID, queue, bot.NewLegal(), s.clock, actorRNG)
	machine.AddObserver(actor)
	machine.AddObserver(&roomWatcher{sup: s, rs: rs, roomID: r.ID})

	ctx, cancel := context.WithCancel(context.Background())
	rs.queue = queue
	rs.machine = machine
	rs.actor = actor
	rs.cancel = cancel

	r.SetStarted()
	go machine.Run(ctx)

	queue.Enqueue(game.Action{
		Type:       game.ActionStartGame,
		PlayerName: player,
		ReceivedAt: time.Now(),
	})
	s.broadcastRoomList()

	s.logger.Info().Str("room_id", r.ID).Str("host", player).Msg("Game started")
}

// EnqueueGameAction routes a validated in-game action onto its room's queue.
func (s *Supervisor) EnqueueGameAction(connID string, sender Sender, action game.Action) {
	roomID, player, ok := s.registry.Lookup(connID)
	if !ok {
		s.sendError(sender, protocol.CodeNotInRoom, "not in a room")
		return
	}
	rs := s.roomState(roomID)
	if rs == nil || rs.queue == nil {
		s.sendReject(sender, game.RejectWrongPhase)
		return
	}

	if action.Type == game.ActionPlayerReady {
		s.resetGrace(rs)
	}

	action.PlayerName = player
	action.ReceivedAt = time.Now()
	rs.queue.Enqueue(action)
}

// Shutdown destroys every room.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.destroyRoom(id, protocol.EventRoomClosed, "server_shutdown")
	}
}

// RoomCount returns the number of live rooms.
func (s *Supervisor) RoomCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// DebugRooms summarises every room for the debug endpoint.
func (s *Supervisor) DebugRooms() []map[string]any {
	s.mu.Lock()
	states := make([]*roomState, 0, len(s.rooms))
	for _, rs := range s.rooms {
		states = append(states, rs)
	}
	s.mu.Unlock()

	out := make([]map[string]any, 0, len(states))
	for _, rs := range states {
		entry := map[string]any{
			"room_id":      rs.room.ID,
			"host":         rs.room.Host(),
			"player_count": rs.room.SeatCount(),
			"started":      rs.room.Started(),
			"phase":        string(game.PhaseWaiting),
		}
		rs.mu.Lock()
		if rs.latest != nil {
			entry["phase"] = string(rs.latest.Phase)
			entry["round_number"] = rs.latest.Round
			entry["turn_number"] = rs.latest.Turn
		}
		rs.mu.Unlock()
		entry["recent_events"] = rs.log.Recent()
		out = append(out, entry)
	}
	return out
}

// roomWatcher is the supervisor's per-room observer: it caches the latest
// snapshot for debug/sync reads, arms the post-game teardown grace timer and
// reaps rooms the machine terminated fatally.
type roomWatcher struct {
	sup    *Supervisor
	rs     *roomState
	roomID string

	gameOverSeen bool
}

func (w *roomWatcher) OnStateChange(snap *game.Snapshot) {
	w.rs.mu.Lock()
	w.rs.latest = snap
	w.rs.mu.Unlock()

	if snap.Terminated {
		go w.sup.destroyRoom(w.roomID, protocol.EventRoomClosed, "critical_error")
		return
	}
	if snap.Phase == game.PhaseGameOver && !w.gameOverSeen {
		w.gameOverSeen = true
		w.sup.armGrace(w.rs, w.roomID)
	}
}

// armGrace schedules room teardown after the post-game grace period.
func (s *Supervisor) armGrace(rs *roomState, roomID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.grace != nil {
		rs.grace.Stop()
	}
	rs.grace = s.clock.AfterFunc(s.cfg.TeardownGrace(), func() {
		s.destroyRoom(roomID, protocol.EventRoomClosed, "game_ended")
	}, "teardown-grace")
}

// resetGrace pushes the teardown deadline back on post-game activity.
func (s *Supervisor) resetGrace(rs *roomState) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.grace != nil {
		rs.grace.Reset(s.cfg.TeardownGrace())
	}
}

// destroyRoom tears a room down: final event, machine stop, queue and
// registry cleanup. Remaining connected players fall back to the lobby.
func (s *Supervisor) destroyRoom(roomID, eventType, reason string) {
	s.mu.Lock()
	rs, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, roomID)
	s.mu.Unlock()

	rs.broadcaster.Broadcast(game.NewEvent(eventType, map[string]any{
		"room_id": roomID,
		"reason":  reason,
	}))

	rs.mu.Lock()
	if rs.grace != nil {
		rs.grace.Stop()
		rs.grace = nil
	}
	rs.mu.Unlock()

	if rs.cancel != nil {
		rs.cancel()
	}
	if rs.queue != nil {
		rs.queue.Close()
	}
	if rs.actor != nil {
		rs.actor.Stop()
	}

	survivors := s.registry.Bindings(roomID)
	s.registry.DropRoom(roomID)
	s.queues.DestroyRoom(roomID)

	s.mu.Lock()
	for connID, sender := range survivors {
		s.lobby[connID] = sender
	}
	s.mu.Unlock()
	s.broadcastRoomList()

	s.logger.Info().Str("room_id", roomID).Str("reason", reason).Msg("Room destroyed")
}

// roomState looks up a live room.
func (s *Supervisor) roomState(roomID string) *roomState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[roomID]
}

// callerRoom resolves a transport to its room and player.
func (s *Supervisor) callerRoom(connID string) (*roomState, string) {
	roomID, player, ok := s.registry.Lookup(connID)
	if !ok {
		return nil, ""
	}
	return s.roomState(roomID), player
}

// lookupConn finds the transport id bound to a seat.
func (s *Supervisor) lookupConn(roomID, player string) (string, Sender, bool) {
	for connID, sender := range s.registry.Bindings(roomID) {
		if _, p, ok := s.registry.Lookup(connID); ok && p == player {
			return connID, sender, true
		}
	}
	return "", nil, false
}

// newRoomIDLocked generates an unused 6-character room id.
func (s *Supervisor) newRoomIDLocked() string {
	for {
		id := make([]byte, protocol.RoomIDLength)
		for i := range id {
			id[i] = roomIDCharset[s.rng.IntN(len(roomIDCharset))]
		}
		if _, taken := s.rooms[string(id)]; !taken {
			return string(id)
		}
	}
}

// roomData is the room_update / room_created payload.
func (s *Supervisor) roomData(rs *roomState) map[string]any {
	r := rs.room
	players := make([]any, 0, game.NumSeats)
	for i, seat := range r.Seats() {
		if seat == nil {
			players = append(players, nil)
			continue
		}
		players = append(players, map[string]any{
			"name":         seat.Name,
			"seat":         i,
			"is_bot":       seat.IsBot,
			"is_connected": seat.Connected,
			"is_host":      r.IsHost(seat.Name),
		})
	}
	return map[string]any{
		"room_id":   r.ID,
		"host_name": r.Host(),
		"started":   r.Started(),
		"players":   players,
	}
}

// snapshotData extends roomData with the latest game snapshot, including the
// recipient's private hand.
func (s *Supervisor) snapshotData(rs *roomState, player string) map[string]any {
	data := s.roomData(rs)

	rs.mu.Lock()
	snap := rs.latest
	rs.mu.Unlock()
	if snap == nil {
		return data
	}

	gamePlayers := make([]map[string]any, 0, len(snap.Players))
	for _, p := range snap.Players {
		gamePlayers = append(gamePlayers, map[string]any{
			"name":           p.Name,
			"is_bot":         p.IsBot,
			"is_connected":   p.Connected,
			"score":          p.Score,
			"hand_size":      len(p.Hand),
			"captured_piles": p.CapturedPiles,
			"declared":       p.Declared,
		})
	}
	data["phase"] = string(snap.Phase)
	data["round_number"] = snap.Round
	data["turn_number"] = snap.Turn
	data["redeal_multiplier"] = snap.RedealMultiplier
	data["required_count"] = snap.RequiredCount
	data["game_players"] = gamePlayers
	data["sequence"] = rs.broadcaster.Seq()

	for seat, p := range snap.Players {
		if p.Name == player {
			data["my_hand"] = snap.Players[seat].Hand
			break
		}
	}
	return data
}

// roomSummaries lists joinable rooms.
func (s *Supervisor) roomSummaries() []protocol.RoomSummary {
	s.mu.Lock()
	states := make([]*roomState, 0, len(s.rooms))
	for _, rs := range s.rooms {
		states = append(states, rs)
	}
	s.mu.Unlock()

	out := make([]protocol.RoomSummary, 0, len(states))
	for _, rs := range states {
		if rs.room.Started() || rs.room.SeatCount() == game.NumSeats {
			continue
		}
		out = append(out, protocol.RoomSummary{
			RoomID:      rs.room.ID,
			HostName:    rs.room.Host(),
			PlayerCount: rs.room.SeatCount(),
			Started:     rs.room.Started(),
		})
	}
	return out
}

// broadcastRoomList pushes the joinable-room list to every lobby transport.
func (s *Supervisor) broadcastRoomList() {
	summaries := s.roomSummaries()

	s.mu.Lock()
	senders := make([]Sender, 0, len(s.lobby))
	for _, sender := range s.lobby {
		senders = append(senders, sender)
	}
	s.mu.Unlock()

	msg := protocol.ServerMessage{
		Event: protocol.EventRoomListUpdate,
		Data:  map[string]any{"rooms": summaries},
	}
	for _, sender := range senders {
		_ = sender.Send(msg)
	}
}

func (s *Supervisor) sendError(sender Sender, code, message string) {
	_ = sender.Send(protocol.ServerMessage{
		Event: protocol.EventError,
		Data:  protocol.ErrorData(code, message),
	})
}

func (s *Supervisor) sendReject(sender Sender, reason game.RejectReason) {
	s.sendError(sender, string(reason), reason.Message())
}
