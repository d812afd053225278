package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/liaptui/liaptui-server/internal/game"
	"github.com/liaptui/liaptui-server/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var (
	ErrConnClosed  = errors.New("connection closed")
	ErrSendTimeout = errors.New("send timeout")
)

// Connection is one client transport: a websocket with a buffered outbound
// channel, read/write pumps and the per-connection rate limiters. It parses
// and validates inbound envelopes and hands them to the supervisor; it never
// touches game state itself.
type Connection struct {
	ID string

	conn       *websocket.Conn
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	supervisor *Supervisor
	logger     zerolog.Logger

	msgLimiter     *rate.Limiter
	declareLimiter *rate.Limiter
	playLimiter    *rate.Limiter
}

// NewConnection wraps an upgraded websocket.
func NewConnection(logger zerolog.Logger, conn *websocket.Conn, sup *Supervisor, cfg *Config) *Connection {
	c := &Connection{
		ID:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, 256),
		done:           make(chan struct{}),
		supervisor:     sup,
		msgLimiter:     perMinuteLimiter(cfg.Game.MessagesPerMinute),
		declareLimiter: perMinuteLimiter(cfg.Game.DeclaresPerMinute),
		playLimiter:    perMinuteLimiter(cfg.Game.PlaysPerMinute),
	}
	c.logger = logger.With().Str("component", "connection").Str("conn_id", c.ID).Logger()
	return c
}

// closeDone marks the connection dead exactly once, from whichever pump exits
// first.
func (c *Connection) closeDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

// perMinuteLimiter builds a token bucket refilling n tokens per minute with a
// burst of n.
func perMinuteLimiter(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(n)/60.0), n)
}

// Start launches the pumps and announces the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
	c.supervisor.HandleConnect(c.ID, c)
}

// Send implements Sender. It drops into the buffered channel and fails fast
// rather than blocking a broadcast on one slow client.
func (c *Connection) Send(msg protocol.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnClosed
	case <-time.After(time.Second):
		return ErrSendTimeout
	}
}

// readPump reads, validates and dispatches inbound frames.
func (c *Connection) readPump() {
	defer func() {
		c.supervisor.HandleDisconnect(c.ID)
		_ = c.conn.Close()
		c.closeDone()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("Unexpected websocket close")
			}
			return
		}

		if !c.msgLimiter.Allow() {
			c.sendError(protocol.CodeRateLimited, "too many messages")
			continue
		}

		var msg protocol.ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError(protocol.CodeInvalidRequest, "malformed envelope")
			continue
		}
		c.dispatch(&msg)
	}
}

// writePump drains the send channel and keeps the socket alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		c.closeDone()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// dispatch validates the payload and routes the action. Boundary violations
// are unicast back and never reach an action queue.
func (c *Connection) dispatch(msg *protocol.ClientMessage) {
	payload, verr := protocol.ValidateMessage(msg)
	if verr != nil {
		c.sendError(verr.Code, verr.Message)
		return
	}

	switch msg.Action {
	case protocol.ActionPing:
		_ = c.Send(protocol.ServerMessage{Event: protocol.EventPong, Data: map[string]any{}})

	case protocol.ActionAck:
		data := payload.(*protocol.AckData)
		c.logger.Debug().Int64("sequence", data.Sequence).Msg("Ack received")

	case protocol.ActionClientReady:
		c.supervisor.ClientReady(c.ID, c, payload.(*protocol.ClientReadyData))

	case protocol.ActionSyncRequest:
		c.supervisor.SyncRequest(c.ID, c)

	case protocol.ActionCreateRoom:
		c.supervisor.CreateRoom(c.ID, c, payload.(*protocol.CreateRoomData).PlayerName)

	case protocol.ActionJoinRoom:
		c.supervisor.JoinRoom(c.ID, c, payload.(*protocol.JoinRoomData))

	case protocol.ActionRequestRoomList:
		c.supervisor.RequestRoomList(c)

	case protocol.ActionGetRoomState:
		c.supervisor.GetRoomState(c.ID, c)

	case protocol.ActionAddBot:
		c.supervisor.AddBot(c.ID, c, payload.(*protocol.AddBotData))

	case protocol.ActionRemovePlayer:
		c.supervisor.RemovePlayer(c.ID, c, payload.(*protocol.RemovePlayerData).Name)

	case protocol.ActionLeaveRoom:
		c.supervisor.LeaveRoom(c.ID, c)

	case protocol.ActionStartGame:
		c.supervisor.StartGame(c.ID, c)

	case protocol.ActionRedealDecision:
		data := payload.(*protocol.RedealDecisionData)
		c.enqueue(game.Action{Type: game.ActionRedealDecision, Accept: data.Accept})

	case protocol.ActionDeclare:
		if !c.declareLimiter.Allow() {
			c.sendError(protocol.CodeRateLimited, "too many declarations")
			return
		}
		data := payload.(*protocol.DeclareData)
		c.enqueue(game.Action{Type: game.ActionDeclare, Value: data.Value})

	case protocol.ActionPlay:
		if !c.playLimiter.Allow() {
			c.sendError(protocol.CodeRateLimited, "too many plays")
			return
		}
		data := payload.(*protocol.PlayData)
		c.enqueue(game.Action{Type: game.ActionPlay, Indices: data.Indices})

	case protocol.ActionAnimationComplete:
		c.enqueue(game.Action{Type: game.ActionAnimationComplete})

	case protocol.ActionPlayerReady:
		c.enqueue(game.Action{Type: game.ActionPlayerReady})
	}
}

func (c *Connection) enqueue(action game.Action) {
	c.supervisor.EnqueueGameAction(c.ID, c, action)
}

func (c *Connection) sendError(code, message string) {
	_ = c.Send(protocol.ServerMessage{
		Event: protocol.EventError,
		Data:  protocol.ErrorData(code, message),
	})
}

var _ Sender = (*Connection)(nil)
