// Package server hosts the Liap Tui server core: the websocket transport,
// the connection registry, per-room broadcasters and message queues, the bot
// actor and the room supervisor that ties them to the game state machines.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Server is the HTTP/websocket front of the process. Everything behind the
// upgrade is the supervisor's problem.
type Server struct {
	logger     zerolog.Logger
	cfg        *Config
	supervisor *Supervisor
	upgrader   websocket.Upgrader
	version    string
	startedAt  time.Time

	httpServer *http.Server

	mu         sync.Mutex
	ipLimiters map[string]*rate.Limiter
}

// NewServer wires the HTTP layer around a supervisor.
func NewServer(logger zerolog.Logger, cfg *Config, sup *Supervisor, version string) *Server {
	return &Server{
		logger:     logger.With().Str("component", "server").Logger(),
		cfg:        cfg,
		supervisor: sup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		version:    version,
		startedAt:  time.Now(),
		ipLimiters: make(map[string]*rate.Limiter),
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/debug/rooms", s.handleDebugRooms)

	s.httpServer = &http.Server{Addr: s.cfg.Server.Addr, Handler: mux}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info().Str("addr", s.cfg.Server.Addr).Msg("Starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		s.logger.Info().Msg("Shutting down")
		s.supervisor.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// handleWebSocket rate-limits connection opens per client IP, upgrades and
// starts the connection pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.allowConnect(clientIP(r)) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Upgrade failed")
		return
	}

	c := NewConnection(s.logger, conn, s.supervisor, s.cfg)
	s.logger.Debug().Str("conn_id", c.ID).Str("remote", r.RemoteAddr).Msg("Client connected")
	c.Start()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"uptime":  time.Since(s.startedAt).String(),
		"version": s.version,
	})
}

func (s *Server) handleDebugRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"room_count": s.supervisor.RoomCount(),
		"rooms":      s.supervisor.DebugRooms(),
	})
}

// allowConnect applies the per-IP connection-open token bucket.
func (s *Server) allowConnect(ip string) bool {
	s.mu.Lock()
	limiter, ok := s.ipLimiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(float64(s.cfg.Game.ConnectsPerMinute)/60.0), s.cfg.Game.ConnectsPerMinute)
		s.ipLimiters[ip] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
