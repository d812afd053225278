package main

import (
	"time"

	rand "math/rand/v2"

	"github.com/coder/quartz"

	"github.com/liaptui/liaptui-server/internal/randutil"
	"github.com/liaptui/liaptui-server/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Addr       string `kong:"help='Server address (overrides config file)'"`
	Config     string `kong:"default='liaptui.hcl',help='HCL configuration file'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
	Structured bool   `kong:"help='Emit JSON logs instead of console output'"`
	Seed       *int64 `kong:"help='Deterministic RNG seed for the server (optional)'"`
}

func (c *ServerCmd) Run() error {
	logger := setupLogger(c.Debug, c.Structured)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}
	rng = randutil.New(seed)

	sup := server.NewSupervisor(logger, cfg, quartz.NewReal(), rng)
	srv := server.NewServer(logger, cfg, sup, version)

	logger.Info().
		Str("address", cfg.Server.Addr).
		Str("log_level", cfg.Server.LogLevel).
		Dur("round_start_delay", cfg.RoundStartDelay()).
		Dur("animation_timeout", cfg.AnimationTimeout()).
		Msg("Starting Liap Tui server")

	ctx := signalContext(logger)
	return srv.Run(ctx)
}
