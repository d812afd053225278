package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration, decoded from HCL.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains the listener-level configuration.
type ServerSettings struct {
	Addr     string `hcl:"addr,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the per-room timers, caps and boundary rate limits.
// Durations are milliseconds.
type GameSettings struct {
	RoundStartDelayMS  int `hcl:"round_start_delay_ms,optional"`
	AnimationTimeoutMS int `hcl:"animation_timeout_ms,optional"`
	TeardownGraceMS    int `hcl:"teardown_grace_ms,optional"`
	QueueCap           int `hcl:"queue_cap,optional"`

	// Rate limits: events per minute, at the transport boundary.
	ConnectsPerMinute int `hcl:"connects_per_minute,optional"`
	MessagesPerMinute int `hcl:"messages_per_minute,optional"`
	DeclaresPerMinute int `hcl:"declares_per_minute,optional"`
	PlaysPerMinute    int `hcl:"plays_per_minute,optional"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Addr:     ":8080",
			LogLevel: "info",
		},
		Game: GameSettings{
			RoundStartDelayMS:  5000,
			AnimationTimeoutMS: 3000,
			TeardownGraceMS:    30000,
			QueueCap:           DefaultQueueCap,
			ConnectsPerMinute:  5,
			MessagesPerMinute:  120,
			DeclaresPerMinute:  10,
			PlaysPerMinute:     30,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist. Missing fields take their default values.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Addr == "" {
		config.Server.Addr = defaults.Server.Addr
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.RoundStartDelayMS == 0 {
		config.Game.RoundStartDelayMS = defaults.Game.RoundStartDelayMS
	}
	if config.Game.AnimationTimeoutMS == 0 {
		config.Game.AnimationTimeoutMS = defaults.Game.AnimationTimeoutMS
	}
	if config.Game.TeardownGraceMS == 0 {
		config.Game.TeardownGraceMS = defaults.Game.TeardownGraceMS
	}
	if config.Game.QueueCap == 0 {
		config.Game.QueueCap = defaults.Game.QueueCap
	}
	if config.Game.ConnectsPerMinute == 0 {
		config.Game.ConnectsPerMinute = defaults.Game.ConnectsPerMinute
	}
	if config.Game.MessagesPerMinute == 0 {
		config.Game.MessagesPerMinute = defaults.Game.MessagesPerMinute
	}
	if config.Game.DeclaresPerMinute == 0 {
		config.Game.DeclaresPerMinute = defaults.Game.DeclaresPerMinute
	}
	if config.Game.PlaysPerMinute == 0 {
		config.Game.PlaysPerMinute = defaults.Game.PlaysPerMinute
	}

	return &config, nil
}

// Validate checks the configuration before use.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if c.Game.RoundStartDelayMS < 0 || c.Game.AnimationTimeoutMS < 0 || c.Game.TeardownGraceMS < 0 {
		return fmt.Errorf("timer durations must not be negative")
	}
	if c.Game.QueueCap < 1 {
		return fmt.Errorf("queue cap must be at least 1")
	}
	for name, v := range map[string]int{
		"connects_per_minute": c.Game.ConnectsPerMinute,
		"messages_per_minute": c.Game.MessagesPerMinute,
		"declares_per_minute": c.Game.DeclaresPerMinute,
		"plays_per_minute":    c.Game.PlaysPerMinute,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be at least 1", name)
		}
	}
	return nil
}

// RoundStartDelay returns the round_start pause as a duration.
func (c *Config) RoundStartDelay() time.Duration {
	return time.Duration(c.Game.RoundStartDelayMS) * time.Millisecond
}

// AnimationTimeout returns the turn-results fallback as a duration.
func (c *Config) AnimationTimeout() time.Duration {
	return time.Duration(c.Game.AnimationTimeoutMS) * time.Millisecond
}

// TeardownGrace returns the post-game room teardown grace as a duration.
func (c *Config) TeardownGrace() time.Duration {
	return time.Duration(c.Game.TeardownGraceMS) * time.Millisecond
}
