package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/coder/quartz"
	"github.com/lox/ginrummy/internal/server"
)

// ServerCmd runs the HTTP and WebSocket match server
type ServerCmd struct {
	Config   string `short:"c" default:"ginrummy.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to as host:port (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Write logs to this file instead of stderr (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := c.applyOverrides(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	rules := cfg.GameRules()
	logger.Info("Starting gin rummy server",
		"addr", cfg.GetServerAddress(),
		"config", c.Config,
		"idle_timeout", cfg.IdleTimeout(),
		"knock_limit", rules.KnockLimit,
		"match_target", rules.MatchTarget)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return server.NewServer(cfg, logger, quartz.NewReal()).Run(ctx)
}

func (c *ServerCmd) applyOverrides(cfg *server.ServerConfig) error {
	if c.Addr != "" {
		host, port, err := net.SplitHostPort(c.Addr)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", c.Addr, err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port in %q: %w", c.Addr, err)
		}
		cfg.Server.Address = host
		cfg.Server.Port = p
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.LogFile != "" {
		cfg.Server.LogFile = c.LogFile
	}
	return nil
}
