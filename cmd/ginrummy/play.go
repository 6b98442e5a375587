package main

import (
	"fmt"

	"github.com/lox/ginrummy/internal/game"
	"github.com/lox/ginrummy/internal/server"
	"github.com/lox/ginrummy/internal/tui"
)

// PlayCmd starts a hot-seat match in the terminal
type PlayCmd struct {
	Player1 string `default:"North" help:"Name of the first player"`
	Player2 string `default:"South" help:"Name of the second player"`
	Seed    *int64 `help:"Deterministic shuffle seed (optional)"`
	Config  string `short:"c" default:"ginrummy.hcl" help:"Path to HCL configuration file for the rules block"`
	LogFile string `default:"ginrummy-play.log" help:"Debug log file; the terminal is owned by the UI"`
}

func (c *PlayCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	rules := cfg.GameRules()
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	logger, closeLog, err := setupLogger("debug", c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	opts := []game.MatchOption{game.WithRules(rules), game.WithLogger(logger)}
	if c.Seed != nil {
		opts = append(opts, game.WithSeed(*c.Seed))
	}
	match, err := game.NewMatch(c.Player1, c.Player2, opts...)
	if err != nil {
		return err
	}

	logger.Info("Starting hot-seat match", "player1", c.Player1, "player2", c.Player2)
	return tui.Run(match, logger)
}
