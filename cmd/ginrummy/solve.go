package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
	"github.com/lox/ginrummy/internal/server"
	"github.com/lox/ginrummy/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// SolveCmd prints the minimum deadwood partition of a hand
type SolveCmd struct {
	Cards  string `arg:"" help:"Cards in short notation, e.g. 'As 2s 3s 7h 7d 7c Kc'"`
	Config string `short:"c" default:"ginrummy.hcl" help:"Path to HCL configuration file for the knock limit"`
}

func (c *SolveCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	rules := cfg.GameRules()
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return solve(os.Stdout, c.Cards, rules)
}

// solve writes the partition for 10 or fewer cards. For an 11-card hand it
// also shows the best discard.
func solve(w io.Writer, input string, rules game.Rules) error {
	cards, err := gin.ParseCards(input)
	if err != nil {
		return err
	}
	if len(cards) == 0 || len(cards) > game.HandSize+1 {
		return fmt.Errorf("expected 1 to %d cards, got %d", game.HandSize+1, len(cards))
	}
	seen := make(map[gin.Card]bool, len(cards))
	for _, card := range cards {
		if seen[card] {
			return fmt.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}

	fmt.Fprintln(w, titleStyle.Render("Hand "+gin.FormatCards(cards)))
	value, partition := gin.MinimumDeadwood(cards)
	fmt.Fprintln(w, tui.FormatPartition(partition))

	if len(cards) == game.HandSize+1 {
		discard, after, rest, _ := gin.BestDiscard(cards)
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Best discard %s leaves %d deadwood\n", tui.FormatCard(discard), after)
		fmt.Fprintln(w, tui.FormatPartition(rest))
		if value == 0 {
			fmt.Fprintln(w, tui.SuccessStyle.Render("Big gin!"))
		}
		return nil
	}
	if len(cards) == game.HandSize {
		switch {
		case value == 0:
			fmt.Fprintln(w, tui.SuccessStyle.Render("Gin!"))
		case value <= rules.KnockLimit:
			fmt.Fprintln(w, tui.WarningStyle.Render("Can knock"))
		}
	}
	return nil
}
