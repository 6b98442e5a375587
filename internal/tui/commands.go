package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
)

var errUsage = errors.New("usage")

const helpText = "draw | take | discard <card> | knock <card> | gin | recycle | next | hint | quit"

// Execute runs one command line against the match for the current player
// and reports whether the user asked to quit. Feedback lands in Status.
func (m *Model) Execute(input string) (quit bool) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]
	m.logger.Debug("Command", "cmd", cmd, "args", args)

	var err error
	switch cmd {
	case "quit", "q", "exit":
		return true
	case "help", "?":
		m.setStatus(InfoStyle, "%s", helpText)
		return false
	case "draw", "d":
		err = m.draw(false)
	case "take", "t":
		err = m.draw(true)
	case "discard", "x":
		err = m.withCard(args, func(c gin.Card) error {
			if err := m.match.DiscardCard(c); err != nil {
				return err
			}
			m.setStatus(SuccessStyle, "Discarded %s", c)
			return nil
		})
	case "knock", "k":
		err = m.withCard(args, func(c gin.Card) error {
			_, err := m.match.Knock(c)
			return err
		})
	case "gin", "g":
		err = m.gin()
	case "recycle", "r":
		if err = m.match.RecycleDiscards(); err == nil {
			m.setStatus(SuccessStyle, "Deck rebuilt from the discard stack")
		}
	case "next", "n":
		if err = m.match.NextRound(); err == nil {
			m.setStatus(SuccessStyle, "%s to play", m.match.Player(m.match.CurrentPlayer()).Name)
		}
	case "hint", "h":
		m.hint()
		return false
	default:
		m.setStatus(ErrorStyle, "Unknown command %q (try: %s)", cmd, helpText)
		return false
	}

	switch {
	case err != nil:
		m.setStatus(ErrorStyle, "%s", describeError(err))
	case m.match.IsOver():
		final := m.match.FinalScores()
		m.setStatus(SuccessStyle, "Match over %d-%d, 'quit' to exit", final[0], final[1])
	case m.match.Phase() == game.RoundOver:
		m.setStatus(SuccessStyle, "%s, 'next' to deal again", m.formatter.FormatRoundResult(*m.match.LastResult()))
	}
	return false
}

func (m *Model) draw(fromDiscard bool) error {
	name := m.match.Player(m.match.CurrentPlayer()).Name
	card, err := m.match.DrawCard(fromDiscard)
	if err != nil {
		return err
	}
	m.setStatus(SuccessStyle, "%s drew %s", name, card)
	return nil
}

func (m *Model) withCard(args []string, fn func(gin.Card) error) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: expected exactly one card, e.g. 'discard Kc'", errUsage)
	}
	card, err := gin.ParseCard(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return fn(card)
}

// gin declares big gin on a perfect 11-card hand, otherwise knocks with the
// discard that leaves no deadwood.
func (m *Model) gin() error {
	if ok, _ := m.match.IsBigGin(); ok {
		_, err := m.match.DeclareBigGin()
		return err
	}
	if m.match.Phase() != game.AwaitingDiscard {
		return fmt.Errorf("%w: draw before going gin", game.ErrIllegalAction)
	}
	hand := m.match.Player(m.match.CurrentPlayer()).Hand.Cards()
	discard, value, _, ok := gin.BestDiscard(hand)
	if !ok || value != 0 {
		return fmt.Errorf("%w: best discard leaves %d deadwood", game.ErrIllegalAction, value)
	}
	_, err := m.match.Knock(discard)
	return err
}

// hint suggests a move for the current player from the minimum deadwood
// decomposition. It never changes the match.
func (m *Model) hint() {
	view := m.match.View(m.match.CurrentPlayer())
	switch view.Phase {
	case game.AwaitingDraw:
		if view.DiscardTop == nil {
			m.setStatus(InfoStyle, "Hint: draw from the deck")
			return
		}
		with := append(slices.Clone(view.Hand), *view.DiscardTop)
		discard, value, _, _ := gin.BestDiscard(with)
		if value < view.Deadwood && discard != *view.DiscardTop {
			m.setStatus(InfoStyle, "Hint: take %s and discard %s for %d deadwood", view.DiscardTop, discard, value)
			return
		}
		m.setStatus(InfoStyle, "Hint: draw from the deck, %s does not help", view.DiscardTop)
	case game.AwaitingDiscard:
		discard, value, partition, _ := gin.BestDiscard(view.Hand)
		switch {
		case value == 0:
			m.setStatus(InfoStyle, "Hint: gin! discard %s", discard)
		case value <= m.match.Rules().KnockLimit:
			m.setStatus(InfoStyle, "Hint: knock %s with %d deadwood %s", discard, value, gin.FormatCards(partition.Deadwood))
		default:
			m.setStatus(InfoStyle, "Hint: discard %s, leaving %d deadwood", discard, value)
		}
	default:
		m.setStatus(InfoStyle, "Hint: type 'next' to deal the next round")
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, gin.ErrEmptyDeck):
		return "The deck is empty: take the discard or 'recycle'"
	case errors.Is(err, gin.ErrCardNotInHand):
		return "That card is not in your hand"
	default:
		return err.Error()
	}
}
