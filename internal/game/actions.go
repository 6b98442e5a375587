package game

import (
	"fmt"
	"slices"
	"time"

	"github.com/lox/ginrummy/gin"
)

// expect rejects an action unless the match is in phase.
func (m *Match) expect(phase Phase, action string) error {
	if m.over {
		return fmt.Errorf("%w: cannot %s, match is over", ErrIllegalAction, action)
	}
	if m.phase != phase {
		return fmt.Errorf("%w: cannot %s while %s", ErrIllegalAction, action, m.phase)
	}
	return nil
}

func (m *Match) currentHand() *gin.Hand {
	return m.players[m.current].Hand
}

func (m *Match) opponentHand() *gin.Hand {
	return m.players[1-m.current].Hand
}

// DrawCard takes the top of the discard stack when fromDiscard is set and
// the stack is non-empty, otherwise the top of the deck. An empty deck
// fails with gin.ErrEmptyDeck and leaves the match unchanged; the caller
// may RecycleDiscards and retry.
func (m *Match) DrawCard(fromDiscard bool) (gin.Card, error) {
	if err := m.expect(AwaitingDraw, "draw"); err != nil {
		return gin.Card{}, err
	}

	var card gin.Card
	tookDiscard := fromDiscard && len(m.discard) > 0
	if tookDiscard {
		card = m.discard[len(m.discard)-1]
		m.discard = m.discard[:len(m.discard)-1]
	} else {
		var err error
		card, err = m.deck.Draw()
		if err != nil {
			return gin.Card{}, fmt.Errorf("draw for %s: %w", m.players[m.current].Name, err)
		}
	}

	m.currentHand().Add(card)
	m.phase = AwaitingDiscard
	if err := m.checkInvariant(); err != nil {
		return gin.Card{}, err
	}

	m.logger.Debug("Card drawn",
		"player", m.players[m.current].Name,
		"fromDiscard", tookDiscard,
		"deck", m.deck.Len())
	m.events.Publish(CardDrawnEvent{Player: m.current, Card: card, FromDiscard: tookDiscard, timestamp: time.Now()})
	return card, nil
}

// DiscardCard moves card from the current player's hand onto the discard
// stack and passes the turn.
func (m *Match) DiscardCard(card gin.Card) error {
	if err := m.expect(AwaitingDiscard, "discard"); err != nil {
		return err
	}
	if err := m.currentHand().Remove(card); err != nil {
		return err
	}
	m.discard = append(m.discard, card)

	player := m.current
	m.current = 1 - m.current
	m.phase = AwaitingDraw
	if err := m.checkInvariant(); err != nil {
		return err
	}

	m.logger.Debug("Card discarded", "player", m.players[player].Name, "card", card)
	m.events.Publish(CardDiscardedEvent{Player: player, Card: card, timestamp: time.Now()})
	return nil
}

// RecycleDiscards shuffles every discard except the top card back into an
// empty deck. It fails with gin.ErrEmptyDeck when there is nothing to
// recycle.
func (m *Match) RecycleDiscards() error {
	if err := m.expect(AwaitingDraw, "recycle"); err != nil {
		return err
	}
	if !m.deck.IsEmpty() {
		return fmt.Errorf("%w: deck still has %d cards", ErrIllegalAction, m.deck.Len())
	}
	if len(m.discard) <= 1 {
		return fmt.Errorf("nothing to recycle: %w", gin.ErrEmptyDeck)
	}

	top := m.discard[len(m.discard)-1]
	recycled := m.discard[:len(m.discard)-1]
	m.deck.Refill(recycled)
	m.discard = []gin.Card{top}
	if err := m.checkInvariant(); err != nil {
		return err
	}

	m.logger.Debug("Recycled discard stack", "cards", len(recycled))
	m.events.Publish(DeckRecycledEvent{Cards: len(recycled), timestamp: time.Now()})
	return nil
}

// tenCardDeadwood returns the deadwood of the 10-card hand the current
// player holds or would hold after their best discard.
func (m *Match) tenCardDeadwood() (int, bool) {
	cards := m.currentHand().Cards()
	switch len(cards) {
	case HandSize:
		v, _ := gin.MinimumDeadwood(cards)
		return v, true
	case HandSize + 1:
		_, v, _, ok := gin.BestDiscard(cards)
		return v, ok
	default:
		return 0, false
	}
}

// CanKnock reports whether the current player's 10-card hand has deadwood
// within the knock limit. While a discard is pending the best discard is
// assumed.
func (m *Match) CanKnock() bool {
	if m.over || m.phase == RoundOver {
		return false
	}
	v, ok := m.tenCardDeadwood()
	return ok && v <= m.rules.KnockLimit
}

// IsGin reports whether the current player's 10-card hand has no deadwood,
// and the points going gin would score.
func (m *Match) IsGin() (bool, int) {
	if m.over || m.phase == RoundOver {
		return false, 0
	}
	v, ok := m.tenCardDeadwood()
	if !ok || v != 0 {
		return false, 0
	}
	return true, ScoreGin(m.rules, m.opponentHand().Deadwood())
}

// IsBigGin reports whether the current player's freshly drawn 11-card hand
// has no deadwood, and the points declaring it would score.
func (m *Match) IsBigGin() (bool, int) {
	if m.over || m.phase != AwaitingDiscard || m.currentHand().Len() != HandSize+1 {
		return false, 0
	}
	if m.currentHand().Deadwood() != 0 {
		return false, 0
	}
	return true, ScoreBigGin(m.rules, m.opponentHand().Deadwood())
}

// Knock discards card and ends the round. The remaining 10 cards must be
// within the knock limit; with no deadwood the round resolves as gin.
func (m *Match) Knock(discard gin.Card) (RoundResult, error) {
	if err := m.expect(AwaitingDiscard, "knock"); err != nil {
		return RoundResult{}, err
	}
	hand := m.currentHand()
	if !hand.Contains(discard) {
		return RoundResult{}, fmt.Errorf("knock: %w: %s", gin.ErrCardNotInHand, discard)
	}

	cards := hand.Cards()
	i := slices.Index(cards, discard)
	remaining := slices.Delete(cards, i, i+1)
	if v, _ := gin.MinimumDeadwood(remaining); v > m.rules.KnockLimit {
		return RoundResult{}, fmt.Errorf("%w: deadwood %d exceeds knock limit %d", ErrIllegalAction, v, m.rules.KnockLimit)
	}

	if err := hand.Remove(discard); err != nil {
		return RoundResult{}, err
	}
	m.discard = append(m.discard, discard)
	if err := m.checkInvariant(); err != nil {
		return RoundResult{}, err
	}
	m.events.Publish(CardDiscardedEvent{Player: m.current, Card: discard, Knock: true, timestamp: time.Now()})

	result := resolve(m.rules, ResultKnock, m.current, hand.Cards(), m.opponentHand().Cards())
	m.finishRound(result)
	return result, nil
}

// DeclareBigGin ends the round on the current player's 11-card hand
// without discarding.
func (m *Match) DeclareBigGin() (RoundResult, error) {
	if err := m.expect(AwaitingDiscard, "declare big gin"); err != nil {
		return RoundResult{}, err
	}
	if ok, _ := m.IsBigGin(); !ok {
		return RoundResult{}, fmt.Errorf("%w: hand is not big gin", ErrIllegalAction)
	}

	result := resolve(m.rules, ResultBigGin, m.current, m.currentHand().Cards(), m.opponentHand().Cards())
	m.finishRound(result)
	return result, nil
}
