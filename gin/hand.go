package gin

import (
	"fmt"
	"slices"
)

// Hand is an ordered sequence of cards held by one player.
type Hand struct {
	cards []Card
}

// NewHand creates a hand holding a copy of cards.
func NewHand(cards ...Card) *Hand {
	return &Hand{cards: slices.Clone(cards)}
}

// Add appends a card to the hand.
func (h *Hand) Add(card Card) {
	h.cards = append(h.cards, card)
}

// Contains reports whether the hand holds card.
func (h *Hand) Contains(card Card) bool {
	return slices.Contains(h.cards, card)
}

// Remove takes the first occurrence of card out of the hand.
func (h *Hand) Remove(card Card) error {
	i := slices.Index(h.cards, card)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, card)
	}
	h.cards = slices.Delete(h.cards, i, i+1)
	return nil
}

// Len returns the number of cards held.
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in hand order.
func (h *Hand) Cards() []Card {
	return slices.Clone(h.cards)
}

// Clear empties the hand.
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
}

// Sort orders the hand by suit then rank.
func (h *Hand) Sort() {
	slices.SortFunc(h.cards, func(a, b Card) int {
		return a.Index() - b.Index()
	})
}

// Deadwood returns the minimum deadwood value of the hand.
func (h *Hand) Deadwood() int {
	value, _ := MinimumDeadwood(h.cards)
	return value
}

func (h *Hand) String() string {
	return FormatCards(h.cards)
}
