package gin

import "errors"

var (
	// ErrEmptyDeck is returned when drawing from a deck with no cards left.
	ErrEmptyDeck = errors.New("gin: deck is empty")

	// ErrCardNotInHand is returned when removing a card the hand does not hold.
	ErrCardNotInHand = errors.New("gin: card not in hand")
)
