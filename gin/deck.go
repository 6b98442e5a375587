package gin

import (
	"math/rand/v2"
	"slices"
)

// Deck is the draw pile. The top of the deck is the end of the slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a full 52-card deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{
		cards: FullDeck(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck in the given order without shuffling.
// The last card is drawn first. Shuffle and Refill panic on a stacked deck
// created with a nil rng.
func NewStackedDeck(rng *rand.Rand, cards []Card) *Deck {
	return &Deck{cards: slices.Clone(cards), rng: rng}
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Refill adds cards to the deck and reshuffles it.
func (d *Deck) Refill(cards []Card) {
	d.cards = append(d.cards, cards...)
	d.Shuffle()
}

// Reset restores the deck to a full 52-card deck and shuffles it.
func (d *Deck) Reset() {
	d.cards = append(d.cards[:0], FullDeck()...)
	d.Shuffle()
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}
