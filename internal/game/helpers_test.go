package game

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/lox/ginrummy/gin"
	"github.com/stretchr/testify/require"
)

// riggedDeck deals first to the starting player and second to the other,
// then draws stock in order followed by every unused card.
func riggedDeck(t *testing.T, first, second string, stock string) DeckFactory {
	t.Helper()
	a := gin.MustParseCards(first)
	b := gin.MustParseCards(second)
	require.Len(t, a, HandSize)
	require.Len(t, b, HandSize)

	var order []gin.Card
	for i := range HandSize {
		order = append(order, a[i], b[i])
	}
	if stock != "" {
		order = append(order, gin.MustParseCards(stock)...)
	}
	for _, c := range gin.FullDeck() {
		if !slices.Contains(order, c) {
			order = append(order, c)
		}
	}
	require.Len(t, order, 52, "rigged deck repeats a card")
	slices.Reverse(order)

	return func(rng *rand.Rand) *gin.Deck {
		return gin.NewStackedDeck(rng, order)
	}
}

// newRiggedMatch starts a match where player 0 is dealt first and acts first.
func newRiggedMatch(t *testing.T, first, second, stock string, opts ...MatchOption) *Match {
	t.Helper()
	opts = append([]MatchOption{
		WithSeed(1),
		WithStartingPlayer(0),
		WithDeckFactory(riggedDeck(t, first, second, stock)),
	}, opts...)
	m, err := NewMatch("alice", "bob", opts...)
	require.NoError(t, err)
	return m
}

func card(t *testing.T, s string) gin.Card {
	t.Helper()
	c, err := gin.ParseCard(s)
	require.NoError(t, err)
	return c
}

// totalCards counts every card the match accounts for.
func totalCards(m *Match) int {
	s := m.State()
	return s.DeckSize + s.DiscardSize + len(s.Players[0].Hand) + len(s.Players[1].Hand)
}

type eventRecorder struct {
	events []GameEvent
}

func (r *eventRecorder) OnEvent(event GameEvent) {
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []EventType {
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

const (
	// three runs and a king: deadwood 10
	aliceHand = "As 2s 3s 4h 5h 6h 7d 8d 9d Kc"
	// one run and junk: deadwood 51
	bobHand = "Ac 3c 4c 5c 6c Jh Qh Qd Ks Kd"
)
