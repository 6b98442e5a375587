package game

import (
	"testing"
	"time"

	"github.com/lox/ginrummy/gin"
	"github.com/stretchr/testify/assert"
)

func TestEventFormatter_FormatEvent(t *testing.T) {
	names := [2]string{"Alice", "Bob"}
	qd := gin.NewCard(gin.Queen, gin.Diamonds)

	tests := []struct {
		name     string
		opts     FormattingOptions
		event    GameEvent
		expected string
	}{
		{
			name:     "round start",
			opts:     FormattingOptions{Perspective: -1},
			event:    RoundStartEvent{Round: 3, StartingPlayer: 1, timestamp: time.Now()},
			expected: "Round 3 dealt, Bob to play",
		},
		{
			name:     "hidden deck draw",
			opts:     FormattingOptions{Perspective: 1},
			event:    CardDrawnEvent{Player: 0, Card: qd, timestamp: time.Now()},
			expected: "Alice: draws from the deck",
		},
		{
			name:     "own deck draw",
			opts:     FormattingOptions{Perspective: 0},
			event:    CardDrawnEvent{Player: 0, Card: qd, timestamp: time.Now()},
			expected: "Alice: draws Q♦",
		},
		{
			name:     "spectator sees deck draws",
			opts:     FormattingOptions{ShowDrawnCards: true, Perspective: -1},
			event:    CardDrawnEvent{Player: 1, Card: qd, timestamp: time.Now()},
			expected: "Bob: draws Q♦",
		},
		{
			name:     "discard pile draw is public",
			opts:     FormattingOptions{Perspective: -1},
			event:    CardDrawnEvent{Player: 1, Card: qd, FromDiscard: true, timestamp: time.Now()},
			expected: "Bob: takes Q♦ from the discard pile",
		},
		{
			name:     "discard",
			opts:     FormattingOptions{Perspective: -1},
			event:    CardDiscardedEvent{Player: 1, Card: qd, timestamp: time.Now()},
			expected: "Bob: discards Q♦",
		},
		{
			name:     "knock discard",
			opts:     FormattingOptions{Perspective: -1},
			event:    CardDiscardedEvent{Player: 0, Card: qd, Knock: true, timestamp: time.Now()},
			expected: "Alice: knocks, discarding Q♦",
		},
		{
			name:     "recycle",
			opts:     FormattingOptions{Perspective: -1},
			event:    DeckRecycledEvent{Cards: 31, timestamp: time.Now()},
			expected: "Discard stack recycled into the deck (31 cards)",
		},
		{
			name: "undercut",
			opts: FormattingOptions{Perspective: -1},
			event: RoundEndEvent{Result: RoundResult{
				Kind: ResultKnock, Knocker: 0, Winner: 1, Points: 12, Undercut: true,
				KnockerDeadwood: 8, OpponentDeadwood: 6,
			}},
			expected: "Alice knocks with 8 deadwood against 6, undercut - Bob scores 12",
		},
		{
			name:     "gin",
			opts:     FormattingOptions{Perspective: -1},
			event:    RoundEndEvent{Result: RoundResult{Kind: ResultGin, Knocker: 1, Winner: 1, Points: 40}},
			expected: "Bob: gin! - Bob scores 40",
		},
		{
			name:     "big gin",
			opts:     FormattingOptions{Perspective: -1},
			event:    RoundEndEvent{Result: RoundResult{Kind: ResultBigGin, Knocker: 0, Winner: 0, Points: 55}},
			expected: "Alice: big gin! - Alice scores 55",
		},
		{
			name:     "match end",
			opts:     FormattingOptions{Perspective: -1},
			event:    MatchEndEvent{Winner: 1, FinalScores: [2]int{60, 150}},
			expected: "Bob wins the match 150-60",
		},
		{
			name:     "drawn match",
			opts:     FormattingOptions{Perspective: -1},
			event:    MatchEndEvent{Winner: -1, FinalScores: [2]int{125, 125}},
			expected: "Match drawn 125-125",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewEventFormatter(names, tt.opts)
			assert.Equal(t, tt.expected, formatter.FormatEvent(tt.event))
		})
	}
}
