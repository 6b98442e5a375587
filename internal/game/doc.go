// Package game implements the round state machine for two-player Gin Rummy.
//
// The main type is Match, which owns both hands, the deck and the discard
// stack, and moves through the phases AwaitingDraw → AwaitingDiscard →
// AwaitingDraw (other player) until a knock, gin or big gin ends the round.
//
// # Basic Usage
//
//	m, err := game.NewMatch("alice", "bob", game.WithSeed(42))
//	card, err := m.DrawCard(false)   // from the deck
//	if ok, points := m.IsBigGin(); ok {
//	    result, err := m.DeclareBigGin()
//	}
//	if m.CanKnock() {
//	    result, err := m.Knock(discard) // the knock is the discard
//	} else {
//	    err = m.DiscardCard(discard)
//	}
//
// # Scoring
//
// Every legality and scoring decision asks gin.MinimumDeadwood. A knock
// with deadwood d = opponent - knocker > 0 scores d for the knocker;
// otherwise the opponent scores -d plus the undercut bonus. Gin scores the
// opponent's deadwood plus the gin bonus, big gin the big gin bonus. The
// match ends when either cumulative score reaches Rules.MatchTarget; the
// round-win bonus is only applied to FinalScores.
//
// # Deterministic Testing
//
// Use WithSeed or WithRNG for reproducible shuffles, or WithDeckFactory
// with gin.NewStackedDeck to deal exact hands.
//
// # Errors
//
// Failed actions return ErrIllegalAction, gin.ErrCardNotInHand or
// gin.ErrEmptyDeck (wrapped; test with errors.Is) and leave the match
// unchanged. ErrInvariantViolation indicates broken card accounting.
package game
