// Package gin implements the card model and hand evaluation for two-player
// Gin Rummy.
//
// The central operation is MinimumDeadwood, which partitions a hand into
// sets, runs and deadwood so that the deadwood points are as low as
// possible:
//
//	cards := gin.MustParseCards("5s 6s 7s 9d 9c 9h Ks Kd 2c 3c")
//	value, partition := gin.MinimumDeadwood(cards)
//	// value == 25, partition.Melds holds 5♠6♠7♠ and 9♦9♣9♥
//
// Aces are low: A-2-3 is a run, Q-K-A is not. Deadwood values are 1 for an
// ace, 10 for face cards and the face value otherwise.
//
// Deck shuffling takes an explicit *rand.Rand so that deals are
// reproducible in tests; see internal/randutil.
package gin
