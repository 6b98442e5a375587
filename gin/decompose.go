package gin

import (
	"math/bits"
	"slices"
)

// maxDecomposeCards bounds the assignment mask.
const maxDecomposeCards = 64

// step records the best move for a remaining-card mask: either the lowest
// card becomes deadwood (meld == 0) or it starts the meld given by the mask.
type step struct {
	value int
	meld  uint64
	kind  MeldKind
}

// decomposer searches every partition of a fixed card slice. Cards are
// sorted by (rank, suit) so the lowest unassigned card is always the
// lowest-ranked card of whatever meld it joins.
type decomposer struct {
	cards []Card
	memo  map[uint64]step
}

// MinimumDeadwood returns the smallest deadwood value reachable by grouping
// cards into sets and runs, with a partition achieving it. The search is
// exhaustive; ties resolve to the first partition in enumeration order
// (sets, then runs, then deadwood for the lowest card).
func MinimumDeadwood(cards []Card) (int, Partition) {
	p := Decompose(cards)
	return p.Value(), p
}

// Decompose returns a minimum-deadwood partition of cards.
func Decompose(cards []Card) Partition {
	if len(cards) > maxDecomposeCards {
		panic("gin: too many cards to decompose")
	}
	if len(cards) == 0 {
		return Partition{}
	}

	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b Card) int {
		if a.Rank != b.Rank {
			return int(a.Rank) - int(b.Rank)
		}
		return int(a.Suit) - int(b.Suit)
	})

	d := &decomposer{
		cards: sorted,
		memo:  make(map[uint64]step),
	}

	full := uint64(1)<<len(sorted) - 1
	if len(sorted) == maxDecomposeCards {
		full = ^uint64(0)
	}
	d.best(full)
	return d.partition(full)
}

// best returns the minimum deadwood for the cards left in mask.
func (d *decomposer) best(mask uint64) int {
	if mask == 0 {
		return 0
	}
	if s, ok := d.memo[mask]; ok {
		return s.value
	}

	low := bits.TrailingZeros64(mask)
	lowBit := uint64(1) << low
	rest := mask &^ lowBit
	card := d.cards[low]

	result := step{value: -1}
	consider := func(meld uint64, kind MeldKind) {
		v := d.best(mask &^ meld)
		if result.value < 0 || v < result.value {
			result = step{value: v, meld: meld, kind: kind}
		}
	}

	// Sets: the lowest card with 2 or 3 same-rank partners of distinct suits.
	partners := d.setPartners(card, rest)
	for _, combo := range setCombos(d.cards, partners) {
		consider(lowBit|combo, Set)
	}

	// Runs: extend upward in suit one rank at a time, no wraparound.
	run := lowBit
	length := 1
	for r := card.Rank + 1; r <= King; r++ {
		next := d.find(NewCard(r, card.Suit), rest&^run)
		if next < 0 {
			break
		}
		run |= uint64(1) << next
		length++
		if length >= minMeldSize {
			consider(run, Run)
		}
	}

	// Deadwood.
	v := card.Value() + d.best(rest)
	if result.value < 0 || v < result.value {
		result = step{value: v}
	}

	d.memo[mask] = result
	return result.value
}

// setPartners returns positions in mask holding the same rank as card but a
// different suit. Cards are sorted by rank so the scan stops at the first
// higher rank.
func (d *decomposer) setPartners(card Card, mask uint64) []int {
	var out []int
	for m := mask; m != 0; m &= m - 1 {
		i := bits.TrailingZeros64(m)
		c := d.cards[i]
		if c.Rank != card.Rank {
			break
		}
		if c.Suit != card.Suit {
			out = append(out, i)
		}
	}
	return out
}

// setCombos enumerates masks of 2 or 3 partners with pairwise distinct suits.
func setCombos(cards []Card, partners []int) []uint64 {
	var out []uint64
	n := len(partners)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pa, pb := partners[a], partners[b]
			if cards[pa].Suit == cards[pb].Suit {
				continue
			}
			pair := uint64(1)<<pa | uint64(1)<<pb
			out = append(out, pair)
			for c := b + 1; c < n; c++ {
				pc := partners[c]
				if cards[pc].Suit == cards[pa].Suit || cards[pc].Suit == cards[pb].Suit {
					continue
				}
				out = append(out, pair|uint64(1)<<pc)
			}
		}
	}
	return out
}

// find returns the lowest position in mask holding card, or -1.
func (d *decomposer) find(card Card, mask uint64) int {
	for m := mask; m != 0; m &= m - 1 {
		i := bits.TrailingZeros64(m)
		if d.cards[i] == card {
			return i
		}
		if d.cards[i].Rank > card.Rank {
			break
		}
	}
	return -1
}

// partition rebuilds the winning partition from the memo.
func (d *decomposer) partition(mask uint64) Partition {
	p := Partition{}
	for mask != 0 {
		s := d.memo[mask]
		low := bits.TrailingZeros64(mask)
		if s.meld == 0 {
			p.Deadwood = append(p.Deadwood, d.cards[low])
			mask &^= uint64(1) << low
			continue
		}
		meld := Meld{Kind: s.kind}
		for m := s.meld; m != 0; m &= m - 1 {
			meld.Cards = append(meld.Cards, d.cards[bits.TrailingZeros64(m)])
		}
		p.Melds = append(p.Melds, meld)
		mask &^= s.meld
	}
	return p
}

// BestDiscard returns the card whose removal leaves the lowest deadwood,
// the resulting value and its partition. Ties go to the earliest card in
// hand order. ok is false for an empty hand.
func BestDiscard(cards []Card) (discard Card, value int, partition Partition, ok bool) {
	value = -1
	rest := make([]Card, 0, len(cards))
	for i, c := range cards {
		rest = append(rest[:0], cards[:i]...)
		rest = append(rest, cards[i+1:]...)
		v, p := MinimumDeadwood(rest)
		if value < 0 || v < value {
			discard, value, partition, ok = c, v, p, true
		}
	}
	if !ok {
		return Card{}, 0, Partition{}, false
	}
	return discard, value, partition, true
}
