package gin

// Value returns the deadwood points for a rank: face cards 10, ace 1,
// numerals their face value.
func (r Rank) Value() int {
	if r >= Ten {
		return 10
	}
	return int(r)
}

// Value returns the deadwood points for the card.
func (c Card) Value() int {
	return c.Rank.Value()
}

// DeadwoodValue sums the point value of cards.
func DeadwoodValue(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}
