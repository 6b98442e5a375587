package gin

import (
	"fmt"
	"slices"
	"strings"
)

// MeldKind distinguishes sets from runs.
type MeldKind uint8

const (
	Set MeldKind = iota + 1
	Run
)

func (k MeldKind) String() string {
	switch k {
	case Set:
		return "set"
	case Run:
		return "run"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as "set" or "run".
func (k MeldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes "set" or "run".
func (k *MeldKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "set":
		*k = Set
	case "run":
		*k = Run
	default:
		return fmt.Errorf("unknown meld kind %q", text)
	}
	return nil
}

const (
	minMeldSize = 3
	maxSetSize  = NumSuits
)

// Meld is a set (3-4 cards of one rank, distinct suits) or a run (3 or more
// consecutive ranks in one suit, ace low, no wraparound).
type Meld struct {
	Kind  MeldKind `json:"kind"`
	Cards []Card   `json:"cards"`
}

// Valid reports whether the meld satisfies the rules for its kind.
func (m Meld) Valid() bool {
	switch m.Kind {
	case Set:
		return isSet(m.Cards)
	case Run:
		return isRun(m.Cards)
	default:
		return false
	}
}

// Value returns the sum of card values in the meld.
func (m Meld) Value() int {
	return DeadwoodValue(m.Cards)
}

func (m Meld) String() string {
	return m.Kind.String() + "[" + FormatCards(m.Cards) + "]"
}

func isSet(cards []Card) bool {
	if len(cards) < minMeldSize || len(cards) > maxSetSize {
		return false
	}
	var suits [NumSuits]bool
	for _, c := range cards {
		if !c.Valid() || c.Rank != cards[0].Rank || suits[c.Suit] {
			return false
		}
		suits[c.Suit] = true
	}
	return true
}

func isRun(cards []Card) bool {
	if len(cards) < minMeldSize {
		return false
	}
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, func(a, b Card) int { return int(a.Rank) - int(b.Rank) })
	for i, c := range sorted {
		if !c.Valid() || c.Suit != sorted[0].Suit {
			return false
		}
		if i > 0 && c.Rank != sorted[i-1].Rank+1 {
			return false
		}
	}
	return true
}

// Partition is a disjoint cover of a hand by melds and deadwood.
type Partition struct {
	Melds    []Meld `json:"melds"`
	Deadwood []Card `json:"deadwood"`
}

// Value returns the deadwood points of the partition.
func (p Partition) Value() int {
	return DeadwoodValue(p.Deadwood)
}

// Cards returns every card covered by the partition, melds first.
func (p Partition) Cards() []Card {
	var cards []Card
	for _, m := range p.Melds {
		cards = append(cards, m.Cards...)
	}
	return append(cards, p.Deadwood...)
}

// Valid reports whether every meld is valid.
func (p Partition) Valid() bool {
	for _, m := range p.Melds {
		if !m.Valid() {
			return false
		}
	}
	return true
}

func (p Partition) String() string {
	var b strings.Builder
	for i, m := range p.Melds {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.String())
	}
	if len(p.Deadwood) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("deadwood[" + FormatCards(p.Deadwood) + "]")
	}
	return b.String()
}
