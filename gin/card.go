package gin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// NumSuits is the number of suits in a standard deck
const NumSuits = 4

var suitNames = [NumSuits]string{"Spades", "Hearts", "Diamonds", "Clubs"}

// String returns the suit glyph
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the long form used on the wire ("Hearts").
func (s Suit) Name() string {
	if s >= NumSuits {
		return "?"
	}
	return suitNames[s]
}

// IsRed returns true for Hearts and Diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Aces are low.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// NumRanks is the number of ranks in a standard deck
const NumRanks = 13

// String returns the rank symbol
func (r Rank) String() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	default:
		return "?"
	}
}

// Valid reports whether r is one of the 13 ranks.
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// Card is an immutable playing card. Two cards with the same rank and suit
// are interchangeable.
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// Index returns a stable key in [0, 52): suit-major, rank-minor.
func (c Card) Index() int {
	return int(c.Suit)*NumRanks + int(c.Rank) - 1
}

// CardFromIndex is the inverse of Card.Index.
func CardFromIndex(i int) Card {
	return Card{Rank: Rank(i%NumRanks + 1), Suit: Suit(i / NumRanks)}
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit < NumSuits
}

// String returns the string representation of a card (e.g., "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// FullDeck returns the 52 cards in Index order.
func FullDeck() []Card {
	cards := make([]Card, 0, NumSuits*NumRanks)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// ParseRank parses a rank symbol. Both "10" and "T" are accepted for ten.
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "A", "1":
		return Ace, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// ParseSuit parses a suit letter, glyph or name.
func ParseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "s", "♠", "spades":
		return Spades, nil
	case "h", "♥", "hearts":
		return Hearts, nil
	case "d", "♦", "diamonds":
		return Diamonds, nil
	case "c", "♣", "clubs":
		return Clubs, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// ParseCard parses short notation such as "Ah", "10d", "Tc" or "K♠".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) < 2 || len(runes) > 3 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit, err := ParseSuit(string(runes[len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

// ParseCards parses a whitespace or comma separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

type cardJSON struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON encodes a card as {"rank":"10","suit":"Hearts"}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Rank: c.Rank.String(), Suit: c.Suit.Name()})
}

// UnmarshalJSON accepts the object form or a short notation string ("Ah").
func (c *Card) UnmarshalJSON(data []byte) error {
	var short string
	if err := json.Unmarshal(data, &short); err == nil {
		card, err := ParseCard(short)
		if err != nil {
			return err
		}
		*c = card
		return nil
	}

	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}
	rank, err := ParseRank(raw.Rank)
	if err != nil {
		return err
	}
	suit, err := ParseSuit(raw.Suit)
	if err != nil {
		return err
	}
	*c = NewCard(rank, suit)
	return nil
}

// FormatCards joins cards with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
