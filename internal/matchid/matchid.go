// Package matchid generates sortable match identifiers: a UUIDv7 encoded as
// 26 characters of Crockford base32, in the style of TypeID.
package matchid

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID.
const Length = 26

// Generator produces match IDs from an optional random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto/rand.
func NewGenerator(rand io.Reader) *Generator {
	return &Generator{rand: rand}
}

// Generate creates a new match ID with crypto/rand
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new match ID. It panics if the random source fails.
func (g *Generator) Generate() string {
	var id uuid.UUID
	if g.rand == nil {
		id = uuid.Must(uuid.NewV7())
	} else {
		id = uuid.Must(uuid.NewV7FromReader(g.rand))
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are
// left-padded with two zero bits, so the first character is at most '7'.
func Encode(id uuid.UUID) string {
	var hi, lo uint64
	for i := range 8 {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[i+8])
	}

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Parse decodes an ID produced by Encode. Upper-case input is accepted.
func Parse(s string) (uuid.UUID, error) {
	s = strings.ToLower(s)
	if err := Validate(s); err != nil {
		return uuid.Nil, err
	}

	var hi, lo uint64
	for i := range Length {
		v := uint64(strings.IndexByte(alphabet, s[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}

	var id uuid.UUID
	for i := 7; i >= 0; i-- {
		id[i] = byte(hi)
		id[i+8] = byte(lo)
		hi >>= 8
		lo >>= 8
	}
	return id, nil
}

// Validate checks if a match ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("match ID must be exactly %d characters, got %d", Length, len(id))
	}

	// the two padding bits must be zero
	if id[0] > '7' {
		return fmt.Errorf("match ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
