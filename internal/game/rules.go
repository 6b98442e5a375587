package game

import "fmt"

// HandSize is the number of cards dealt to each player.
const HandSize = 10

// Rules holds the scoring constants for a match.
type Rules struct {
	KnockLimit    int `json:"knockLimit"`
	GinBonus      int `json:"ginBonus"`
	BigGinBonus   int `json:"bigGinBonus"`
	UndercutBonus int `json:"undercutBonus"`
	MatchTarget   int `json:"matchTarget"`
	RoundWinBonus int `json:"roundWinBonus"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		KnockLimit:    10,
		GinBonus:      25,
		BigGinBonus:   40,
		UndercutBonus: 10,
		MatchTarget:   100,
		RoundWinBonus: 25,
	}
}

// Validate checks the rules are internally consistent.
func (r Rules) Validate() error {
	if r.KnockLimit < 0 {
		return fmt.Errorf("knock limit must not be negative: %d", r.KnockLimit)
	}
	if r.GinBonus < 0 || r.UndercutBonus < 0 || r.RoundWinBonus < 0 {
		return fmt.Errorf("bonuses must not be negative")
	}
	if r.BigGinBonus <= r.GinBonus {
		return fmt.Errorf("big gin bonus (%d) must exceed gin bonus (%d)", r.BigGinBonus, r.GinBonus)
	}
	if r.MatchTarget <= 0 {
		return fmt.Errorf("match target must be positive: %d", r.MatchTarget)
	}
	return nil
}
