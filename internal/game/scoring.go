package game

import (
	"fmt"

	"github.com/lox/ginrummy/gin"
)

// ResultKind is how a round ended.
type ResultKind uint8

const (
	ResultKnock ResultKind = iota + 1
	ResultGin
	ResultBigGin
)

func (k ResultKind) String() string {
	switch k {
	case ResultKnock:
		return "knock"
	case ResultGin:
		return "gin"
	case ResultBigGin:
		return "big_gin"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind name for JSON.
func (k ResultKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *ResultKind) UnmarshalText(text []byte) error {
	for _, candidate := range []ResultKind{ResultKnock, ResultGin, ResultBigGin} {
		if candidate.String() == string(text) {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", text)
}

// RoundResult describes the resolution of a round. Knocker is the player
// who ended it; Winner may differ after an undercut.
type RoundResult struct {
	Kind              ResultKind    `json:"kind"`
	Knocker           int           `json:"knocker"`
	Winner            int           `json:"winner"`
	Points            int           `json:"points"`
	Undercut          bool          `json:"undercut"`
	KnockerDeadwood   int           `json:"knockerDeadwood"`
	OpponentDeadwood  int           `json:"opponentDeadwood"`
	KnockerPartition  gin.Partition `json:"knockerPartition"`
	OpponentPartition gin.Partition `json:"opponentPartition"`
}

// ScoreKnock applies the knock and undercut rules. With d = opponent -
// knocker deadwood, a positive d scores d for the knocker; otherwise the
// opponent scores -d plus the undercut bonus.
func ScoreKnock(rules Rules, knockerDeadwood, opponentDeadwood int) (knockerWins bool, points int, undercut bool) {
	d := opponentDeadwood - knockerDeadwood
	if d > 0 {
		return true, d, false
	}
	return false, -d + rules.UndercutBonus, true
}

// ScoreGin returns the points for going gin against opponentDeadwood.
func ScoreGin(rules Rules, opponentDeadwood int) int {
	return opponentDeadwood + rules.GinBonus
}

// ScoreBigGin returns the points for big gin against opponentDeadwood.
func ScoreBigGin(rules Rules, opponentDeadwood int) int {
	return opponentDeadwood + rules.BigGinBonus
}

// resolve builds the result for a round ended by knocker holding
// knockerHand against opponentHand.
func resolve(rules Rules, kind ResultKind, knocker int, knockerHand, opponentHand []gin.Card) RoundResult {
	kv, kp := gin.MinimumDeadwood(knockerHand)
	ov, op := gin.MinimumDeadwood(opponentHand)

	result := RoundResult{
		Kind:              kind,
		Knocker:           knocker,
		Winner:            knocker,
		KnockerDeadwood:   kv,
		OpponentDeadwood:  ov,
		KnockerPartition:  kp,
		OpponentPartition: op,
	}

	switch {
	case kind == ResultBigGin:
		result.Points = ScoreBigGin(rules, ov)
	case kv == 0:
		result.Kind = ResultGin
		result.Points = ScoreGin(rules, ov)
	default:
		knockerWins, points, undercut := ScoreKnock(rules, kv, ov)
		result.Points = points
		result.Undercut = undercut
		if !knockerWins {
			result.Winner = 1 - knocker
		}
	}
	return result
}
