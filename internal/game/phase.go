package game

import "fmt"

// Phase is the round state machine position.
type Phase uint8

const (
	AwaitingDraw Phase = iota
	AwaitingDiscard
	RoundOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingDraw:
		return "awaiting_draw"
	case AwaitingDiscard:
		return "awaiting_discard"
	case RoundOver:
		return "round_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase name for JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range []Phase{AwaitingDraw, AwaitingDiscard, RoundOver} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
