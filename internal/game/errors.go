package game

import "errors"

var (
	// ErrIllegalAction is returned for an action attempted outside the phase
	// that allows it, a knock without eligibility, or an invalid match setup.
	// The match is left unchanged.
	ErrIllegalAction = errors.New("game: illegal action")

	// ErrInvariantViolation signals that the 52-card accounting no longer
	// holds. It indicates a bug, not a player mistake.
	ErrInvariantViolation = errors.New("game: invariant violation")
)
