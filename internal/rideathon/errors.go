package rideathon

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrInconsistentPauseState = errors.New("inconsistent pause state")
	ErrTeamMismatch           = errors.New("challenge belongs to another team")
)

// TransitionError describes a rejected state change. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	ChallengeID string
	From        Status
	To          Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("challenge %s: cannot go from %s to %s", e.ChallengeID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
