package rideathon

import (
	"fmt"
	"time"
)

// DefaultFailurePenalty is the distance subtracted from a team that forfeits.
const DefaultFailurePenalty = 5.0

// Attempt is a challenge together with the modifiers and offsets it owns.
// Transitions mutate the attempt in place; the caller persists the result as
// a single unit. Records appended by a transition carry an empty ID.
type Attempt struct {
	Challenge Challenge
	Modifiers []Modifier
	Offsets   []Offset

	// Anomalies holds bookkeeping problems that did not block the transition.
	Anomalies []error
}

func (a *Attempt) checkTeam(teamID string) error {
	if a.Challenge.TeamID != "" && a.Challenge.TeamID != teamID {
		return fmt.Errorf("challenge %s: %w", a.Challenge.ID, ErrTeamMismatch)
	}
	return nil
}

func (a *Attempt) reject(to Status) error {
	return &TransitionError{ChallengeID: a.Challenge.ID, From: a.Challenge.Status, To: to}
}

// Start moves an available challenge to active for teamID. Challenges that
// pause distance open a zero multiplier for the duration of the attempt.
// Status is checked before ownership, so a challenge that is not available
// always yields a TransitionError.
func (a *Attempt) Start(teamID string, now time.Time) error {
	if a.Challenge.Status != StatusAvailable {
		return a.reject(StatusActive)
	}
	if err := a.checkTeam(teamID); err != nil {
		return err
	}

	a.Challenge.Status = StatusActive
	a.Challenge.StartedAt = timePtr(now)
	a.Challenge.TeamID = teamID

	if a.Challenge.PausesDistance {
		a.Modifiers = append(a.Modifiers, Modifier{
			Multiplier:  0,
			CreatorID:   teamID,
			ReceiverID:  teamID,
			ChallengeID: a.Challenge.ID,
			CreatedAt:   now,
			StartsAt:    timePtr(now),
		})
	}
	return nil
}

// Complete finishes an active challenge.
func (a *Attempt) Complete(now time.Time) error {
	if a.Challenge.Status != StatusActive {
		return a.reject(StatusCompleted)
	}
	a.finish(StatusCompleted, now)
	return nil
}

// Forfeit abandons an active challenge. Exactly one penalty offset is
// written, followed by any caller supplied bonus offsets and modifiers.
func (a *Attempt) Forfeit(teamID string, now time.Time, opts ...ForfeitOption) error {
	if a.Challenge.Status != StatusActive {
		return a.reject(StatusForfeited)
	}
	if err := a.checkTeam(teamID); err != nil {
		return err
	}

	cfg := forfeitConfig{penalty: DefaultFailurePenalty}
	for _, opt := range opts {
		opt(&cfg)
	}

	a.finish(StatusForfeited, now)

	a.Offsets = append(a.Offsets, Offset{
		Distance:    cfg.penalty,
		CreatorID:   teamID,
		ReceiverID:  teamID,
		ChallengeID: a.Challenge.ID,
		CreatedAt:   now,
	})
	for _, o := range cfg.offsets {
		o.ID = ""
		o.ChallengeID = a.Challenge.ID
		if o.CreatorID == "" {
			o.CreatorID = teamID
		}
		if o.ReceiverID == "" {
			o.ReceiverID = teamID
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		a.Offsets = append(a.Offsets, o)
	}
	for _, m := range cfg.modifiers {
		m.ID = ""
		m.ChallengeID = a.Challenge.ID
		if m.CreatorID == "" {
			m.CreatorID = teamID
		}
		if m.ReceiverID == "" {
			m.ReceiverID = teamID
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		a.Modifiers = append(a.Modifiers, m)
	}
	return nil
}

func (a *Attempt) finish(to Status, now time.Time) {
	a.Challenge.Status = to
	a.Challenge.EndedAt = timePtr(now)
	if a.Challenge.PausesDistance {
		a.closePause(now)
	}
}

// closePause ends the open zero multiplier opened by Start.
func (a *Attempt) closePause(now time.Time) {
	for i := range a.Modifiers {
		m := &a.Modifiers[i]
		if m.IsPause() && m.EndsAt == nil {
			m.EndsAt = timePtr(now)
			return
		}
	}
	a.Anomalies = append(a.Anomalies,
		fmt.Errorf("challenge %s has no open pause modifier: %w", a.Challenge.ID, ErrInconsistentPauseState))
}

// PauseModifier returns the zero multiplier owned by the attempt, if any.
func (a *Attempt) PauseModifier() (Modifier, bool) {
	for _, m := range a.Modifiers {
		if m.IsPause() {
			return m, true
		}
	}
	return Modifier{}, false
}

type forfeitConfig struct {
	penalty   float64
	offsets   []Offset
	modifiers []Modifier
}

// ForfeitOption customises a forfeit.
type ForfeitOption func(*forfeitConfig)

// WithFailurePenalty overrides DefaultFailurePenalty.
func WithFailurePenalty(distance float64) ForfeitOption {
	return func(c *forfeitConfig) { c.penalty = distance }
}

// WithBonusOffsets attaches extra offsets, such as partial credit, to the
// forfeited challenge. Empty creator or receiver default to the forfeiting team.
func WithBonusOffsets(offsets ...Offset) ForfeitOption {
	return func(c *forfeitConfig) { c.offsets = append(c.offsets, offsets...) }
}

// WithBonusModifiers attaches extra modifiers to the forfeited challenge.
func WithBonusModifiers(modifiers ...Modifier) ForfeitOption {
	return func(c *forfeitConfig) { c.modifiers = append(c.modifiers, modifiers...) }
}

func timePtr(t time.Time) *time.Time { return &t }
