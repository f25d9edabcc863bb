// Package rideathon defines the core domain types of the rideathon event:
// teams, challenges, the modifiers and offsets challenges spawn, and the
// scorecards folded from them. It has zero external dependencies.
package rideathon

import "time"

type Team struct {
	ID         string
	Name       string
	SecretHash string
	Members    []string
	Color      string
	CreatedAt  time.Time
}

type Status string

const (
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusForfeited Status = "forfeited"
)

// Valid reports whether s is one of the known challenge statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusActive, StatusCompleted, StatusForfeited:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusForfeited
}

// Challenge is one team's attempt instance of a named task. StartedAt is set
// iff Status is not available; EndedAt is set iff Status is terminal.
type Challenge struct {
	ID             string
	Name           string
	Description    string
	PausesDistance bool
	Lat            float64
	Lng            float64
	Status         Status
	StartedAt      *time.Time
	EndedAt        *time.Time
	TeamID         string
	CreatedAt      time.Time
}

// Modifier multiplies the distance a receiver earns while it is active.
// A multiplier of 0 means no credit at all (a pause).
type Modifier struct {
	ID          string
	Multiplier  float64
	CreatorID   string
	ReceiverID  string
	ChallengeID string
	CreatedAt   time.Time
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// Offset is a one-shot distance adjustment. Positive values are penalties
// for the receiver. Offsets are never edited once written.
type Offset struct {
	ID          string
	Distance    float64
	CreatorID   string
	ReceiverID  string
	ChallengeID string
	CreatedAt   time.Time
}

type Scorecard struct {
	ID                  string
	TeamID              string
	ChallengesCompleted int
	DistanceTraveled    float64
	DistanceEarned      float64
	CreatedAt           time.Time
}

// DistanceSample is an incremental distance reported for a team by the
// location pipeline.
type DistanceSample struct {
	TeamID   string
	At       time.Time
	Distance float64
}
