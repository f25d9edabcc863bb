package server

import (
	"context"
	"errors"

	"github.com/floatpack/rideathon/internal/eventconfig"
	"github.com/floatpack/rideathon/internal/rideathon"
)

var (
	ErrConflict  = errors.New("conflict")
	errNoSession = errors.New("no valid session")
)

// Counts is the size of each collection, shown on the admin status page.
type Counts struct {
	Teams      int `json:"teams"`
	Challenges int `json:"challenges"`
	Modifiers  int `json:"modifiers"`
	Offsets    int `json:"offsets"`
	Scorecards int `json:"scorecards"`
}

type PopulateResult struct {
	Teams      int `json:"teams"`
	Challenges int `json:"challenges"`
}

type Store interface {
	TeamByName(ctx context.Context, name string) (rideathon.Team, error)
	Team(ctx context.Context, id string) (rideathon.Team, error)
	ListTeams(ctx context.Context) ([]rideathon.Team, error)
	CreateTeamSession(ctx context.Context, teamID string) (token string, err error)
	TeamFromSession(ctx context.Context, token string) (rideathon.Team, error)

	ListChallenges(ctx context.Context, teamID string) ([]rideathon.Challenge, error)
	Attempt(ctx context.Context, challengeID string) (rideathon.Attempt, error)
	StartChallenge(ctx context.Context, challengeID, teamID string) (rideathon.Attempt, error)
	// CompleteChallenge finishes a challenge. An empty teamID skips the
	// ownership check.
	CompleteChallenge(ctx context.Context, challengeID, teamID string) (rideathon.Attempt, error)
	// ForfeitChallenge abandons a challenge. An empty teamID forfeits on
	// behalf of the team the challenge is bound to.
	ForfeitChallenge(ctx context.Context, challengeID, teamID string, opts ...rideathon.ForfeitOption) (rideathon.Attempt, error)

	GrantModifier(ctx context.Context, m rideathon.Modifier) (rideathon.Modifier, error)
	GrantOffset(ctx context.Context, o rideathon.Offset) (rideathon.Offset, error)
	RecordDistance(ctx context.Context, sample rideathon.DistanceSample) (rideathon.DistanceSample, error)

	ScoreInputs(ctx context.Context, teamID string) (rideathon.ScoreInputs, error)
	AppendScorecard(ctx context.Context, sc rideathon.Scorecard) (rideathon.Scorecard, error)
	Standings(ctx context.Context) ([]rideathon.Standing, error)
	ScorecardHistory(ctx context.Context, teamID string, limit int) ([]rideathon.Scorecard, error)

	Populate(ctx context.Context, ev eventconfig.Event) (PopulateResult, error)
	Clear(ctx context.Context) error
	Counts(ctx context.Context) (Counts, error)
	IsEmpty(ctx context.Context) (bool, error)
}
