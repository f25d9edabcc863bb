package rideathon

import (
	"sort"
	"time"
)

// ScoreInputs is everything needed to fold one team's standing.
type ScoreInputs struct {
	TeamID     string
	Samples    []DistanceSample
	Challenges []Challenge
	// Modifiers received by the team.
	Modifiers []Modifier
	// Offsets the team created or received.
	Offsets []Offset
}

// Tally breaks an earned distance into its parts.
type Tally struct {
	Traveled            float64
	Paused              float64
	Credited            float64
	Offsets             float64
	Earned              float64
	ChallengesCompleted int
}

// Tally folds in at now. Each sample is credited with the multiplier in force
// when it was recorded, and not at all while a pause applies.
func (in ScoreInputs) Tally(now time.Time) Tally {
	var t Tally
	for _, s := range in.Samples {
		if s.At.After(now) {
			continue
		}
		t.Traveled += s.Distance
		if Paused(in.Modifiers, in.TeamID, s.At) {
			t.Paused += s.Distance
			continue
		}
		t.Credited += s.Distance * Multiplier(in.Modifiers, in.TeamID, s.At)
	}
	t.Offsets = OffsetTotal(in.Offsets, in.TeamID, now)
	t.Earned = t.Credited - t.Offsets

	for _, c := range in.Challenges {
		if c.TeamID == in.TeamID && c.Status == StatusCompleted {
			t.ChallengesCompleted++
		}
	}
	return t
}

// ComputeScorecard produces a new scorecard for in at now. The ID is left
// for the store to assign.
func ComputeScorecard(in ScoreInputs, now time.Time) Scorecard {
	t := in.Tally(now)
	return Scorecard{
		TeamID:              in.TeamID,
		ChallengesCompleted: t.ChallengesCompleted,
		DistanceTraveled:    t.Traveled,
		DistanceEarned:      t.Earned,
		CreatedAt:           now,
	}
}

// Standing pairs a team with its most recent scorecard, which is nil when
// none has been computed yet.
type Standing struct {
	Team      Team
	Scorecard *Scorecard
}

func (s Standing) completed() int {
	if s.Scorecard == nil {
		return 0
	}
	return s.Scorecard.ChallengesCompleted
}

func (s Standing) earned() float64 {
	if s.Scorecard == nil {
		return 0
	}
	return s.Scorecard.DistanceEarned
}

// RankStandings orders standings by challenges completed, then distance
// earned, both descending. Ties keep name order.
func RankStandings(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.completed() != b.completed() {
			return a.completed() > b.completed()
		}
		if a.earned() != b.earned() {
			return a.earned() > b.earned()
		}
		return a.Team.Name < b.Team.Name
	})
}

// LastUpdated returns the oldest scorecard time among standings, which is
// how stale the board is as a whole. ok is false when no team has a scorecard.
func LastUpdated(standings []Standing) (oldest time.Time, ok bool) {
	for _, s := range standings {
		if s.Scorecard == nil {
			continue
		}
		if !ok || s.Scorecard.CreatedAt.Before(oldest) {
			oldest = s.Scorecard.CreatedAt
			ok = true
		}
	}
	return oldest, ok
}
