package scorekeeper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatpack/rideathon/internal/rideathon"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu       sync.Mutex
	teams    []rideathon.Team
	inputs   map[string]rideathon.ScoreInputs
	appended []rideathon.Scorecard
	failOn   string
}

func (f *fakeSource) ListTeams(context.Context) ([]rideathon.Team, error) {
	return f.teams, nil
}

func (f *fakeSource) ScoreInputs(_ context.Context, teamID string) (rideathon.ScoreInputs, error) {
	if teamID == f.failOn {
		return rideathon.ScoreInputs{}, errors.New("boom")
	}
	in, ok := f.inputs[teamID]
	if !ok {
		in = rideathon.ScoreInputs{TeamID: teamID}
	}
	return in, nil
}

func (f *fakeSource) AppendScorecard(_ context.Context, sc rideathon.Scorecard) (rideathon.Scorecard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc.ID = sc.TeamID + "-card"
	f.appended = append(f.appended, sc)
	return sc, nil
}

func (f *fakeSource) byTeam(teamID string) (rideathon.Scorecard, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sc := range f.appended {
		if sc.TeamID == teamID {
			return sc, true
		}
	}
	return rideathon.Scorecard{}, false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSource() *fakeSource {
	return &fakeSource{
		teams: []rideathon.Team{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Bravo"}},
		inputs: map[string]rideathon.ScoreInputs{
			"a": {
				TeamID: "a",
				Samples: []rideathon.DistanceSample{
					{TeamID: "a", At: t0.Add(time.Minute), Distance: 2},
					{TeamID: "a", At: t0.Add(2 * time.Minute), Distance: 3},
				},
				Challenges: []rideathon.Challenge{{ID: "c1", Status: rideathon.StatusCompleted, TeamID: "a"}},
			},
		},
	}
}

func TestRecomputeAll(t *testing.T) {
	src := newSource()
	var notified int
	k := New(src, discardLogger(), time.Minute,
		WithClock(func() time.Time { return t0.Add(time.Hour) }),
		WithNotify(func(context.Context) { notified++ }),
	)

	n, err := k.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, notified)

	a, ok := src.byTeam("a")
	require.True(t, ok)
	assert.InDelta(t, 5.0, a.DistanceTraveled, 1e-9)
	assert.InDelta(t, 5.0, a.DistanceEarned, 1e-9)
	assert.Equal(t, 1, a.ChallengesCompleted)
	assert.Equal(t, t0.Add(time.Hour), a.CreatedAt)

	b, ok := src.byTeam("b")
	require.True(t, ok)
	assert.Zero(t, b.DistanceTraveled)
}

func TestRecomputeAllPropagatesErrors(t *testing.T) {
	src := newSource()
	src.failOn = "b"
	var notified bool
	k := New(src, discardLogger(), time.Minute, WithNotify(func(context.Context) { notified = true }))

	_, err := k.RecomputeAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team b")
	assert.False(t, notified)
}

func TestRecomputeSingleTeam(t *testing.T) {
	src := newSource()
	k := New(src, discardLogger(), time.Minute, WithClock(func() time.Time { return t0.Add(90 * time.Second) }))

	sc, err := k.Recompute(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a-card", sc.ID)
	// Only the first sample is at or before the clock.
	assert.InDelta(t, 2.0, sc.DistanceTraveled, 1e-9)
}

func TestRunStopsOnCancel(t *testing.T) {
	src := newSource()
	runs := make(chan struct{}, 10)
	k := New(src, discardLogger(), 10*time.Millisecond, WithNotify(func(context.Context) {
		select {
		case runs <- struct{}{}:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	// First run happens immediately, the second on the first tick.
	for range 2 {
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatal("keeper did not run")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCheckReportsFailedRun(t *testing.T) {
	src := newSource()
	src.failOn = "a"
	k := New(src, discardLogger(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		k.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return k.Check(ctx) != nil }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
