// Package scorekeeper periodically folds every team's distance samples,
// modifiers and offsets into a fresh scorecard.
package scorekeeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/floatpack/rideathon/internal/metrics"
	"github.com/floatpack/rideathon/internal/rideathon"
)

// Source is the storage the keeper reads inputs from and appends to.
type Source interface {
	ListTeams(ctx context.Context) ([]rideathon.Team, error)
	ScoreInputs(ctx context.Context, teamID string) (rideathon.ScoreInputs, error)
	AppendScorecard(ctx context.Context, sc rideathon.Scorecard) (rideathon.Scorecard, error)
}

type Keeper struct {
	src      Source
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	notify   func(context.Context)
	workers  int

	// run serialises recomputations so two runs never interleave.
	run sync.Mutex

	mu      sync.Mutex
	lastErr error
}

type Option func(*Keeper)

// WithNotify registers a callback invoked after every successful run.
func WithNotify(fn func(context.Context)) Option {
	return func(k *Keeper) { k.notify = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(k *Keeper) { k.now = now }
}

// WithWorkers bounds how many teams are scored concurrently.
func WithWorkers(n int) Option {
	return func(k *Keeper) {
		if n > 0 {
			k.workers = n
		}
	}
}

func New(src Source, logger *slog.Logger, interval time.Duration, opts ...Option) *Keeper {
	k := &Keeper{
		src:      src,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		workers:  4,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Run recomputes scorecards every interval until ctx is done. Failed runs
// are logged and retried on the next tick.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		_, err := k.RecomputeAll(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			k.logger.Error("scorecard run failed", "error", err)
		}
		k.mu.Lock()
		k.lastErr = err
		k.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Check reports the error of the last scheduled run, if it failed.
func (k *Keeper) Check(context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lastErr
}

// RecomputeAll appends one scorecard per team and returns how many were
// written.
func (k *Keeper) RecomputeAll(ctx context.Context) (int, error) {
	k.run.Lock()
	defer k.run.Unlock()

	start := time.Now()
	defer metrics.ObserveScoreRun(start)

	teams, err := k.src.ListTeams(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing teams: %w", err)
	}

	// One timestamp for the whole run keeps the board consistent.
	now := k.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k.workers)
	for _, team := range teams {
		g.Go(func() error {
			_, err := k.recompute(gctx, team.ID, now)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	k.logger.Debug("scorecards recomputed", "teams", len(teams), "duration_ms", time.Since(start).Milliseconds())

	if k.notify != nil {
		k.notify(ctx)
	}
	return len(teams), nil
}

// Recompute appends a fresh scorecard for a single team.
func (k *Keeper) Recompute(ctx context.Context, teamID string) (rideathon.Scorecard, error) {
	return k.recompute(ctx, teamID, k.now())
}

func (k *Keeper) recompute(ctx context.Context, teamID string, now time.Time) (rideathon.Scorecard, error) {
	in, err := k.src.ScoreInputs(ctx, teamID)
	if err != nil {
		return rideathon.Scorecard{}, fmt.Errorf("loading inputs for team %s: %w", teamID, err)
	}

	sc, err := k.src.AppendScorecard(ctx, rideathon.ComputeScorecard(in, now))
	if err != nil {
		return sc, fmt.Errorf("appending scorecard for team %s: %w", teamID, err)
	}
	metrics.ScorecardsComputed.Inc()
	return sc, nil
}
