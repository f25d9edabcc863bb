// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transitions counts challenge transitions by kind (start, complete,
	// forfeit) and result (ok, rejected, error).
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideathon_challenge_transitions_total",
			Help: "Challenge state transitions by kind and result",
		},
		[]string{"kind", "result"},
	)

	// PauseAnomalies counts terminal transitions that found no open pause modifier.
	PauseAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rideathon_pause_anomalies_total",
			Help: "Challenges finished without a matching open pause modifier",
		},
	)

	ScorecardsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rideathon_scorecards_computed_total",
			Help: "Scorecards appended to the log",
		},
	)

	ScoreRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rideathon_score_run_duration_seconds",
			Help:    "Duration of a full scorecard recomputation",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rideathon_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	ScoreboardSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rideathon_scoreboard_subscribers",
			Help: "Open live scoreboard connections",
		},
	)
)

// ObserveScoreRun records the duration of a recomputation started at start.
func ObserveScoreRun(start time.Time) {
	ScoreRunDuration.Observe(time.Since(start).Seconds())
}
