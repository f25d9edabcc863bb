package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/floatpack/rideathon/internal/rideathon"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type ScoreboardEntry struct {
	Rank                int        `json:"rank"`
	TeamID              string     `json:"teamId"`
	Name                string     `json:"name"`
	Color               string     `json:"color"`
	ChallengesCompleted int        `json:"challengesCompleted"`
	DistanceTraveled    float64    `json:"distanceTraveled"`
	DistanceEarned      float64    `json:"distanceEarned"`
	UpdatedAt           *time.Time `json:"updatedAt"`
}

type ScoreboardResponse struct {
	Teams []ScoreboardEntry `json:"teams"`
	// LastUpdated is the oldest of the teams' latest scorecards.
	LastUpdated *time.Time `json:"lastUpdated"`
}

type ScorecardResponse struct {
	ID                  string    `json:"id"`
	TeamID              string    `json:"teamId"`
	ChallengesCompleted int       `json:"challengesCompleted"`
	DistanceTraveled    float64   `json:"distanceTraveled"`
	DistanceEarned      float64   `json:"distanceEarned"`
	CreatedAt           time.Time `json:"createdAt"`
}

func buildScoreboard(ctx context.Context, store Store) (ScoreboardResponse, error) {
	standings, err := store.Standings(ctx)
	if err != nil {
		return ScoreboardResponse{}, err
	}

	resp := ScoreboardResponse{Teams: make([]ScoreboardEntry, 0, len(standings))}
	for i, st := range standings {
		entry := ScoreboardEntry{
			Rank:   i + 1,
			TeamID: st.Team.ID,
			Name:   st.Team.Name,
			Color:  st.Team.Color,
		}
		if sc := st.Scorecard; sc != nil {
			entry.ChallengesCompleted = sc.ChallengesCompleted
			entry.DistanceTraveled = sc.DistanceTraveled
			entry.DistanceEarned = sc.DistanceEarned
			updated := sc.CreatedAt
			entry.UpdatedAt = &updated
		}
		resp.Teams = append(resp.Teams, entry)
	}
	if oldest, ok := rideathon.LastUpdated(standings); ok {
		resp.LastUpdated = &oldest
	}
	return resp, nil
}

func handleScoreboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := buildScoreboard(r.Context(), store)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleScoreHistory(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > maxHistoryLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
				return
			}
			limit = n
		}

		history, err := store.ScorecardHistory(r.Context(), chi.URLParam(r, "teamID"), limit)
		if errors.Is(err, rideathon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := make([]ScorecardResponse, 0, len(history))
		for _, sc := range history {
			resp = append(resp, ScorecardResponse{
				ID:                  sc.ID,
				TeamID:              sc.TeamID,
				ChallengesCompleted: sc.ChallengesCompleted,
				DistanceTraveled:    sc.DistanceTraveled,
				DistanceEarned:      sc.DistanceEarned,
				CreatedAt:           sc.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ScoreboardNotifier returns a callback that publishes the current
// scoreboard to live subscribers.
func ScoreboardNotifier(store Store, broker *Broker, logger *slog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		sb, err := buildScoreboard(ctx, store)
		if err != nil {
			logger.Error("building scoreboard", "error", err)
			return
		}
		broker.Publish(ScoreboardTopic, Event{Type: "scoreboard", Scoreboard: &sb})
	}
}
