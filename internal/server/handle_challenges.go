package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/floatpack/rideathon/internal/metrics"
	"github.com/floatpack/rideathon/internal/rideathon"
)

type ChallengeResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	PausesDistance bool       `json:"pausesDistance"`
	Lat            float64    `json:"lat"`
	Lng            float64    `json:"lng"`
	Status         string     `json:"status"`
	StartedAt      *time.Time `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt"`
	TeamID         string     `json:"teamId,omitempty"`
}

type ModifierResponse struct {
	ID          string     `json:"id"`
	Multiplier  float64    `json:"multiplier"`
	CreatorID   string     `json:"creatorId"`
	ReceiverID  string     `json:"receiverId"`
	ChallengeID string     `json:"challengeId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

type OffsetResponse struct {
	ID          string    `json:"id"`
	Distance    float64   `json:"distance"`
	CreatorID   string    `json:"creatorId"`
	ReceiverID  string    `json:"receiverId"`
	ChallengeID string    `json:"challengeId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AttemptResponse struct {
	Challenge ChallengeResponse  `json:"challenge"`
	Modifiers []ModifierResponse `json:"modifiers"`
	Offsets   []OffsetResponse   `json:"offsets"`
}

func toChallengeResponse(c rideathon.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		PausesDistance: c.PausesDistance,
		Lat:            c.Lat,
		Lng:            c.Lng,
		Status:         string(c.Status),
		StartedAt:      c.StartedAt,
		EndedAt:        c.EndedAt,
		TeamID:         c.TeamID,
	}
}

func toModifierResponse(m rideathon.Modifier) ModifierResponse {
	return ModifierResponse{
		ID:          m.ID,
		Multiplier:  m.Multiplier,
		CreatorID:   m.CreatorID,
		ReceiverID:  m.ReceiverID,
		ChallengeID: m.ChallengeID,
		CreatedAt:   m.CreatedAt,
		StartsAt:    m.StartsAt,
		EndsAt:      m.EndsAt,
	}
}

func toOffsetResponse(o rideathon.Offset) OffsetResponse {
	return OffsetResponse{
		ID:          o.ID,
		Distance:    o.Distance,
		CreatorID:   o.CreatorID,
		ReceiverID:  o.ReceiverID,
		ChallengeID: o.ChallengeID,
		CreatedAt:   o.CreatedAt,
	}
}

func toAttemptResponse(a rideathon.Attempt) AttemptResponse {
	resp := AttemptResponse{
		Challenge: toChallengeResponse(a.Challenge),
		Modifiers: make([]ModifierResponse, 0, len(a.Modifiers)),
		Offsets:   make([]OffsetResponse, 0, len(a.Offsets)),
	}
	for _, m := range a.Modifiers {
		resp.Modifiers = append(resp.Modifiers, toModifierResponse(m))
	}
	for _, o := range a.Offsets {
		resp.Offsets = append(resp.Offsets, toOffsetResponse(o))
	}
	return resp
}

func handleListChallenges(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		challenges, err := store.ListChallenges(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := make([]ChallengeResponse, 0, len(challenges))
		for _, c := range challenges {
			resp = append(resp, toChallengeResponse(c))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGetChallenge(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		a, err := store.Attempt(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, rideathon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "challenge not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		// Other teams' challenges are hidden rather than forbidden.
		if a.Challenge.TeamID != "" && a.Challenge.TeamID != team.ID {
			writeError(w, http.StatusNotFound, "challenge not found")
			return
		}

		writeJSON(w, http.StatusOK, toAttemptResponse(a))
	}
}

func handleStartChallenge(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)
		runTransition(w, r, logger, broker, "start", func(ctx context.Context, id string) (rideathon.Attempt, error) {
			return store.StartChallenge(ctx, id, team.ID)
		})
	}
}

func handleCompleteChallenge(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)
		runTransition(w, r, logger, broker, "complete", func(ctx context.Context, id string) (rideathon.Attempt, error) {
			return store.CompleteChallenge(ctx, id, team.ID)
		})
	}
}

func handleForfeitChallenge(logger *slog.Logger, store Store, broker *Broker, penalty float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)
		runTransition(w, r, logger, broker, "forfeit", func(ctx context.Context, id string) (rideathon.Attempt, error) {
			return store.ForfeitChallenge(ctx, id, team.ID, rideathon.WithFailurePenalty(penalty))
		})
	}
}

// runTransition applies fn to the challenge named in the URL, records the
// outcome and notifies the owning team.
func runTransition(w http.ResponseWriter, r *http.Request, logger *slog.Logger, broker *Broker, kind string,
	fn func(ctx context.Context, challengeID string) (rideathon.Attempt, error),
) {
	id := chi.URLParam(r, "id")

	a, err := fn(r.Context(), id)
	if err != nil {
		result := "error"
		if errors.Is(err, rideathon.ErrInvalidTransition) || errors.Is(err, rideathon.ErrTeamMismatch) ||
			errors.Is(err, rideathon.ErrNotFound) || errors.Is(err, ErrConflict) {
			result = "rejected"
		}
		metrics.Transitions.WithLabelValues(kind, result).Inc()
		writeStoreError(w, logger, err)
		return
	}
	metrics.Transitions.WithLabelValues(kind, "ok").Inc()

	for _, anomaly := range a.Anomalies {
		metrics.PauseAnomalies.Inc()
		logger.Warn("challenge transition anomaly",
			"challenge_id", a.Challenge.ID,
			"team_id", a.Challenge.TeamID,
			"transition", kind,
			"error", anomaly,
		)
	}

	logger.Info("challenge transition",
		"challenge_id", a.Challenge.ID,
		"team_id", a.Challenge.TeamID,
		"status", a.Challenge.Status,
	)

	broker.Publish(a.Challenge.TeamID, Event{
		Type:        "challenge_" + string(a.Challenge.Status),
		ChallengeID: a.Challenge.ID,
		Status:      string(a.Challenge.Status),
	})

	writeJSON(w, http.StatusOK, toAttemptResponse(a))
}
