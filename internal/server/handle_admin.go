package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/floatpack/rideathon/internal/eventconfig"
	"github.com/floatpack/rideathon/internal/rideathon"
)

type GrantModifierRequest struct {
	Multiplier float64    `json:"multiplier"`
	CreatorID  string     `json:"creatorId,omitempty"`
	ReceiverID string     `json:"receiverId"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
}

type GrantOffsetRequest struct {
	Distance   float64 `json:"distance"`
	CreatorID  string  `json:"creatorId,omitempty"`
	ReceiverID string  `json:"receiverId"`
}

type AdminForfeitRequest struct {
	// Penalty overrides the configured forfeit penalty when set.
	Penalty   *float64               `json:"penalty,omitempty"`
	Offsets   []GrantOffsetRequest   `json:"offsets,omitempty"`
	Modifiers []GrantModifierRequest `json:"modifiers,omitempty"`
}

type RecomputeResponse struct {
	Scorecards int `json:"scorecards"`
}

func (req GrantModifierRequest) validate() error {
	if req.Multiplier < 0 || math.IsNaN(req.Multiplier) || math.IsInf(req.Multiplier, 0) {
		return errors.New("multiplier must be a non-negative number")
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return errors.New("endsAt must be after startsAt")
	}
	return nil
}

func (req GrantModifierRequest) modifier() rideathon.Modifier {
	m := rideathon.Modifier{
		Multiplier: req.Multiplier,
		CreatorID:  req.CreatorID,
		ReceiverID: req.ReceiverID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	}
	if m.CreatorID == "" {
		m.CreatorID = m.ReceiverID
	}
	return m
}

func (req GrantOffsetRequest) validate() error {
	if math.IsNaN(req.Distance) || math.IsInf(req.Distance, 0) {
		return errors.New("distance must be a finite number")
	}
	return nil
}

func (req GrantOffsetRequest) offset() rideathon.Offset {
	o := rideathon.Offset{
		Distance:   req.Distance,
		CreatorID:  req.CreatorID,
		ReceiverID: req.ReceiverID,
	}
	if o.CreatorID == "" {
		o.CreatorID = o.ReceiverID
	}
	return o
}

func handleAdminStatus(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.Counts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

// handleAdminPopulate accepts an event document in YAML.
func handleAdminPopulate(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		ev, err := eventconfig.Parse(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := store.Populate(r.Context(), ev)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}

		logger.Info("event populated", "teams", res.Teams, "challenges", res.Challenges)
		writeJSON(w, http.StatusCreated, res)
	}
}

func handleAdminClear(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context()); err != nil {
			writeStoreError(w, logger, err)
			return
		}
		logger.Warn("event data cleared")
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdminGrantModifier(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GrantModifierRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ReceiverID = strings.TrimSpace(req.ReceiverID)
		if req.ReceiverID == "" {
			writeError(w, http.StatusBadRequest, "receiverId is required")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		m, err := store.GrantModifier(r.Context(), req.modifier())
		if errors.Is(err, rideathon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, toModifierResponse(m))
	}
}

func handleAdminGrantOffset(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GrantOffsetRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ReceiverID = strings.TrimSpace(req.ReceiverID)
		if req.ReceiverID == "" {
			writeError(w, http.StatusBadRequest, "receiverId is required")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		o, err := store.GrantOffset(r.Context(), req.offset())
		if errors.Is(err, rideathon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, toOffsetResponse(o))
	}
}

func handleAdminCompleteChallenge(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runTransition(w, r, logger, broker, "complete", func(ctx context.Context, id string) (rideathon.Attempt, error) {
			return store.CompleteChallenge(ctx, id, "")
		})
	}
}

// handleAdminForfeitChallenge forfeits on behalf of the bound team, with an
// optional penalty override and bonus records attached to the challenge.
func handleAdminForfeitChallenge(logger *slog.Logger, store Store, broker *Broker, penalty float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminForfeitRequest
		if r.ContentLength != 0 {
			if err := readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		if req.Penalty != nil {
			if *req.Penalty < 0 || math.IsNaN(*req.Penalty) || math.IsInf(*req.Penalty, 0) {
				writeError(w, http.StatusBadRequest, "penalty must be a non-negative number")
				return
			}
			penalty = *req.Penalty
		}

		opts := []rideathon.ForfeitOption{rideathon.WithFailurePenalty(penalty)}
		for _, o := range req.Offsets {
			if err := o.validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			opts = append(opts, rideathon.WithBonusOffsets(o.offset()))
		}
		for _, m := range req.Modifiers {
			if err := m.validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			opts = append(opts, rideathon.WithBonusModifiers(m.modifier()))
		}

		runTransition(w, r, logger, broker, "forfeit", func(ctx context.Context, id string) (rideathon.Attempt, error) {
			return store.ForfeitChallenge(ctx, id, "", opts...)
		})
	}
}

func handleAdminRecompute(logger *slog.Logger, scores Recomputer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scores == nil {
			writeError(w, http.StatusServiceUnavailable, "scorekeeper not running")
			return
		}

		n, err := scores.RecomputeAll(r.Context())
		if err != nil {
			logger.Error("recomputing scorecards", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, RecomputeResponse{Scorecards: n})
	}
}
