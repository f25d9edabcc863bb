package server

import (
	"math"
	"net/http"
	"time"

	"github.com/floatpack/rideathon/internal/rideathon"
)

// DistanceRequest reports distance ridden since the previous report. The
// sample is stamped on receipt so that it falls under whatever modifiers are
// in force right now.
type DistanceRequest struct {
	Distance float64 `json:"distance"`
}

type DistanceResponse struct {
	TeamID   string    `json:"teamId"`
	Distance float64   `json:"distance"`
	At       time.Time `json:"at"`
}

func handleRecordDistance(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team := teamFrom(r)

		var req DistanceRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Distance < 0 || math.IsNaN(req.Distance) || math.IsInf(req.Distance, 0) {
			writeError(w, http.StatusBadRequest, "distance must be a non-negative number")
			return
		}

		sample, err := store.RecordDistance(r.Context(), rideathon.DistanceSample{TeamID: team.ID, Distance: req.Distance})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, DistanceResponse{
			TeamID:   sample.TeamID,
			Distance: sample.Distance,
			At:       sample.At,
		})
	}
}
