package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/floatpack/rideathon/internal/rideathon"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeStoreError maps domain errors to HTTP statuses. Anything unexpected is
// logged and reported as a 500.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var te *rideathon.TransitionError
	switch {
	case errors.As(err, &te):
		writeError(w, http.StatusConflict, te.Error())
	case errors.Is(err, rideathon.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rideathon.ErrTeamMismatch):
		writeError(w, http.StatusForbidden, "challenge belongs to another team")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
