package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/floatpack/rideathon/internal/rideathon"
)

type LoginRequest struct {
	Name       string `json:"name"`
	SecretCode string `json:"secretCode"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	Team  TeamResponse `json:"team"`
}

type TeamResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
	Color   string   `json:"color"`
}

func toTeamResponse(t rideathon.Team) TeamResponse {
	members := t.Members
	if members == nil {
		members = []string{}
	}
	return TeamResponse{ID: t.ID, Name: t.Name, Members: members, Color: t.Color}
}

func handleLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || req.SecretCode == "" {
			writeError(w, http.StatusBadRequest, "name and secretCode are required")
			return
		}

		team, err := store.TeamByName(r.Context(), req.Name)
		if errors.Is(err, rideathon.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid team name or secret code")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(team.SecretHash), []byte(req.SecretCode)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid team name or secret code")
			return
		}

		token, err := store.CreateTeamSession(r.Context(), team.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token, Team: toTeamResponse(team)})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toTeamResponse(teamFrom(r)))
	}
}
