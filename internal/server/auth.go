package server

import (
	"net/http"
	"strings"

	"github.com/floatpack/rideathon/internal/rideathon"
)

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func teamFromRequest(r *http.Request, store Store) (rideathon.Team, error) {
	token, ok := bearerToken(r)
	if !ok {
		return rideathon.Team{}, errNoSession
	}
	return store.TeamFromSession(r.Context(), token)
}
