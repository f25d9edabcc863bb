package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	store, broker := deps.Store, deps.Broker

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Rideathon API", "/openapi.json", "/docs"))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/login", handleLogin(store))
	r.Get("/api/scoreboard", handleScoreboard(store))
	r.Get("/api/scoreboard/{teamID}/history", handleScoreHistory(store))
	r.Get("/ws/scoreboard", handleScoreboardWS(logger, store, broker))

	// SSE authenticates with a query parameter since EventSource cannot set headers.
	r.Get("/api/events", handleEvents(store, broker))

	// Team routes, Bearer session token.
	r.Group(func(r chi.Router) {
		r.Use(teamAuthMiddleware(store))
		r.Get("/api/me", handleMe())
		r.Get("/api/challenges", handleListChallenges(store))
		r.Get("/api/challenges/{id}", handleGetChallenge(store))
		r.Post("/api/challenges/{id}/start", handleStartChallenge(logger, store, broker))
		r.Post("/api/challenges/{id}/complete", handleCompleteChallenge(logger, store, broker))
		r.Post("/api/challenges/{id}/forfeit", handleForfeitChallenge(logger, store, broker, deps.ForfeitPenalty))
		r.Post("/api/distance", handleRecordDistance(store))
	})

	if deps.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is empty, admin routes are disabled")
		return
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminTokenMiddleware(deps.AdminToken))
		r.Get("/status", handleAdminStatus(store))
		r.Post("/populate", handleAdminPopulate(logger, store))
		r.Post("/clear", handleAdminClear(logger, store))
		r.Post("/modifiers", handleAdminGrantModifier(store))
		r.Post("/offsets", handleAdminGrantOffset(store))
		r.Post("/challenges/{id}/complete", handleAdminCompleteChallenge(logger, store, broker))
		r.Post("/challenges/{id}/forfeit", handleAdminForfeitChallenge(logger, store, broker, deps.ForfeitPenalty))
		r.Post("/scorecards", handleAdminRecompute(logger, deps.Scores))
	})
}
