package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type challengePath struct {
	ID string `path:"id"`
}

type teamPath struct {
	TeamID string `path:"teamID"`
	Limit  int    `query:"limit"`
}

type eventsQuery struct {
	Token string `query:"token"`
}

type adminForfeitInput struct {
	ID string `path:"id"`
	AdminForfeitRequest
}

type operation struct {
	method, path, summary, description string

	req  any
	resp any
	// status of resp; 200 when zero.
	status  int
	errors  []int
	content string
}

var operations = []operation{
	{method: http.MethodGet, path: "/healthz", summary: "Health check",
		description: "Returns the health status of backend dependencies.",
		resp:        map[string]any{}, errors: []int{http.StatusServiceUnavailable}},
	{method: http.MethodGet, path: "/metrics", summary: "Prometheus metrics",
		content: "text/plain"},

	{method: http.MethodPost, path: "/api/login", summary: "Team login",
		description: "Exchanges a team name and secret code for a session token.",
		req:         LoginRequest{}, resp: LoginResponse{},
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized}},
	{method: http.MethodGet, path: "/api/me", summary: "Current team",
		description: "Returns the team behind the Bearer token.",
		resp:        TeamResponse{}, errors: []int{http.StatusUnauthorized}},
	{method: http.MethodGet, path: "/api/events", summary: "SSE event stream",
		description: "Server-Sent Events for the team's challenge transitions. Pass token as query parameter.",
		req:         eventsQuery{}, content: "text/event-stream"},

	{method: http.MethodGet, path: "/api/challenges", summary: "List challenges",
		description: "Returns the team's challenges with their status. Requires Bearer token.",
		resp:        []ChallengeResponse{}, errors: []int{http.StatusUnauthorized}},
	{method: http.MethodGet, path: "/api/challenges/{id}", summary: "Get challenge",
		description: "Returns a challenge with the modifiers and offsets it spawned. Requires Bearer token.",
		req:         challengePath{}, resp: AttemptResponse{},
		errors: []int{http.StatusUnauthorized, http.StatusNotFound}},
	{method: http.MethodPost, path: "/api/challenges/{id}/start", summary: "Start challenge",
		description: "Moves an available challenge to active. Pausing challenges stop distance credit until they end.",
		req:         challengePath{}, resp: AttemptResponse{},
		errors: []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/challenges/{id}/complete", summary: "Complete challenge",
		description: "Finishes an active challenge.",
		req:         challengePath{}, resp: AttemptResponse{},
		errors: []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/challenges/{id}/forfeit", summary: "Forfeit challenge",
		description: "Abandons an active challenge and records the forfeit penalty.",
		req:         challengePath{}, resp: AttemptResponse{},
		errors: []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/distance", summary: "Record distance",
		description: "Records an incremental distance sample for the team.",
		req:         DistanceRequest{}, resp: DistanceResponse{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized}},

	{method: http.MethodGet, path: "/api/scoreboard", summary: "Scoreboard",
		description: "Latest scorecard per team, ranked by challenges completed then distance earned.",
		resp:        ScoreboardResponse{}},
	{method: http.MethodGet, path: "/api/scoreboard/{teamID}/history", summary: "Scorecard history",
		description: "Scorecards computed for a team, newest first.",
		req:         teamPath{}, resp: []ScorecardResponse{},
		errors: []int{http.StatusBadRequest, http.StatusNotFound}},
	{method: http.MethodGet, path: "/ws/scoreboard", summary: "Live scoreboard",
		description: "Upgrades to a WebSocket that receives the scoreboard after every recomputation.",
		status:      http.StatusSwitchingProtocols, content: "text/plain"},

	{method: http.MethodGet, path: "/api/admin/status", summary: "Event status",
		description: "Row counts per collection. Requires admin token.",
		resp:        Counts{}, errors: []int{http.StatusUnauthorized}},
	{method: http.MethodPost, path: "/api/admin/populate", summary: "Populate event",
		description: "Creates teams and one challenge per team and template from a YAML event document.",
		resp:        PopulateResult{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/admin/clear", summary: "Clear event",
		description: "Deletes all event data. Requires admin token.",
		status:      http.StatusNoContent, errors: []int{http.StatusUnauthorized}},
	{method: http.MethodPost, path: "/api/admin/modifiers", summary: "Grant modifier",
		description: "Creates a standalone multiplier for a team.",
		req:         GrantModifierRequest{}, resp: ModifierResponse{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound}},
	{method: http.MethodPost, path: "/api/admin/offsets", summary: "Grant offset",
		description: "Creates a standalone distance offset for a team.",
		req:         GrantOffsetRequest{}, resp: OffsetResponse{}, status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound}},
	{method: http.MethodPost, path: "/api/admin/challenges/{id}/complete", summary: "Complete challenge as admin",
		description: "Finishes an active challenge on behalf of its team.",
		req:         challengePath{}, resp: AttemptResponse{},
		errors: []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/admin/challenges/{id}/forfeit", summary: "Forfeit challenge as admin",
		description: "Forfeits an active challenge with an optional penalty override and bonus records.",
		req:         adminForfeitInput{}, resp: AttemptResponse{},
		errors: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusConflict}},
	{method: http.MethodPost, path: "/api/admin/scorecards", summary: "Recompute scorecards",
		description: "Appends a fresh scorecard for every team.",
		resp:        RecomputeResponse{}, errors: []int{http.StatusUnauthorized}},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Rideathon API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Challenge lifecycle and scoring for a team rideathon.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}

		status := op.status
		if status == 0 {
			status = http.StatusOK
		}
		if op.content != "" {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType(op.content))
		} else {
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(status))
		}
		for _, code := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(code))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
