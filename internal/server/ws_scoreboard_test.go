package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestScoreboardWebSocket(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scoreboard"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var initial Event
	if err := wsjson.Read(ctx, conn, &initial); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if initial.Type != "scoreboard" || initial.Scoreboard == nil || len(initial.Scoreboard.Teams) != 2 {
		t.Fatalf("unexpected initial message %+v", initial)
	}
	if initial.Scoreboard.LastUpdated != nil {
		t.Errorf("expected no lastUpdated before scoring, got %v", initial.Scoreboard.LastUpdated)
	}

	if _, err := env.keeper.RecomputeAll(ctx); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	var update Event
	if err := wsjson.Read(ctx, conn, &update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Scoreboard == nil || update.Scoreboard.LastUpdated == nil {
		t.Fatalf("expected scored board, got %+v", update)
	}
	for _, team := range update.Scoreboard.Teams {
		if team.UpdatedAt == nil {
			t.Errorf("team %s has no scorecard after recompute", team.Name)
		}
	}
}
