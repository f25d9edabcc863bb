package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/floatpack/rideathon/internal/metrics"
)

const wsWriteTimeout = 5 * time.Second

// handleScoreboardWS streams the scoreboard over a websocket: once on
// connect, then after every recomputation. Client messages are ignored.
func handleScoreboardWS(logger *slog.Logger, store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")

		metrics.ScoreboardSubscribers.Inc()
		defer metrics.ScoreboardSubscribers.Dec()

		ch := broker.Subscribe(ScoreboardTopic)
		defer broker.Unsubscribe(ScoreboardTopic, ch)

		ctx := conn.CloseRead(r.Context())

		sb, err := buildScoreboard(ctx, store)
		if err != nil {
			logger.Error("building scoreboard", "error", err)
			return
		}
		if err := writeWithTimeout(ctx, func(ctx context.Context) error {
			return wsjson.Write(ctx, conn, Event{Type: "scoreboard", Scoreboard: &sb})
		}); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				if err := writeWithTimeout(ctx, func(ctx context.Context) error {
					return conn.Write(ctx, websocket.MessageText, data)
				}); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

func writeWithTimeout(ctx context.Context, write func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return write(ctx)
}
