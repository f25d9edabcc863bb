package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/floatpack/rideathon/internal/database"
	"github.com/floatpack/rideathon/internal/eventconfig"
	"github.com/floatpack/rideathon/internal/migrations"
	"github.com/floatpack/rideathon/internal/rideathon"
	"github.com/floatpack/rideathon/internal/scorekeeper"
)

const testAdminToken = "let-me-in"

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

const testEvent = `
teams:
  - name: Spokes
    members: [Ana, Ben]
    color: red
    secret_code: spin
  - name: Chainbreakers
    members: [Cy]
    color: blue
    secret_code: gears
challenges:
  - name: Hill climb
    description: Ride to the top of the hill
    latitude: 45.5
    longitude: -122.6
  - name: Selfie
    description: Take a photo at the bridge
    pause_distance: false
`

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) (*SQLiteStore, *fakeClock) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := &fakeClock{now: t0}
	store := NewSQLiteStore(db)
	store.now = clock.Now
	store.bcryptCost = bcrypt.MinCost
	return store, clock
}

// seededStore returns a store populated with testEvent.
func seededStore(t *testing.T) (*SQLiteStore, *fakeClock) {
	t.Helper()
	store, clock := setupStore(t)

	ev, err := eventconfig.ParseBytes([]byte(testEvent))
	if err != nil {
		t.Fatalf("parse event: %v", err)
	}
	if _, err := store.Populate(context.Background(), ev); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return store, clock
}

func mustTeam(t *testing.T, store Store, name string) rideathon.Team {
	t.Helper()
	team, err := store.TeamByName(context.Background(), name)
	if err != nil {
		t.Fatalf("team %q: %v", name, err)
	}
	return team
}

// mustChallenge returns the named challenge bound to team.
func mustChallenge(t *testing.T, store Store, teamID, name string) rideathon.Challenge {
	t.Helper()
	challenges, err := store.ListChallenges(context.Background(), teamID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	for _, c := range challenges {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("challenge %q not found for team %s", name, teamID)
	return rideathon.Challenge{}
}

type testEnv struct {
	store  *SQLiteStore
	clock  *fakeClock
	broker *Broker
	keeper *scorekeeper.Keeper
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, clock := seededStore(t)
	broker := NewBroker()
	logger := discardLogger()
	keeper := scorekeeper.New(store, logger, time.Minute,
		scorekeeper.WithClock(clock.Now),
		scorekeeper.WithNotify(ScoreboardNotifier(store, broker, logger)),
	)

	router := NewRouter(logger, Deps{
		Store:          store,
		Broker:         broker,
		Scores:         keeper,
		AdminToken:     testAdminToken,
		ForfeitPenalty: 5,
	}, nil)

	return &testEnv{store: store, clock: clock, broker: broker, keeper: keeper, router: router}
}

// do sends a request through the router. body is JSON encoded unless it is
// already a string.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, name, code string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", "", LoginRequest{Name: name, SecretCode: code})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", name, w.Code, w.Body.String())
	}
	var resp LoginResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}
