package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Recomputer refreshes every team's scorecard on demand.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Store  Store
	Broker *Broker
	Scores Recomputer

	// AdminToken guards /api/admin. Admin routes are disabled when empty.
	AdminToken     string
	ForfeitPenalty float64
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New builds the HTTP server. mount, when non-nil, may attach extra
// infrastructure routes such as health checks.
func New(addr string, logger *slog.Logger, deps Deps, mount func(chi.Router)) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(logger, deps, mount),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func NewRouter(logger *slog.Logger, deps Deps, mount func(chi.Router)) chi.Router {
	if deps.Broker == nil {
		deps.Broker = NewBroker()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)

	if mount != nil {
		mount(r)
	}
	addRoutes(r, logger, deps)
	return r
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
