// Package server exposes the question-to-dashboard pipeline over HTTP as a
// small JSON API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dashql/internal/adapter"
	"github.com/leapstack-labs/dashql/internal/compiler"
	"github.com/leapstack-labs/dashql/internal/dashboard"
	"github.com/leapstack-labs/dashql/internal/executor"
	"github.com/leapstack-labs/dashql/internal/history"
)

// Server is the HTTP API server.
type Server struct {
	db        adapter.Adapter
	executor  *executor.Executor
	compiler  *compiler.Compiler
	generator *dashboard.Generator
	grafana   *dashboard.Client
	history   *history.Store
	port      int
	logger    *slog.Logger
}

// Config holds the collaborators the server serves. Compiler, Grafana and
// History may be nil; the corresponding endpoints degrade gracefully.
type Config struct {
	DB        adapter.Adapter
	Executor  *executor.Executor
	Compiler  *compiler.Compiler
	Generator *dashboard.Generator
	Grafana   *dashboard.Client
	History   *history.Store
	Port      int
	Logger    *slog.Logger
}

// New creates a new API server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		db:        cfg.DB,
		executor:  cfg.Executor,
		compiler:  cfg.Compiler,
		generator: cfg.Generator,
		grafana:   cfg.Grafana,
		history:   cfg.History,
		port:      cfg.Port,
		logger:    logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/query", s.handleQuery)
		r.Get("/tables", s.handleTables)
		r.Get("/tables/{name}/sample", s.handleTableSample)
		r.Get("/history", s.handleHistory)
	})
	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
