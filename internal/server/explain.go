package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tahmid/codevault/internal/explain"
	"github.com/tahmid/codevault/internal/handler"
	"github.com/tahmid/codevault/internal/middleware"
)

// maxBodyBytes caps /explain request bodies at 10 MB. Code snippets are
// text; the ceiling exists so a hostile client can't make us buffer a
// gigabyte of "code".
const maxBodyBytes = 10 << 20

// ExplainConfig holds the explanation service's configuration.
type ExplainConfig struct {
	Port           int
	AllowedOrigins []string // CORS allow-list; requests from other origins are rejected
}

// ExplainServer is the standalone explanation service (cmd/explaind).
//
// It is deliberately tiny: one generator, three routes, and a 404. It holds
// no database, no sessions, no cross-request state — every request is
// independent, which is what lets a single long-lived Generator instance
// serve arbitrarily many concurrent requests.
type ExplainServer struct {
	router *chi.Mux
	config ExplainConfig
	logger *slog.Logger
}

// NewExplainServer wires the explanation service's routes.
//
// The Generator is injected by main — the Gemini client in production,
// a mock in tests. The server never constructs its own backend.
func NewExplainServer(cfg ExplainConfig, gen explain.Generator, logger *slog.Logger) *ExplainServer {
	s := &ExplainServer{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(gen)
	return s
}

// setupRoutes configures middleware and handlers.
//
// MIDDLEWARE ORDER:
// CORS runs before routing so disallowed origins are rejected at the
// transport layer, before any handler logic. The body-size cap likewise
// applies to everything, and Recoverer is the catch-all that turns panics
// into 500s instead of killing the process.
func (s *ExplainServer) setupRoutes(gen explain.Generator) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Only origins on the allow-list may call this service with credentials.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(middleware.MaxBytes(maxBodyBytes))

	h := handler.NewExplainHandler(gen, s.logger)

	s.router.Post("/explain", h.HandleExplain)
	s.router.Get("/health", h.HandleHealth)
	s.router.Get("/api-docs", h.HandleAPIDocs)

	// Unknown paths AND known paths with the wrong method both get the same
	// structured 404 body naming the route that missed.
	s.router.NotFound(h.HandleNotFound)
	s.router.MethodNotAllowed(h.HandleNotFound)
}

// Router exposes the configured router — used by tests to drive the full
// middleware-and-routing stack through httptest without opening a port.
func (s *ExplainServer) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown.
// Same graceful-shutdown dance as the snippet server, minus the database.
func (s *ExplainServer) Start() error {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Generation takes up to 30s; the write timeout must outlast it.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("explanation service starting",
			slog.Int("port", s.config.Port),
			slog.Any("allowedOrigins", s.config.AllowedOrigins),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("explanation service stopped gracefully")
	}

	return nil
}
