// Package server sets up the HTTP servers, routers, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and
// routes. There are two servers in this module:
//
//   - Server (this file): the snippet application — auth + snippet CRUD,
//     backed by SQLite, calling the explanation service for enrichment.
//   - ExplainServer (explain.go): the standalone explanation service.
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it testable (create a test
// server without running main), reusable, and keeps main.go minimal.
//
// DEPENDENCY INJECTION FLOW:
// New() is the composition root — the entire dependency chain is assembled
// here:
//
//	sqlite.New → repository implementations
//	explain.NewClient → enrichment generator (HTTP client to explaind)
//	service.NewSnippetService(repo, explainer) → business logic
//	handler.NewSnippetHandler(service) → HTTP
//
// Each layer only receives what it needs: the service gets interfaces, the
// handler gets the service, and nothing below the handler knows about HTTP.
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

	"github.com/tahmid/codevault/internal/auth"
	"github.com/tahmid/codevault/internal/explain"
	"github.com/tahmid/codevault/internal/handler"
	"github.com/tahmid/codevault/internal/middleware"
	sqliteRepo "github.com/tahmid/codevault/internal/repository/sqlite"
	"github.com/tahmid/codevault/internal/service"
)

// Config holds the snippet application's configuration.
// A struct (instead of individual parameters) makes it easy to add options
// without changing function signatures.
type Config struct {
	Port               int
	DBPath             string
	ExplainURL         string // base URL of the explanation service; empty disables enrichment
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the snippet application and all its dependencies.
//
// The Server owns the database connection. When the server shuts down, the
// connection must be closed to flush the WAL and release the file lock —
// handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /auth/github/login     → start the GitHub OAuth flow
//	GET    /auth/github/callback  → complete it, issue the JWT cookie
//	POST   /auth/logout           → clear the JWT cookie
//	GET    /api/me                → current user's profile          [auth]
//	GET    /api/snippets          → list own snippets               [auth]
//	GET    /api/snippets/{id}     → get one snippet                 [auth]
//	POST   /api/snippets          → create (generates explanation)  [auth]
//	PUT    /api/snippets/{id}     → update (may regenerate)         [auth]
//	DELETE /api/snippets/{id}     → delete                          [auth]
//
// MIDDLEWARE ORDER MATTERS — it executes in the order added:
// RequestID → RealIP → Recoverer → request logging → routing.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	s.router.Use(middleware.Logger(s.logger))

	// --- Auth wiring ---
	if s.config.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	authHandler := handler.NewAuthHandler(github, authService, s.logger)

	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	// --- Snippet API wiring ---
	// The explainer is the HTTP client for the explanation service. An empty
	// ExplainURL means enrichment is off — snippets save without
	// explanations rather than failing or blocking.
	var explainer explain.Generator
	if s.config.ExplainURL != "" {
		explainer = explain.NewClient(s.config.ExplainURL)
	} else {
		s.logger.Warn("EXPLAIN_URL not set — snippet explanations are disabled")
	}

	snippetService := service.NewSnippetService(s.db, explainer, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
		r.Post("/snippets", snippetHandler.HandleCreate)
		r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
		r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Snippet writes wait on the explanation service (up to 30s), so the
		// write timeout must comfortably exceed that round trip.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("explainURL", s.config.ExplainURL),
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
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
