// Package main is the entry point for the explanation service.
//
// The main package stays minimal — its job is to:
// 1. Read configuration (env vars, optionally a .env file)
// 2. Create dependencies (logger, Gemini client)
// 3. Start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, internal/explain). This separation keeps the app
// testable and its components reusable.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tahmid/codevault/internal/explain/gemini"
	"github.com/tahmid/codevault/internal/server"
)

func main() {
	// Load .env if present — real environment variables win over file
	// values, so this only fills gaps in local development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 3001
	if portStr := os.Getenv("EXPLAIN_PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid EXPLAIN_PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// CORS allow-list: comma-separated origins. The defaults cover the Vite
	// dev server and a local production build.
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	// The API key is required — there is deliberately no default. A missing
	// key stops the process here, loudly, instead of producing 500s later.
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}

	gen, err := gemini.New(context.Background(), apiKey, logger)
	if err != nil {
		logger.Error("failed to create Gemini client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.NewExplainServer(server.ExplainConfig{
		Port:           port,
		AllowedOrigins: origins,
	}, gen, logger)

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
