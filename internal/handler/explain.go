package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tahmid/codevault/internal/explain"
)

// Service identity reported by /health and /api-docs.
const (
	ServiceName    = "explanation-service"
	ServiceVersion = "1.0.0"
)

// ExplainHandler serves the explanation service's HTTP surface.
//
// STATELESSNESS:
// The handler holds exactly two things: the generator and a logger. There is
// no cache, no per-request bookkeeping, no cross-request memory. Two
// identical requests are two independent calls to the backend — the model is
// generative, so they may well return different text.
//
// DEPENDENCY INJECTION:
// The generator is an interface (explain.Generator), injected at
// construction. In production it's the Gemini client; in tests it's a mock.
// The handler never knows which.
type ExplainHandler struct {
	gen    explain.Generator
	logger *slog.Logger
}

// NewExplainHandler creates an ExplainHandler.
func NewExplainHandler(gen explain.Generator, logger *slog.Logger) *ExplainHandler {
	return &ExplainHandler{
		gen:    gen,
		logger: logger,
	}
}

// explainError is the error body shape of the explanation endpoints.
// Unlike the snippet API's ErrorResponse, it carries an optional timestamp —
// the shape clients of this service already depend on.
type explainError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// HandleExplain generates an explanation for a code snippet.
//
// HTTP: POST /explain
// REQUEST BODY: {"code": "print('hi')", "language": "python"}
//
// RESPONSES:
//
//	200 {"explanation": "## Overview\n...", "metadata": {"language": "python", "codeLength": 11, "timestamp": "..."}}
//	400 {"error": "Missing required fields", "message": "Both code and language are required"}
//	500 {"error": "Internal server error", "message": "Failed to generate explanation", "timestamp": "..."}
//
// VALIDATION BEFORE DELEGATION:
// Missing or empty fields are rejected before the backend is touched. A
// malformed request must never cost us a model call.
//
// ERROR OPACITY:
// On backend failure the client gets a fixed generic message. The upstream
// detail (API errors, quota messages, endpoints) goes to the server log
// only — it is not the caller's business and may leak internals.
func (h *ExplainHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	var req explain.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid explain request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, explainError{
			Error:   "Missing required fields",
			Message: "Both code and language are required",
		})
		return
	}

	if req.Code == "" || req.Language == "" {
		writeJSON(w, http.StatusBadRequest, explainError{
			Error:   "Missing required fields",
			Message: "Both code and language are required",
		})
		return
	}

	explanation, err := h.gen.Generate(r.Context(), req.Code, req.Language)
	if err != nil {
		h.logger.Error("explanation generation failed",
			slog.String("language", req.Language),
			slog.Int("codeLength", len(req.Code)),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, explainError{
			Error:     "Internal server error",
			Message:   "Failed to generate explanation",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, explain.Response{
		Explanation: explanation,
		Metadata: explain.Metadata{
			Language:   req.Language,
			CodeLength: len(req.Code),
			Timestamp:  time.Now().UTC(),
		},
	})
}

// HandleHealth reports liveness.
//
// HTTP: GET /health
//
// Always 200 while the process is up. Deliberately does NOT probe the
// generative backend — a flapping upstream must not make the load balancer
// recycle an otherwise healthy process.
func (h *ExplainHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// HandleAPIDocs returns a static JSON description of the service.
//
// HTTP: GET /api-docs
//
// No business logic — this is documentation for humans poking the service
// with curl, kept in code so it can't drift from the routes.
func (h *ExplainHandler) HandleAPIDocs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "AI Explanation Service",
		"version": ServiceVersion,
		"endpoints": map[string]string{
			"GET /health":   "Health check endpoint",
			"POST /explain": "Generate AI explanation for code",
			"GET /api-docs": "API documentation",
		},
		"POST /explain": map[string]any{
			"description": "Generate AI-powered explanation for code snippets",
			"requestBody": map[string]string{
				"code":     "string (required) - The code to explain",
				"language": "string (required) - Programming language of the code",
			},
			"response": map[string]any{
				"explanation": "string - Generated explanation in markdown format",
				"metadata": map[string]string{
					"language":   "string - Programming language",
					"codeLength": "number - Length of input code",
					"timestamp":  "string - ISO timestamp",
				},
			},
		},
	})
}

// HandleNotFound is the catch-all for unknown routes and methods.
// The message names the method and path that missed, e.g.
// "Route GET /frobnicate not found".
func (h *ExplainHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, explainError{
		Error:   "Not found",
		Message: fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
	})
}
