// Package gemini implements explain.Generator using Google's Gemini API
// via the official google.golang.org/genai client.
//
// WHY A SUBPACKAGE?
// The parent package (explain) defines the interface and shared types, the
// subpackage provides one concrete backend. If we ever add an OpenAI or
// Anthropic backend, it gets its own sibling package and nothing upstream
// changes.
//
// DESIGN CONSTRAINTS:
//   - Single attempt per call. The service's contract is "report each failure
//     once, synchronously" — retrying a generative model hides cost and
//     latency from the caller, so we don't.
//   - A 30s ceiling on the outbound call. Generation can take seconds; it
//     must not take forever.
//   - The API key is required configuration. There is no embedded fallback
//     key — construction fails loudly without one.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	genai "google.golang.org/genai"

	"github.com/tahmid/codevault/internal/explain"
)

// defaultModel is the Gemini model used for explanations. Flash models are
// fast and cheap — explanation quality does not need a frontier model.
const defaultModel = "gemini-2.0-flash"

// generateTimeout caps a single outbound generation call.
const generateTimeout = 30 * time.Second

// COMPILE-TIME INTERFACE CHECK:
// Verifies that *Client implements explain.Generator. If a method is renamed
// or a signature drifts, the compiler errors here instead of at a distant
// call site.
var _ explain.Generator = (*Client)(nil)

// Client talks to the Gemini generative-text API.
//
// One Client is created at startup and shared by all requests. The underlying
// genai client is safe for concurrent use, and the Client itself holds no
// per-request state.
type Client struct {
	cli    *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a Gemini-backed explanation generator.
//
// The apiKey is mandatory — we deliberately do NOT fall back to a default or
// an implicit environment lookup. A missing key should stop the process at
// startup, not surface as a confusing 500 on the first request.
func New(ctx context.Context, apiKey string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}

	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Client{
		cli:    cli,
		model:  defaultModel,
		logger: logger,
	}, nil
}

// Generate produces a markdown explanation for the given code.
//
// The prompt embeds the code verbatim in a fenced block tagged with the
// language, and asks for five fixed sections (see buildPrompt). The response
// text is returned as-is — no post-processing, no caching, no deduplication.
// Each call is fully independent.
func (c *Client) Generate(ctx context.Context, code, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	prompt := buildPrompt(code, language)

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", explain.Generation(err)
	}

	// A response with no candidates or no parts means the model returned
	// nothing usable — treat it the same as a transport failure.
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", explain.Generation(errors.New("empty response from model"))
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", explain.Generation(errors.New("response missing text"))
	}

	c.logger.Debug("explanation generated",
		slog.String("language", language),
		slog.Int("codeLength", len(code)),
		slog.Int("explanationLength", len(text)),
	)

	return text, nil
}
