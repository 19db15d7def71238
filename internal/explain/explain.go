// Package explain defines the explanation-generation contract: the request and
// response shapes of the explanation service, and the Generator interface that
// backends (and the HTTP client) implement.
//
// WHY AN INTERFACE HERE?
// The snippet service and the HTTP handler both need "something that turns
// (code, language) into markdown". They should not care whether that something
// is the real Gemini backend, an HTTP client talking to a remote explaind
// process, or a mock in tests. Defining the interface next to the shared types
// keeps every consumer decoupled from the concrete backend.
package explain

import (
	"context"
	"errors"
	"time"
)

// Request is the body of POST /explain.
// Both fields are required; the handler rejects the request before the
// backend is ever invoked if either is missing or empty.
type Request struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Metadata describes a generated explanation. All fields are deterministic
// functions of the input (plus the generation time) — unlike the explanation
// text itself, which comes from a generative model and varies between calls.
type Metadata struct {
	Language   string    `json:"language"`
	CodeLength int       `json:"codeLength"`
	Timestamp  time.Time `json:"timestamp"`
}

// Response is the success body of POST /explain.
type Response struct {
	Explanation string   `json:"explanation"`
	Metadata    Metadata `json:"metadata"`
}

// Generator produces a markdown explanation for a piece of code.
//
// Implementations make exactly one attempt — no internal retry or backoff.
// Every failure (transport error, upstream API error, malformed response)
// surfaces as a *GenerationError so callers can match it with
// errors.Is(err, ErrGeneration).
type Generator interface {
	Generate(ctx context.Context, code, language string) (string, error)
}

// ErrGeneration is the sentinel all generation failures unwrap to.
var ErrGeneration = errors.New("explanation generation failed")

// GenerationError wraps an upstream failure from the generative backend.
//
// The upstream detail (Message) is for server-side logs only — HTTP handlers
// must never echo it to clients, since it can contain API endpoints, quota
// information, or other internals.
type GenerationError struct {
	Message string // upstream error detail
}

func (e *GenerationError) Error() string {
	return "explain: generation failed: " + e.Message
}

func (e *GenerationError) Unwrap() error {
	return ErrGeneration
}

// Generation wraps an upstream error into a *GenerationError.
func Generation(err error) *GenerationError {
	return &GenerationError{Message: err.Error()}
}
