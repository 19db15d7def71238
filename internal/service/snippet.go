// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// WHY A SEPARATE SERVICE LAYER?
// Without it, handlers do everything: parse HTTP, validate data, call the
// database, format responses. With it, business rules are plain Go function
// calls — testable without HTTP, reusable from a CLI or background job, and
// ignorant of SQL.
//
// This service has one rule the others don't: EXPLANATION ENRICHMENT.
// Whenever a snippet's code or language is set or changed, the service asks
// the explanation service for fresh markdown before completing the write.
// Enrichment is strictly best-effort — if generation fails, the write still
// succeeds with a sentinel string in place of the explanation. A flaky AI
// backend must never block a user from saving their code.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid/codevault/internal/apperror"
	"github.com/tahmid/codevault/internal/explain"
	"github.com/tahmid/codevault/internal/model"
	"github.com/tahmid/codevault/internal/repository"
)

// Validation constants. Named constants instead of magic numbers — easy to
// find, self-documenting, referenceable in error messages.
const (
	MaxTitleLength    = 100
	MaxCodeLength     = 100000 // ~100KB of code
	MaxLanguageLength = 50
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// FailedExplanation is the sentinel stored when explanation generation
// fails during a snippet write. The write itself always proceeds —
// availability over completeness for the enrichment feature.
const FailedExplanation = "AI explanation generation failed."

// SnippetService handles business logic for code snippets.
//
// The explainer is an explain.Generator — in production an explain.Client
// pointed at the explaind process, in tests a mock. It may be nil, which
// disables enrichment entirely (snippets are saved without explanations).
type SnippetService struct {
	repo      repository.SnippetRepository
	explainer explain.Generator
	logger    *slog.Logger
}

// NewSnippetService creates a SnippetService.
// The caller decides WHICH repository and explainer implementation to
// inject — SQLite and the HTTP client in production, mocks in tests.
func NewSnippetService(repo repository.SnippetRepository, explainer explain.Generator, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:      repo,
		explainer: explainer,
		logger:    logger,
	}
}

// Create validates and saves a new snippet owned by userID, generating its
// explanation along the way.
//
// The method accepts primitives, not HTTP types — the service has zero
// knowledge of HTTP, and returns domain errors (apperror.*) that the
// handler translates to status codes.
func (s *SnippetService) Create(ctx context.Context, userID, title, code, language string) (*model.Snippet, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "owner is required")
	}

	title = strings.TrimSpace(title)
	language = strings.TrimSpace(language)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
	}
	if code == "" {
		return nil, apperror.ValidationFailed("code", "snippet code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	if language == "" {
		return nil, apperror.ValidationFailed("language", "snippet language is required")
	}
	if len(language) > MaxLanguageLength {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("language must be %d characters or less", MaxLanguageLength))
	}

	snippet := &model.Snippet{
		Title:    title,
		Code:     code,
		Language: language,
		UserID:   userID,
	}

	// Enrichment happens BEFORE the write so the stored row already carries
	// its explanation (or the sentinel). The repo fills ID and timestamps.
	snippet.Explanation = s.generateExplanation(ctx, code, language)

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
		slog.String("language", snippet.Language),
	)

	return snippet, nil
}

// GetByID retrieves a snippet, enforcing ownership.
// Returns apperror.ErrNotFound if it doesn't exist and apperror.ErrForbidden
// if it belongs to someone else.
func (s *SnippetService) GetByID(ctx context.Context, userID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if snippet.UserID != userID {
		return nil, apperror.Forbidden("you do not own this snippet")
	}

	return snippet, nil
}

// List retrieves the user's snippets with pagination, newest first.
// The limit is clamped to a sane range so callers can't request a million rows.
func (s *SnippetService) List(ctx context.Context, userID string, limit, offset int) ([]model.Snippet, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "owner is required")
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, repository.ListOptions{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update replaces a snippet's title, code, and language, enforcing ownership.
//
// REGENERATION INVARIANT:
// If code or language changed, the cached explanation is stale — it describes
// code that no longer exists. So the service regenerates it before the write
// completes. A title-only change keeps the existing explanation and skips the
// backend call entirely.
//
// The "fetch then update" strategy (read the row, apply changes, save) lets
// us compare old and new values to decide whether regeneration is needed.
func (s *SnippetService) Update(ctx context.Context, userID, id, title, code, language string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if snippet.UserID != userID {
		return nil, apperror.Forbidden("you do not own this snippet")
	}

	// Title: empty means "keep the current one".
	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
		}
		snippet.Title = title
	}

	if code == "" {
		return nil, apperror.ValidationFailed("code", "snippet code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, apperror.ValidationFailed("language", "snippet language is required")
	}
	if len(language) > MaxLanguageLength {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("language must be %d characters or less", MaxLanguageLength))
	}

	contentChanged := code != snippet.Code || language != snippet.Language
	snippet.Code = code
	snippet.Language = language

	if contentChanged {
		snippet.Explanation = s.generateExplanation(ctx, code, language)
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
		slog.Bool("explanationRegenerated", contentChanged),
	)

	return snippet, nil
}

// Delete removes a snippet, enforcing ownership.
func (s *SnippetService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if snippet.UserID != userID {
		return apperror.Forbidden("you do not own this snippet")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// generateExplanation asks the explanation service for markdown describing
// the code. It NEVER returns an error — enrichment failures downgrade to
// the FailedExplanation sentinel, and a missing explainer (enrichment
// disabled) yields an empty string. The caller just stores whatever comes
// back.
func (s *SnippetService) generateExplanation(ctx context.Context, code, language string) string {
	if s.explainer == nil {
		s.logger.Debug("explanation enrichment disabled, skipping")
		return ""
	}

	explanation, err := s.explainer.Generate(ctx, code, language)
	if err != nil {
		// Log the real cause, store the sentinel. The snippet write goes
		// ahead regardless.
		s.logger.Warn("explanation generation failed, storing sentinel",
			slog.String("language", language),
			slog.Int("codeLength", len(code)),
			slog.String("error", err.Error()),
		)
		return FailedExplanation
	}

	return explanation
}
