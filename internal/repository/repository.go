package repository

import (
	"context"

	"github.com/tahmid/codevault/internal/model"
)

// ListOptions controls pagination and ownership filtering for List.
// UserID is required — snippets are always listed per owner, newest first.
type ListOptions struct {
	UserID string
	Limit  int
	Offset int
}

// SnippetRepository is the storage contract for snippets.
// The sqlite subpackage implements it; tests use in-memory mocks.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// UserRepository is the storage contract for user accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
