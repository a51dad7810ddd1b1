// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage implements them; tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/yutosuda/url-shortener/internal/model"
)

// ListOptions carries pagination parameters. Callers (the service layer)
// are responsible for clamping Limit before it reaches a repository.
type ListOptions struct {
	Limit  int
	Offset int
}

// URLRepository owns the urls table and the code-uniqueness invariant.
type URLRepository interface {
	// Create allocates a unique short code and inserts the row in one
	// operation, filling in ID, ShortCode, ClickCount and CreatedAt.
	Create(ctx context.Context, u *model.ShortURL) error
	GetByCode(ctx context.Context, code string) (*model.ShortURL, error)
	GetByID(ctx context.Context, id int64) (*model.ShortURL, error)
	// List returns a page ordered by creation time descending, plus the
	// total row count (for pagination UI).
	List(ctx context.Context, opts ListOptions) ([]model.ShortURL, int64, error)
	// Delete removes the URL and all its clicks as one atomic unit.
	// Returns false (and no error) when the id does not exist.
	Delete(ctx context.Context, id int64) (bool, error)
	// Top returns the n most-clicked URLs, click_count descending with
	// id ascending as the deterministic tiebreak.
	Top(ctx context.Context, n int) ([]model.ShortURL, error)
}

// ClickRepository owns the clicks table and the click_count consistency
// contract: Record inserts the click and increments the parent counter in
// the same transaction.
type ClickRepository interface {
	Record(ctx context.Context, c *model.Click) error
	ListByURL(ctx context.Context, urlID int64, opts ListOptions) ([]model.Click, error)
	CountAll(ctx context.Context) (int64, error)
}

// UserRepository owns the users table.
//
// Method names carry the User prefix because the sqlite backend implements
// every repository on one DB type, and URLRepository already claims the
// bare Create/GetByID names.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// Pinger is implemented by storage backends that can report liveness.
// The /health endpoint uses it.
type Pinger interface {
	Ping(ctx context.Context) error
}
