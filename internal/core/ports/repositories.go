package ports

import (
	"context"

	"github.com/samirrijal/binroute/internal/core/domain"
)

// BinRepository persists bins. Bins are created and mutated but never
// deleted by this flow.
type BinRepository interface {
	Create(ctx context.Context, bin *domain.Bin) error
	List(ctx context.Context) ([]domain.Bin, error)
	Count(ctx context.Context) (int, error)
	GetByName(ctx context.Context, name string) (*domain.Bin, error)
	SetStatus(ctx context.Context, name, status string) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
