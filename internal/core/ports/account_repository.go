package ports

import (
	"context"

	"github.com/carelink/auth-server/internal/core/domain"
)

// AccountRepository is the account directory's persistence surface.
// Lookups that match nothing return domain.ErrAccountNotFound.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// FindByEmail returns the oldest account registered with email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string, projection domain.Projection) (*domain.Account, error)
	List(ctx context.Context, projection domain.Projection) ([]*domain.Account, error)
	// CountByEmail reports how many accounts share email.
	CountByEmail(ctx context.Context, email string) (int64, error)
	// UpdateByID applies patch and returns the account as stored afterwards, without its hash.
	UpdateByID(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	// DeleteByID removes the account and returns it as it was, without its hash.
	DeleteByID(ctx context.Context, id string) (*domain.Account, error)
}
