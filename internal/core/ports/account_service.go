package ports

import (
	"context"

	"github.com/carelink/auth-server/internal/core/domain"
)

// UpdateAccountInput is a partial profile update. Password is plaintext here;
// the service hashes it. Role is honoured only on the admin path.
type UpdateAccountInput struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
	Role     *domain.Role
}

// AccountService covers public reads and identity-scoped mutations.
type AccountService interface {
	List(ctx context.Context) ([]domain.PublicAccount, error)
	Get(ctx context.Context, id string) (*domain.PublicAccount, error)
	UpdateSelf(ctx context.Context, caller domain.Identity, input UpdateAccountInput) (*domain.PublicAccount, error)
	DeleteSelf(ctx context.Context, caller domain.Identity) (*domain.PublicAccount, error)
	UpdateByAdmin(ctx context.Context, caller domain.Identity, id string, input UpdateAccountInput) (*domain.PublicAccount, error)
	DeleteByAdmin(ctx context.Context, caller domain.Identity, id string) (*domain.PublicAccount, error)
}
