package ports

import (
	"context"

	"github.com/carelink/auth-server/internal/core/domain"
)

// RegisterInput carries a self-registration request. Role is not part of it.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Account *domain.Account
	Token   string
}

// AuthService covers registration, login and token authorization.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.PublicAccount, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authorize resolves a bearer token to a live account.
	Authorize(ctx context.Context, token string) (*domain.Identity, error)
}
