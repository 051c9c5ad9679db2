package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
	"github.com/carelink/auth-server/internal/pkg/metrics"
)

// AuthService implements registration, login and token authorization.
type AuthService struct {
	repo     ports.AccountRepository
	hasher   ports.PasswordHasher
	issuer   ports.TokenIssuer
	verifier ports.TokenVerifier
	audit    ports.AuditRecorder
	log      zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	repo ports.AccountRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	verifier ports.TokenVerifier,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		audit:    audit,
		log:      log,
	}
}

// Register creates a patient account. The caller can never choose the role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.PublicAccount, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation("username, email and password are required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	// Email uniqueness is not enforced by the directory; surface duplicates.
	if n, err := s.repo.CountByEmail(ctx, in.Email); err != nil {
		s.log.Warn().Err(err).Msg("duplicate email check failed")
	} else if n > 0 {
		s.log.Warn().Int64("existing", n).Msg("registering account with an email that is already in use")
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		Role:         domain.RolePatient,
		PasswordHash: hash,
		Avatar:       in.Avatar,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, oops.In("auth").Code(string(domain.KindInternal)).Wrapf(err, "create account")
	}

	metrics.RegistrationsTotal.Inc()
	recordEvent(ctx, s.audit, domain.EventRegistered, created.ID, created.Email, created.ID)
	s.log.Info().Str("account_id", created.ID).Msg("account registered")

	public := created.Public()
	return &public, nil
}

// Login checks credentials and issues a token. An unknown email and a wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, s.loginFailed(ctx, "", email)
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, oops.In("auth").Code(string(domain.KindInternal)).Wrapf(err, "find account")
		}
		// Spend the same bcrypt time as a real comparison.
		s.hasher.Verify(password, s.dummyHash())
		return nil, s.loginFailed(ctx, "", email)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, s.loginFailed(ctx, account.ID, email)
	}

	token, err := s.issuer.Issue(account.ID, account.Role)
	if err != nil {
		return nil, oops.In("auth").Code(string(domain.KindInternal)).With("account_id", account.ID).Wrapf(err, "issue token")
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	recordEvent(ctx, s.audit, domain.EventLoginSucceeded, account.ID, account.Email, account.ID)

	account.PasswordHash = ""
	return &ports.LoginResult{Account: account, Token: token}, nil
}

// Authorize verifies the token signature, then resolves the embedded id
// against the directory so deleted accounts lose access immediately.
func (s *AuthService) Authorize(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := s.repo.FindByID(ctx, claims.ID, domain.ProjectionIdentity)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, oops.In("auth").With("account_id", claims.ID).Wrap(domain.ErrTokenAccountGone)
		}
		return nil, oops.In("auth").Code(string(domain.KindInternal)).With("account_id", claims.ID).Wrapf(err, "resolve token account")
	}

	identity := account.Identity()
	return &identity, nil
}

func (s *AuthService) loginFailed(ctx context.Context, accountID, email string) error {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	recordEvent(ctx, s.audit, domain.EventLoginFailed, accountID, email, accountID)
	return domain.ErrInvalidCredentials
}

// dummyHash is a digest that no submitted password is expected to match.
func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("timing-equaliser")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy digest")
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}
