package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

// AccountService implements public reads and identity-scoped mutations.
// Self-service operations only ever act on the caller's own id.
type AccountService struct {
	repo   ports.AccountRepository
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, log zerolog.Logger) *AccountService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &AccountService{repo: repo, hasher: hasher, audit: audit, log: log}
}

func (s *AccountService) List(ctx context.Context) ([]domain.PublicAccount, error) {
	accounts, err := s.repo.List(ctx, domain.ProjectionPublic)
	if err != nil {
		return nil, oops.In("account").Code(string(domain.KindInternal)).Wrapf(err, "list accounts")
	}

	out := make([]domain.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (*domain.PublicAccount, error) {
	account, err := s.repo.FindByID(ctx, id, domain.ProjectionPublic)
	if err != nil {
		return nil, wrapLookup(err, id, "get account")
	}
	public := account.Public()
	return &public, nil
}

// UpdateSelf applies the caller's profile changes. A role in the input is ignored.
func (s *AccountService) UpdateSelf(ctx context.Context, caller domain.Identity, in ports.UpdateAccountInput) (*domain.PublicAccount, error) {
	in.Role = nil
	return s.update(ctx, caller, caller.ID, in)
}

// DeleteSelf removes the caller's account and echoes the identity resolved
// from the token, not a fresh read.
func (s *AccountService) DeleteSelf(ctx context.Context, caller domain.Identity) (*domain.PublicAccount, error) {
	if _, err := s.delete(ctx, caller, caller.ID); err != nil {
		return nil, err
	}
	public := caller.Public()
	return &public, nil
}

func (s *AccountService) UpdateByAdmin(ctx context.Context, caller domain.Identity, id string, in ports.UpdateAccountInput) (*domain.PublicAccount, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.Validation("role must be one of: patient, healthcare_provider, admin")
	}
	return s.update(ctx, caller, id, in)
}

func (s *AccountService) DeleteByAdmin(ctx context.Context, caller domain.Identity, id string) (*domain.PublicAccount, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	deleted, err := s.delete(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	public := deleted.Public()
	return &public, nil
}

func (s *AccountService) update(ctx context.Context, caller domain.Identity, id string, in ports.UpdateAccountInput) (*domain.PublicAccount, error) {
	patch, err := s.buildPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, domain.Validation("no fields to update")
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, wrapLookup(err, id, "update account")
	}

	recordEvent(ctx, s.audit, domain.EventUpdated, updated.ID, updated.Email, caller.ID)
	s.log.Info().Str("account_id", id).Str("actor_id", caller.ID).Msg("account updated")

	public := updated.Public()
	return &public, nil
}

func (s *AccountService) delete(ctx context.Context, caller domain.Identity, id string) (*domain.Account, error) {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, id, "delete account")
	}

	recordEvent(ctx, s.audit, domain.EventDeleted, deleted.ID, deleted.Email, caller.ID)
	s.log.Info().Str("account_id", id).Str("actor_id", caller.ID).Msg("account deleted")
	return deleted, nil
}

// buildPatch trims and checks the input and replaces a plaintext password
// with its digest.
func (s *AccountService) buildPatch(in ports.UpdateAccountInput) (domain.AccountPatch, error) {
	var patch domain.AccountPatch

	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		if v == "" {
			return patch, domain.Validation("username cannot be empty")
		}
		patch.Username = &v
	}
	if in.Email != nil {
		v := strings.TrimSpace(*in.Email)
		if v == "" {
			return patch, domain.Validation("email cannot be empty")
		}
		patch.Email = &v
	}
	if in.Avatar != nil {
		v := *in.Avatar
		patch.Avatar = &v
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return patch, err
		}
		patch.PasswordHash = &hash
	}
	if in.Role != nil {
		r := *in.Role
		patch.Role = &r
	}
	return patch, nil
}

func wrapLookup(err error, id, op string) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return err
	}
	return oops.In("account").Code(string(domain.KindInternal)).With("account_id", id).Wrapf(err, "%s", op)
}
