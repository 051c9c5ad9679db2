package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func rolePtr(r domain.Role) *domain.Role { return &r }

type accountFixture struct {
	svc    *AccountService
	repo   *stubAccountRepo
	hasher *stubHasher
	audit  *stubAudit
}

func newAccountFixture() *accountFixture {
	f := &accountFixture{
		repo:   newStubAccountRepo(),
		hasher: &stubHasher{},
		audit:  &stubAudit{},
	}
	f.svc = NewAccountService(f.repo, f.hasher, f.audit, zerolog.Nop())
	return f
}

func (f *accountFixture) seed(t *testing.T, username, email string, role domain.Role) domain.Identity {
	t.Helper()
	acc, err := f.repo.Create(context.Background(), &domain.Account{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: "hashed:0:original",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return acc.Identity()
}

// ---------------------------------------------------------------------------
// Public reads
// ---------------------------------------------------------------------------

func TestAccountService_List(t *testing.T) {
	f := newAccountFixture()
	f.seed(t, "a", "a@x.com", domain.RolePatient)
	f.seed(t, "b", "b@x.com", domain.RoleAdmin)

	list, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Username != "a" || list[1].Username != "b" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestAccountService_List_Empty(t *testing.T) {
	f := newAccountFixture()

	list, err := f.svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", list)
	}
}

func TestAccountService_Get(t *testing.T) {
	f := newAccountFixture()
	id := f.seed(t, "a", "a@x.com", domain.RolePatient)

	got, err := f.svc.Get(context.Background(), id.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id.ID || got.Email != "a@x.com" {
		t.Fatalf("unexpected account: %+v", got)
	}

	if _, err := f.svc.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Self-service
// ---------------------------------------------------------------------------

func TestAccountService_UpdateSelf_RehashesPassword(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)

	got, err := f.svc.UpdateSelf(context.Background(), caller, ports.UpdateAccountInput{
		Username: strPtr("alice"),
		Password: strPtr("new-password"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("unexpected result: %+v", got)
	}

	stored := f.repo.byID(caller.ID)
	if stored.PasswordHash == "new-password" || !f.hasher.Verify("new-password", stored.PasswordHash) {
		t.Fatalf("password was not re-hashed: %q", stored.PasswordHash)
	}
	if got := f.audit.types(); len(got) != 1 || got[0] != domain.EventUpdated {
		t.Fatalf("unexpected audit events: %v", got)
	}
}

func TestAccountService_UpdateSelf_IgnoresRole(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)

	_, err := f.svc.UpdateSelf(context.Background(), caller, ports.UpdateAccountInput{
		Avatar: strPtr("pic.png"),
		Role:   rolePtr(domain.RoleAdmin),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored := f.repo.byID(caller.ID); stored.Role != domain.RolePatient {
		t.Fatalf("self-update escalated role to %s", stored.Role)
	}
}

func TestAccountService_UpdateSelf_OnlyTouchesCaller(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)
	other := f.seed(t, "b", "b@x.com", domain.RolePatient)

	if _, err := f.svc.UpdateSelf(context.Background(), caller, ports.UpdateAccountInput{Username: strPtr("renamed")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored := f.repo.byID(other.ID); stored.Username != "b" {
		t.Fatalf("other account modified: %+v", stored)
	}
}

func TestAccountService_UpdateSelf_Validation(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)

	cases := []ports.UpdateAccountInput{
		{},
		{Role: rolePtr(domain.RoleAdmin)},
		{Username: strPtr("   ")},
		{Email: strPtr("")},
	}
	for _, in := range cases {
		_, err := f.svc.UpdateSelf(context.Background(), caller, in)
		if domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestAccountService_UpdateSelf_AccountGone(t *testing.T) {
	f := newAccountFixture()
	ghost := domain.Identity{ID: "acc-404", Role: domain.RolePatient}

	_, err := f.svc.UpdateSelf(context.Background(), ghost, ports.UpdateAccountInput{Username: strPtr("x")})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_DeleteSelf_EchoesTokenIdentity(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)

	// The identity captured at authorization time is what the response echoes.
	caller.Avatar = "from-token.png"
	got, err := f.svc.DeleteSelf(context.Background(), caller)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got.ID != caller.ID || got.Avatar != "from-token.png" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if f.repo.byID(caller.ID) != nil {
		t.Fatalf("account still stored")
	}

	if _, err := f.svc.DeleteSelf(context.Background(), caller); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on second delete, got %v", err)
	}
}

func TestAccountService_RepositoryFailure(t *testing.T) {
	f := newAccountFixture()
	caller := f.seed(t, "a", "a@x.com", domain.RolePatient)
	f.repo.failWith = errors.New("socket closed")

	if _, err := f.svc.List(context.Background()); domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("list: expected internal, got %v", err)
	}
	if _, err := f.svc.DeleteSelf(context.Background(), caller); domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("delete: expected internal, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Admin path
// ---------------------------------------------------------------------------

func TestAccountService_Admin_RequiresAdminRole(t *testing.T) {
	f := newAccountFixture()
	patient := f.seed(t, "a", "a@x.com", domain.RolePatient)
	target := f.seed(t, "b", "b@x.com", domain.RolePatient)

	if _, err := f.svc.UpdateByAdmin(context.Background(), patient, target.ID, ports.UpdateAccountInput{Username: strPtr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.DeleteByAdmin(context.Background(), patient, target.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAccountService_Admin_UpdateAndDelete(t *testing.T) {
	f := newAccountFixture()
	admin := f.seed(t, "root", "root@x.com", domain.RoleAdmin)
	target := f.seed(t, "b", "b@x.com", domain.RolePatient)

	if _, err := f.svc.UpdateByAdmin(context.Background(), admin, target.ID, ports.UpdateAccountInput{
		Role: rolePtr(domain.RoleHealthcareProvider),
	}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if stored := f.repo.byID(target.ID); stored.Role != domain.RoleHealthcareProvider {
		t.Fatalf("role not updated: %s", stored.Role)
	}

	if _, err := f.svc.UpdateByAdmin(context.Background(), admin, target.ID, ports.UpdateAccountInput{
		Role: rolePtr("superuser"),
	}); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}

	deleted, err := f.svc.DeleteByAdmin(context.Background(), admin, target.ID)
	if err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if deleted.ID != target.ID || deleted.Username != "b" {
		t.Fatalf("unexpected deleted account: %+v", deleted)
	}

	events := f.audit.events
	last := events[len(events)-1]
	if last.Type != domain.EventDeleted || last.ActorID != admin.ID || last.AccountID != target.ID {
		t.Fatalf("unexpected audit event: %+v", last)
	}
}
