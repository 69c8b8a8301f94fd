package authz

import (
	"context"
	"testing"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(context.Context, *domain.User) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) FindByUsername(context.Context, string) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) Update(context.Context, int64, ports.UserPatch) (*domain.User, error) {
	panic("not used")
}
func (r *stubUserRepo) List(context.Context, int, int) ([]domain.User, error) { panic("not used") }
func (r *stubUserRepo) Delete(context.Context, int64) error                   { panic("not used") }

func newEngine() *Engine {
	return NewEngine(&stubUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Role: domain.RoleUser},
		2: {ID: 2, Role: domain.RoleAdmin},
		3: {ID: 3, Role: domain.Role("ghost")},
	}})
}

func TestPermissionsFor_UnknownRoleIsEmpty(t *testing.T) {
	if got := PermissionsFor(domain.Role("nope")); len(got) != 0 {
		t.Fatalf("unknown role should carry no permissions, got %v", got)
	}
}

func TestPermissionsFor_AdminIsSupersetOfUser(t *testing.T) {
	admin := make(map[Permission]bool)
	for _, p := range PermissionsFor(domain.RoleAdmin) {
		admin[p] = true
	}
	for _, p := range PermissionsFor(domain.RoleUser) {
		if !admin[p] {
			t.Fatalf("admin set missing user permission %q", p)
		}
	}
	if len(admin) <= len(PermissionsFor(domain.RoleUser)) {
		t.Fatalf("admin set should be a strict superset")
	}
}

func TestEngine_HasPermission(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int64
		perm   Permission
		want   bool
	}{
		{"user own-scope", 1, PermProfileUpdate, true},
		{"user denied any-scope", 1, PermProfileUpdateAny, false},
		{"user denied admin ops", 1, PermUserDelete, false},
		{"admin any-scope", 2, PermProfileUpdateAny, true},
		{"admin delete", 2, PermUserDelete, true},
		{"unknown role denied", 3, PermProfileRead, false},
		{"missing user denied", 99, PermProfileRead, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.HasPermission(ctx, tc.userID, tc.perm); got != tc.want {
				t.Fatalf("HasPermission(%d, %q) = %v, want %v", tc.userID, tc.perm, got, tc.want)
			}
		})
	}
}

func TestEngine_CanAccess_OwnerBypass(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	// The owner is granted regardless of permission, even one no role has.
	if !e.CanAccess(ctx, 1, 1, Permission("anything:at_all")) {
		t.Fatalf("owner must always be granted access to their own resource")
	}
	// A missing user is still granted on their own id; the bypass does
	// not consult the store.
	if !e.CanAccess(ctx, 99, 99, PermProfileRead) {
		t.Fatalf("owner bypass should not require a user lookup")
	}
}

func TestEngine_CanAccess_FallsBackToPermission(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	if e.CanAccess(ctx, 1, 2, PermProfileUpdateAny) {
		t.Fatalf("plain user must not access another user's resource")
	}
	if !e.CanAccess(ctx, 2, 1, PermProfileUpdateAny) {
		t.Fatalf("admin should access any profile via permission set")
	}
}
