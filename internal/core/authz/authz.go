// Package authz evaluates role-based access decisions. The role to
// permission mapping is fixed at compile time; it is not persisted and
// cannot change at runtime. Unknown roles carry no permissions, so the
// default outcome is deny.
package authz

import (
	"context"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// Permission is a fine-grained named capability.
type Permission string

const (
	PermProfileRead      Permission = "profile:read"
	PermProfileUpdate    Permission = "profile:update"
	PermProfileReadAny   Permission = "profile:read_any"
	PermProfileUpdateAny Permission = "profile:update_any"
	PermProfileDeleteAny Permission = "profile:delete_any"
	PermActivityReadOwn  Permission = "activity:read_own"
	PermActivityReadAny  Permission = "activity:read_any"
	PermUserCreate       Permission = "user:create"
	PermUserRead         Permission = "user:read"
	PermUserUpdate       Permission = "user:update"
	PermUserDelete       Permission = "user:delete"
)

// rolePermissions is the complete mapping. The admin set is a strict
// superset of the user set, adding the "any"-scoped actions.
var rolePermissions = map[domain.Role][]Permission{
	domain.RoleUser: {
		PermProfileRead,
		PermProfileUpdate,
		PermActivityReadOwn,
	},
	domain.RoleAdmin: {
		PermProfileRead,
		PermProfileUpdate,
		PermProfileReadAny,
		PermProfileUpdateAny,
		PermProfileDeleteAny,
		PermActivityReadOwn,
		PermActivityReadAny,
		PermUserCreate,
		PermUserRead,
		PermUserUpdate,
		PermUserDelete,
	},
}

// PermissionsFor returns the permission set for role. Unknown roles get
// an empty set.
func PermissionsFor(role domain.Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHas reports whether role carries perm, without any I/O.
func RoleHas(role domain.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Engine resolves user-level access decisions. Each check performs at
// most one user lookup.
type Engine struct {
	users ports.UserRepository
}

func NewEngine(users ports.UserRepository) *Engine {
	return &Engine{users: users}
}

// HasPermission reports whether the user's role carries perm. Missing
// users have no permissions.
func (e *Engine) HasPermission(ctx context.Context, userID int64, perm Permission) bool {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		return false
	}
	return RoleHas(user.Role, perm)
}

// CanAccess decides whether userID may act on a resource owned by
// ownerID. The owner is always granted, regardless of perm; anyone else
// needs the permission on their role.
func (e *Engine) CanAccess(ctx context.Context, userID, ownerID int64, perm Permission) bool {
	if userID == ownerID {
		return true
	}
	return e.HasPermission(ctx, userID, perm)
}
