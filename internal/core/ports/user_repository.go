package ports

import (
	"context"
	"time"

	"github.com/authstack/identity-service/internal/core/domain"
)

// UserPatch lists the fields an Update may change. Nil means "leave as is".
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *domain.Role
	IsActive     *bool
	IsDeleted    *bool
	LastLogin    *time.Time
}

// UserRepository defines the persistence contract for user accounts.
// The storage layer must enforce uniqueness of username and email and
// translate duplicate-key failures to ErrUsernameTaken / ErrEmailTaken,
// since the service-level existence pre-check is advisory, not a lock.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*domain.User, error)
	List(ctx context.Context, page, perPage int) ([]domain.User, error)
	// Delete removes the record physically. The production path is the
	// soft delete performed through Update; this exists for tooling.
	Delete(ctx context.Context, id int64) error
}
