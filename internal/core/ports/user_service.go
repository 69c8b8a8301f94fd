package ports

import (
	"context"

	"github.com/authstack/identity-service/internal/core/domain"
)

// CreateUserInput carries the fields for an admin-created account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *domain.Role
	IsActive *bool
}

// UserService implements profile and administrative account management.
type UserService interface {
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, username, email *string, origin domain.Origin) (*domain.User, error)

	List(ctx context.Context, page, perPage int) ([]domain.User, error)
	Get(ctx context.Context, userID int64) (*domain.User, error)
	Create(ctx context.Context, in CreateUserInput, origin domain.Origin) (*domain.User, error)
	Update(ctx context.Context, userID int64, in UpdateUserInput, origin domain.Origin) (*domain.User, error)
	SetActive(ctx context.Context, userID int64, active bool, origin domain.Origin) (*domain.User, error)
	// Delete soft-deletes the account and purges its activity records.
	Delete(ctx context.Context, userID int64, origin domain.Origin) error
}
