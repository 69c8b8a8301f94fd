package ports

import (
	"context"

	"github.com/authstack/identity-service/internal/core/domain"
)

// ActivityRepository defines the persistence contract for the audit trail.
// Records are append-only: there is no update operation, and deletion is
// only available in bulk for a user being removed.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	ListByUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Activity, error)
	ListAll(ctx context.Context, page, perPage int) ([]domain.Activity, error)
	DeleteByUser(ctx context.Context, userID int64) error
}
