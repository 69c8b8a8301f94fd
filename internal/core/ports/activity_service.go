package ports

import (
	"context"

	"github.com/authstack/identity-service/internal/core/domain"
)

// AuditEntry is the input for one audit record.
type AuditEntry struct {
	UserID  int64
	Action  domain.Action
	Details string
	Origin  domain.Origin
}

// AuditRecorder accepts audit entries. Implementations may write
// synchronously or hand the entry to a background worker; either way the
// caller treats failures as best-effort and never aborts its own flow.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// ActivityService is the full audit-trail contract: recording plus the
// read and purge operations used by admin endpoints and user deletion.
type ActivityService interface {
	AuditRecorder
	ListByUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Activity, error)
	ListAll(ctx context.Context, page, perPage int) ([]domain.Activity, error)
	PurgeUser(ctx context.Context, userID int64) error
}
