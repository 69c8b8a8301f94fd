package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// ActivityService appends and reads the audit trail. Record returns its
// error to the caller; the orchestrators log and discard it so audit
// failures can never abort a primary flow.
type ActivityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// Record appends one audit record with the current timestamp.
func (s *ActivityService) Record(ctx context.Context, entry ports.AuditEntry) error {
	activity := &domain.Activity{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   entry.Details,
		IPAddress: entry.Origin.IPAddress,
		UserAgent: entry.Origin.UserAgent,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.repo.Append(ctx, activity); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *ActivityService) ListByUser(ctx context.Context, userID int64, page, perPage int) ([]domain.Activity, error) {
	page, perPage = normalizePage(page, perPage)
	return s.repo.ListByUser(ctx, userID, page, perPage)
}

func (s *ActivityService) ListAll(ctx context.Context, page, perPage int) ([]domain.Activity, error) {
	page, perPage = normalizePage(page, perPage)
	return s.repo.ListAll(ctx, page, perPage)
}

// PurgeUser drops every record owned by userID. Called when the owning
// account is deleted; the only permitted bulk removal.
func (s *ActivityService) PurgeUser(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUser(ctx, userID)
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
