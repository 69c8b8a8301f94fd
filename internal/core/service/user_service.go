package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

// UserService implements profile management and the admin account
// operations. Deletion is always a soft delete: the record stays in the
// store with is_deleted set, and the user's activity records are purged.
type UserService struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	activities ports.ActivityService
	log        zerolog.Logger
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, activities ports.ActivityService, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, activities: activities, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile changes the caller's own username and/or email. Other
// fields are not updatable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, username, email *string, origin domain.Origin) (*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var patch ports.UserPatch
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		if err := validateUsername(trimmed); err != nil {
			return nil, err
		}
		patch.Username = &trimmed
	}
	if email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*email))
		if err := validateEmail(lowered); err != nil {
			return nil, err
		}
		patch.Email = &lowered
	}
	if patch.Username == nil && patch.Email == nil {
		return nil, domain.ErrMissingFields
	}

	updated, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  userID,
		Action:  domain.ActionProfileUpdated,
		Details: "user profile updated",
		Origin:  origin,
	})
	return updated, nil
}

func (s *UserService) List(ctx context.Context, page, perPage int) ([]domain.User, error) {
	page, perPage = normalizePage(page, perPage)
	return s.users.List(ctx, page, perPage)
}

func (s *UserService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Create registers an account on behalf of an admin; unlike self
// registration the role is selectable.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput, origin domain.Origin) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  user.ID,
		Action:  domain.ActionUserCreated,
		Details: "user created by admin",
		Origin:  origin,
	})
	return user, nil
}

// Update applies an admin patch. The audit action reflects what changed:
// an is_active flip is recorded as activation or deactivation, anything
// else as a plain update.
func (s *UserService) Update(ctx context.Context, userID int64, in ports.UpdateUserInput, origin domain.Origin) (*domain.User, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	var patch ports.UserPatch
	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		if err := validateUsername(trimmed); err != nil {
			return nil, err
		}
		patch.Username = &trimmed
	}
	if in.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validateEmail(lowered); err != nil {
			return nil, err
		}
		patch.Email = &lowered
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		patch.Role = in.Role
	}
	patch.IsActive = in.IsActive

	updated, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	action, details := domain.ActionUserUpdated, "user updated by admin"
	if in.IsActive != nil {
		if *in.IsActive {
			action, details = domain.ActionUserActivated, "user activated by admin"
		} else {
			action, details = domain.ActionUserDeactivated, "user deactivated by admin"
		}
	}
	s.record(ctx, ports.AuditEntry{UserID: userID, Action: action, Details: details, Origin: origin})
	return updated, nil
}

func (s *UserService) SetActive(ctx context.Context, userID int64, active bool, origin domain.Origin) (*domain.User, error) {
	return s.Update(ctx, userID, ports.UpdateUserInput{IsActive: &active}, origin)
}

// Delete soft-deletes the account and purges its activity records, then
// writes the final user_deleted entry so the trail shows the removal.
func (s *UserService) Delete(ctx context.Context, userID int64, origin domain.Origin) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	deleted, inactive := true, false
	if _, err := s.users.Update(ctx, userID, ports.UserPatch{IsDeleted: &deleted, IsActive: &inactive}); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}

	if err := s.activities.PurgeUser(ctx, userID); err != nil {
		// The account is already gone from the caller's perspective;
		// losing the purge only leaves orphaned audit rows.
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("activity purge failed")
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  userID,
		Action:  domain.ActionUserDeleted,
		Details: "user deleted by admin",
		Origin:  origin,
	})
	return nil
}

func (s *UserService) record(ctx context.Context, entry ports.AuditEntry) {
	if err := s.activities.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Int64("user_id", entry.UserID).
			Str("action", string(entry.Action)).
			Msg("audit record dropped")
	}
}
