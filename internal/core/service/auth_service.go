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

// AuthService orchestrates the authentication flows: it consults the
// user repository, delegates to the hasher and token service, and emits
// one audit record per mutating flow. It holds no per-request state.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, audit ports.AuditRecorder, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, audit: audit, log: log}
}

// Register creates an account with the default role. No tokens are
// issued; the caller logs in separately.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput, origin domain.Origin) (*domain.User, error) {
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

	// Advisory pre-checks; a concurrent registration can still race past
	// them, in which case the repository's unique index reports the same
	// conflict errors.
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
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  user.ID,
		Action:  domain.ActionUserRegistered,
		Details: "user registered successfully",
		Origin:  origin,
	})
	return user, nil
}

// Login verifies credentials and issues an access+refresh token pair.
// The check order is fixed: existence, deleted, active, then password.
// Missing users and wrong passwords both surface as ErrInvalidCredentials
// so the response never reveals which part was wrong.
func (s *AuthService) Login(ctx context.Context, identifier, password string, origin domain.Origin) (*ports.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.resolveIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsDeleted {
		return nil, domain.ErrAccountDeleted
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	updated, err := s.users.Update(ctx, user.ID, ports.UserPatch{LastLogin: &now})
	if err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  user.ID,
		Action:  domain.ActionUserLogin,
		Details: "user logged in successfully",
		Origin:  origin,
	})

	return &ports.LoginResult{
		User:         updated,
		AccessToken:  ports.IssuedToken{Token: access, ExpiresAt: accessExp},
		RefreshToken: ports.IssuedToken{Token: refresh, ExpiresAt: refreshExp},
	}, nil
}

// Refresh mints a new access token from a valid refresh token. Because
// tokens carry no live revocation, account state is re-checked here: a
// deleted or deactivated user cannot refresh even with a valid token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.IssuedToken, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, domain.ErrAccountDeleted
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	access, exp, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &ports.IssuedToken{Token: access, ExpiresAt: exp}, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string, origin domain.Origin) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(user.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Update(ctx, userID, ports.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	s.record(ctx, ports.AuditEntry{
		UserID:  userID,
		Action:  domain.ActionPasswordChanged,
		Details: "user password changed",
		Origin:  origin,
	})
	return nil
}

// Logout records the event and nothing else. Issued tokens stay valid
// until their natural expiry; there is no server-side invalidation.
func (s *AuthService) Logout(ctx context.Context, userID int64, origin domain.Origin) error {
	s.record(ctx, ports.AuditEntry{
		UserID:  userID,
		Action:  domain.ActionUserLogout,
		Details: "user logged out successfully",
		Origin:  origin,
	})
	return nil
}

// resolveIdentifier tries the identifier as a username first, then as an
// email.
func (s *AuthService) resolveIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.users.FindByEmail(ctx, strings.ToLower(identifier))
}

// record writes one audit entry, logging and discarding any failure.
// This is the single place where an error is intentionally swallowed.
func (s *AuthService) record(ctx context.Context, entry ports.AuditEntry) {
	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Int64("user_id", entry.UserID).
			Str("action", string(entry.Action)).
			Msg("audit record dropped")
	}
}
