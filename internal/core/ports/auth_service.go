package ports

import (
	"context"
	"time"

	"github.com/authstack/identity-service/internal/core/domain"
)

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// IssuedToken pairs a signed token with its expiry instant.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResult is returned on a successful login: a token pair plus the
// public fields of the account. The password hash is never included.
type LoginResult struct {
	User         *domain.User `json:"user"`
	AccessToken  IssuedToken  `json:"access_token"`
	RefreshToken IssuedToken  `json:"refresh_token"`
}

// AuthService implements the authentication flows. Every mutating flow
// emits exactly one audit record as a best-effort side effect.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput, origin domain.Origin) (*domain.User, error)
	// Login resolves identifier as a username first, then as an email.
	Login(ctx context.Context, identifier, password string, origin domain.Origin) (*LoginResult, error)
	// Refresh mints a new access token. The refresh token is not rotated.
	Refresh(ctx context.Context, refreshToken string) (*IssuedToken, error)
	ChangePassword(ctx context.Context, userID int64, current, next string, origin domain.Origin) error
	// Logout only records the event; issued tokens stay valid until expiry.
	Logout(ctx context.Context, userID int64, origin domain.Origin) error
}
