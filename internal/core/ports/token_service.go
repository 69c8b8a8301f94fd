package ports

import (
	"time"

	"github.com/authstack/identity-service/internal/core/domain"
)

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	UserID    int64
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies self-contained signed tokens. Tokens
// are stateless: once issued they remain valid until expiry, so callers
// must re-check account state on every refresh.
type TokenService interface {
	IssueAccess(userID int64, role domain.Role) (string, time.Time, error)
	IssueRefresh(userID int64) (string, time.Time, error)
	VerifyAccess(token string) (*TokenClaims, error)
	VerifyRefresh(token string) (*TokenClaims, error)
}

// PasswordHasher produces and checks self-describing password records.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches the stored record.
	// Malformed records verify as false, never as an error.
	Verify(record, plaintext string) bool
}
