// Package token issues and verifies signed, time-limited access and
// refresh tokens. Tokens are self-contained HS256 JWTs; there is no
// server-side token state and therefore no revocation before expiry.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authstack/identity-service/internal/core/domain"
	"github.com/authstack/identity-service/internal/core/ports"
)

const (
	// DefaultAccessTTL bounds how long an access token authorizes calls.
	DefaultAccessTTL = time.Hour
	// DefaultRefreshTTL bounds how long a refresh token can mint new
	// access tokens.
	DefaultRefreshTTL = 30 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly
	// signed but its expiry instant has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure:
	// malformed input, bad signature, wrong algorithm, wrong token type.
	ErrTokenInvalid = errors.New("invalid token")
)

type claims struct {
	Role string `json:"role,omitempty"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// Service signs and verifies tokens with a single HMAC key.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// New returns a Service signing with secret. Non-positive TTLs fall back
// to the defaults.
func New(secret string, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Service{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccess signs a short-lived token carrying the user id and role.
func (s *Service) IssueAccess(userID int64, role domain.Role) (string, time.Time, error) {
	return s.issue(userID, string(role), typeAccess, s.accessTTL)
}

// IssueRefresh signs a long-lived token carrying only the user id.
func (s *Service) IssueRefresh(userID int64) (string, time.Time, error) {
	return s.issue(userID, "", typeRefresh, s.refreshTTL)
}

func (s *Service) issue(userID int64, role, typ string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// VerifyAccess validates signature, expiry and token type for an access
// token and returns its claims.
func (s *Service) VerifyAccess(raw string) (*ports.TokenClaims, error) {
	return s.verify(raw, typeAccess)
}

// VerifyRefresh validates signature, expiry and token type for a refresh
// token. Access tokens are rejected here, and vice versa.
func (s *Service) VerifyRefresh(raw string) (*ports.TokenClaims, error) {
	return s.verify(raw, typeRefresh)
}

func (s *Service) verify(raw, wantType string) (*ports.TokenClaims, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid || cl.Type != wantType {
		return nil, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(cl.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	out := &ports.TokenClaims{
		UserID: userID,
		Role:   domain.Role(cl.Role),
	}
	if cl.IssuedAt != nil {
		out.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		out.ExpiresAt = cl.ExpiresAt.Time
	}
	return out, nil
}
