package domain

import "errors"

// Sentinel errors returned by the core. The HTTP layer maps each to a
// status code in a single place; services never reference HTTP codes.
var (
	// Validation (400).
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrWeakPassword    = errors.New("password must be at least 8 characters and contain letters and numbers")
	ErrInvalidUsername = errors.New("username must be 3-20 characters, letters, digits and underscores only")
	ErrMissingFields   = errors.New("missing required fields")
	ErrInvalidRole     = errors.New("invalid role")

	// Conflict (409).
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// Unauthorized (401). Bad credentials and invalid or expired tokens
	// are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Forbidden (403).
	ErrAccountDeleted     = errors.New("your account has been deleted, please contact support for assistance")
	ErrAccountDeactivated = errors.New("your account has been deactivated, please contact support for assistance")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrSelfAction         = errors.New("admins cannot perform this action on their own account")

	// Not found (404).
	ErrUserNotFound = errors.New("user not found")
)
