package domain

import "time"

// Role is the coarse access level assigned to every user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an account in the system. Usernames and emails are unique;
// emails are stored lowercase. PasswordHash is never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsDeleted    bool       `json:"is_deleted"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// CanAuthenticate reports whether the account may receive new tokens.
// Deleted wins over inactive when reporting errors, so callers that need
// a specific message must check IsDeleted first.
func (u *User) CanAuthenticate() bool {
	return !u.IsDeleted && u.IsActive
}

// Origin captures where a request came from, for audit records.
type Origin struct {
	IPAddress string
	UserAgent string
}
