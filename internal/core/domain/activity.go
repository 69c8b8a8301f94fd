package domain

import "time"

// Action names an audit event. The set is closed; new flows add a constant.
type Action string

const (
	ActionUserRegistered  Action = "user_registered"
	ActionUserLogin       Action = "user_login"
	ActionUserLogout      Action = "user_logout"
	ActionPasswordChanged Action = "password_changed"
	ActionProfileUpdated  Action = "profile_updated"
	ActionUserCreated     Action = "user_created"
	ActionUserUpdated     Action = "user_updated"
	ActionUserActivated   Action = "user_activated"
	ActionUserDeactivated Action = "user_deactivated"
	ActionUserDeleted     Action = "user_deleted"
)

// Activity is an append-only audit record. Records are never updated;
// they are removed only in bulk when their owning user is deleted.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    Action    `json:"action"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
