package events

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventUserLoggedIn        EventType = "user_logged_in"
	EventUserLoggedOut       EventType = "user_logged_out"
	EventUserPasswordChanged EventType = "user_password_changed"
	EventUserNameChanged     EventType = "user_name_changed"
	EventUserDeleted         EventType = "user_deleted"
	EventTokenRevoked        EventType = "token_revoked"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// NameChangedPayload payload.
type NameChangedPayload struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	Reason string `json:"reason"`
}
