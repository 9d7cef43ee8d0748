// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the auth.events queue.
const (
	EventUserRegistered  = "user.registered"
	EventUserRoleChanged = "user.role_changed"
	EventUserDeleted     = "user.deleted"
)

// AuthEvent is published whenever an account's lifecycle changes.  It
// contains enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.  No credential
// material ever rides on the queue.
type AuthEvent struct {
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
