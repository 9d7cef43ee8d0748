package model

import "time"

// Roles a user can hold.  New accounts always start as RoleUser; only an
// admin can promote another account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool { return s == RoleUser || s == RoleAdmin }

// User represents a row in the `users` table.  PasswordHash is only ever
// read by the login path; every outward-facing projection is built from
// the other fields.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (stored lowercased and trimmed)
	PasswordHash string    // users.password_hash (bcrypt)
	Name         string    // users.name (optional display name)
	Role         string    // users.role ("user" or "admin")
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table — the ledger
// of currently valid refresh tokens.  The raw token is never stored; only
// its SHA‑256 hash.  Presence of a row is the sole source of truth for a
// refresh token's validity: a cryptographically valid token with no row
// here has been revoked.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash (SHA-256 hex of the serialized token)
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
