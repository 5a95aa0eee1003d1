// Package model defines the data structures used throughout the application.
package model

import "time"

// Authentication providers. Exactly one credential path exists per user:
// local accounts carry a bcrypt hash, Google accounts carry a Google ID.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User represents a registered account, local or federated.
//
// Nullable columns (password_hash, google_id, avatar, last_login_at) are
// pointer fields: a local account has a hash and no Google ID, a federated
// account the opposite. A federated record must never pass local credential
// verification even if a hash is somehow present — see auth.CredentialVerifier.
//
// WHY ID int64?
// IDs come from the SQLite AUTOINCREMENT rowid. They are positive, unique,
// stable, and never reused; the connector derives the external identity's
// UUID purely from this number, so it must not change for the life of the row.
type User struct {
	ID           int64      `json:"id"          db:"id"`
	Email        string     `json:"email"       db:"email"`
	PasswordHash *string    `json:"-"           db:"password_hash"` // never serialized
	Name         string     `json:"name"        db:"name"`
	GoogleID     *string    `json:"googleId"    db:"google_id"`
	AvatarURL    *string    `json:"avatarUrl"   db:"avatar"`
	Provider     string     `json:"provider"    db:"provider"`
	Verified     bool       `json:"verified"    db:"verified"`
	Active       bool       `json:"active"      db:"active"`
	LastLoginAt  *time.Time `json:"lastLoginAt" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt"   db:"updated_at"`
}

// IsLocal reports whether the account authenticates with a stored password.
func (u *User) IsLocal() bool {
	return u.Provider == ProviderLocal
}
