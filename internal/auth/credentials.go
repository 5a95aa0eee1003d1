package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/ritza-co/legacy-auth-bridge/internal/model"
)

// CredentialVerifier decides whether a plaintext secret authenticates a user
// record. It is the single gate for local password checks — both the login
// flow and the migration connector go through it.
type CredentialVerifier struct{}

// NewCredentialVerifier creates a CredentialVerifier.
func NewCredentialVerifier() *CredentialVerifier {
	return &CredentialVerifier{}
}

// Verify reports whether the secret matches the user's stored hash.
//
// Federated accounts fail immediately, before any hash comparison: a record
// with provider != "local" never authenticates with a password, even if a
// hash happens to be present in the row. There is no fallback path.
//
// A malformed or truncated stored hash is a verification failure, not an
// error — bcrypt.CompareHashAndPassword already returns non-nil for any
// input it can't decode, so nothing here can panic on bad data.
func (v *CredentialVerifier) Verify(user *model.User, secret string) bool {
	if user == nil || !user.IsLocal() || user.PasswordHash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(secret)) == nil
}
