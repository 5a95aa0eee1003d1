// Package repository defines the storage interfaces the services depend on.
// Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"
	"time"

	"github.com/ritza-co/legacy-auth-bridge/internal/model"
)

// UserUpdate is a partial update: nil fields are left untouched. The store
// refreshes updated_at on every mutation regardless of which fields change.
type UserUpdate struct {
	Name        *string
	AvatarURL   *string
	Active      *bool
	LastLoginAt *time.Time
}

// UserRepository is the persistent record of local and federated identities.
//
// Lookups are exact-match on the stored strings — the store performs no
// normalization. Callers that want case-insensitive email matching (the
// migration connector does) lower-case before calling.
//
// Create hashes the supplied plaintext password before storage; plaintext
// never reaches the database. Email and Google ID are unique — a violation
// surfaces as apperror.ErrConflict, not a generic failure.
type UserRepository interface {
	Create(ctx context.Context, user *model.User, plaintextPassword string) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, upd UserUpdate) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
