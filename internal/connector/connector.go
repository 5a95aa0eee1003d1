// Package connector implements the identity-migration bridge: a synchronous
// shim that lets an external identity provider (FusionAuth) validate legacy
// credentials against the local user store during a progressive migration.
//
// Each call is single-shot and stateless: authenticate a credential pair,
// then synthesize an export record the external system can absorb — same
// user, same external UUID, every time. Either a complete record is returned
// or none is; there is no partial success and no retry here (retries belong
// to the caller).
package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/identity"
	"github.com/ritza-co/legacy-auth-bridge/internal/model"
	"github.com/ritza-co/legacy-auth-bridge/internal/repository"
)

// Fixed configuration shared with the external system. Like the UUID
// namespace in internal/identity, these are compatibility contracts:
// the application ID identifies this app inside FusionAuth, and every
// migrated user gets the default role.
const (
	ApplicationID = "e9fdb985-9173-4e01-9d73-ac2d60d1dc8e"
	DefaultRole   = "user"
)

const defaultStoreTimeout = 5 * time.Second

// Bridge orchestrates lookup, verification, and export for connector calls.
//
// clock and newRegistrationID are swappable for tests. The registration ID
// is the one deliberately NON-deterministic value in the export — a fresh
// random UUID per call — in contrast to the identity UUID, which must be
// derived without randomness.
type Bridge struct {
	users             repository.UserRepository
	verifier          *auth.CredentialVerifier
	logger            *slog.Logger
	storeTimeout      time.Duration
	clock             func() time.Time
	newRegistrationID func() string
}

// New creates a Bridge. A storeTimeout of 0 uses the 5s default; the timeout
// bounds each store call so a wedged database surfaces as an internal error
// instead of hanging the migration.
func New(
	users repository.UserRepository,
	verifier *auth.CredentialVerifier,
	logger *slog.Logger,
	storeTimeout time.Duration,
) *Bridge {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Bridge{
		users:             users,
		verifier:          verifier,
		logger:            logger,
		storeTimeout:      storeTimeout,
		clock:             time.Now,
		newRegistrationID: uuid.NewString,
	}
}

// Authenticate validates a legacy credential pair and, on success, returns
// the export identity for the external system.
//
// Failure classification:
//   - missing loginID or password → apperror.ErrValidation (HTTP 400)
//   - unknown user OR wrong password → apperror.ErrNotFound (HTTP 404).
//     The two are deliberately indistinguishable to the caller so the
//     endpoint can't be used to enumerate accounts.
//   - store failure or timeout → plain wrapped error (HTTP 500)
//
// The plaintext secret is never logged; it appears only in the success
// payload, by design (see ExportIdentity.Password).
func (b *Bridge) Authenticate(ctx context.Context, loginID, password string) (*ExportIdentity, error) {
	if loginID == "" || password == "" {
		b.logger.Warn("connector request missing loginId or password")
		return nil, apperror.ValidationFailed("loginId", "Missing loginId or password")
	}

	// The store matches exactly; the connector's contract is
	// case-insensitive on the login identifier.
	email := strings.ToLower(loginID)

	lookupCtx, cancel := context.WithTimeout(ctx, b.storeTimeout)
	defer cancel()

	user, err := b.users.GetByEmail(lookupCtx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			b.logger.Warn("connector authentication failed", slog.String("loginId", loginID))
			return nil, errAuthFailed()
		}
		return nil, fmt.Errorf("connector: looking up user %s: %w", email, err)
	}

	if !b.verifier.Verify(user, password) {
		b.logger.Warn("connector authentication failed", slog.String("loginId", loginID))
		return nil, errAuthFailed()
	}

	b.logger.Info("connector authentication successful, exporting user",
		slog.String("loginId", loginID),
		slog.Int64("userID", user.ID),
	)

	return b.buildExport(user, password), nil
}

// errAuthFailed is the unified "unknown user or wrong password" failure.
func errAuthFailed() error {
	return &apperror.AppError{
		Err:     apperror.ErrNotFound,
		Message: "User not found or authentication failed",
	}
}

// buildExport synthesizes the export record from the user row and the secret
// the caller just proved possession of.
func (b *Bridge) buildExport(user *model.User, password string) *ExportIdentity {
	now := b.clock()

	var imageURL string
	if user.AvatarURL != nil {
		imageURL = *user.AvatarURL
	}

	return &ExportIdentity{
		ID:       identity.DeriveUserUUID(user.ID),
		Email:    user.Email,
		Username: user.Email,

		// The plaintext passes through so the external system can re-hash it
		// under its own policy — a one-time credential transfer that spares
		// every migrated user a password reset. The caller already proved
		// possession of this exact secret in this same request.
		Password:               password,
		PasswordChangeRequired: false,

		FullName:  user.Name,
		FirstName: identity.FirstName(user.Name),
		LastName:  identity.LastName(user.Name),
		ImageURL:  imageURL,
		Verified:  user.Verified,
		Active:    user.Active,

		InsertInstant:     instant(user.CreatedAt, now),
		LastUpdateInstant: instant(user.UpdatedAt, now),
		LastLoginInstant:  instantPtr(user.LastLoginAt, now),

		Registrations: []Registration{{
			ID:            b.newRegistrationID(),
			ApplicationID: ApplicationID,
			Verified:      user.Verified,
			Roles:         []string{DefaultRole},
		}},

		Data: MigrationData{
			MigratedFrom:  "local_authentication",
			OriginalID:    user.ID,
			MigratedAt:    now.UTC(),
			Provider:      user.Provider,
			CreatedAt:     user.CreatedAt,
			UpdatedAt:     user.UpdatedAt,
			MigrationNote: "User migrated from email/password authentication",
		},
	}
}

// instant converts a stored timestamp to epoch milliseconds, falling back to
// now for an absent (zero) source.
func instant(t time.Time, now time.Time) int64 {
	if t.IsZero() {
		return now.UnixMilli()
	}
	return t.UnixMilli()
}

func instantPtr(t *time.Time, now time.Time) int64 {
	if t == nil {
		return now.UnixMilli()
	}
	return t.UnixMilli()
}
