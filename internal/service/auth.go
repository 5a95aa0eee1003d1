// Package service — authentication and user-management business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	handlers (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                ↘ TokenService (sessions), CredentialVerifier (passwords)
//
// It knows nothing about HTTP — no cookies, no redirects, no status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/model"
	"github.com/ritza-co/legacy-auth-bridge/internal/repository"
)

const minPasswordLength = 6

// AuthService handles registration, login, and user administration.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	verifier *auth.CredentialVerifier
	logger   *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	verifier *auth.CredentialVerifier,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
	}
}

// AuthResult bundles the authenticated user and the issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a local account. New accounts are verified and active
// immediately — this system does not run a separate email-verification step.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, apperror.ValidationFailed("", "All fields are required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", "Password must be at least 6 characters long")
	}

	user := &model.User{
		Email:    email,
		Name:     name,
		Provider: model.ProviderLocal,
		Verified: true,
		Active:   true,
	}

	// The store hashes the password and enforces email uniqueness; a
	// duplicate comes back as apperror.ErrConflict.
	if err := s.users.Create(ctx, user, password); err != nil {
		return nil, fmt.Errorf("service/auth: registering %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a local account and issues a session token. It also
// stamps the last-login timestamp; a failure there is logged but doesn't
// fail the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrorIsNotFound(err) {
			return nil, apperror.Unauthorized("Incorrect email.")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	// CredentialVerifier also rejects federated accounts — a Google user
	// can't log in with a password no matter what the form says.
	if !s.verifier.Verify(user, password) {
		return nil, apperror.Unauthorized("Incorrect password.")
	}

	return s.finishLogin(ctx, user)
}

// LoginOrRegisterGoogle handles the Google OAuth callback: first login
// creates a federated account, subsequent logins refresh the profile fields
// Google may have changed.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	user, err := s.users.GetByGoogleID(ctx, gUser.ID)
	switch {
	case err == nil:
		upd := repository.UserUpdate{Name: &gUser.Name}
		if gUser.Picture != "" {
			upd.AvatarURL = &gUser.Picture
		}
		if _, err := s.users.Update(ctx, user.ID, upd); err != nil {
			return nil, fmt.Errorf("service/auth: refreshing Google profile for user %d: %w", user.ID, err)
		}
		user.Name = gUser.Name

	case apperrorIsNotFound(err):
		gid := gUser.ID
		user = &model.User{
			Email:    gUser.Email,
			Name:     gUser.Name,
			GoogleID: &gid,
			Provider: model.ProviderGoogle,
			Verified: true,
			Active:   true,
		}
		if gUser.Picture != "" {
			avatar := gUser.Picture
			user.AvatarURL = &avatar
		}
		if err := s.users.Create(ctx, user, ""); err != nil {
			return nil, fmt.Errorf("service/auth: creating Google user %s: %w", gUser.Email, err)
		}
		s.logger.Info("user registered via Google",
			slog.Int64("userID", user.ID),
			slog.String("email", user.Email),
		)

	default:
		return nil, fmt.Errorf("service/auth: looking up Google user %s: %w", gUser.ID, err)
	}

	return s.finishLogin(ctx, user)
}

// finishLogin stamps last-login and issues the session token.
func (s *AuthService) finishLogin(ctx context.Context, user *model.User) (*AuthResult, error) {
	if _, err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last login",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user authenticated",
		slog.Int64("userID", user.ID),
		slog.String("provider", user.Provider),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}

// UpdateProfile changes the user's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, id int64, name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return apperror.ValidationFailed("name", "Name must be at least 2 characters long")
	}

	changed, err := s.users.Update(ctx, id, repository.UserUpdate{Name: &trimmed})
	if err != nil {
		return fmt.Errorf("service/auth: updating profile for user %d: %w", id, err)
	}
	if !changed {
		return apperror.NotFound("user", fmt.Sprintf("%d", id))
	}
	return nil
}

// ListUsers returns all users for the dashboard, newest first.
func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: listing users: %w", err)
	}
	return users, nil
}

// DeleteUser removes another user's account. Self-deletion is forbidden so
// an admin can't lock themselves out mid-session.
func (s *AuthService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	if actorID == targetID {
		return apperror.Forbidden("You cannot delete your own account")
	}

	deleted, err := s.users.Delete(ctx, targetID)
	if err != nil {
		return fmt.Errorf("service/auth: deleting user %d: %w", targetID, err)
	}
	if !deleted {
		return apperror.NotFound("user", fmt.Sprintf("%d", targetID))
	}

	s.logger.Info("user deleted",
		slog.Int64("actorID", actorID),
		slog.Int64("targetID", targetID),
	)
	return nil
}

// ToggleActive flips another user's active flag and returns the new state.
// Self-deactivation is forbidden for the same reason as self-deletion.
func (s *AuthService) ToggleActive(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID == targetID {
		return false, apperror.Forbidden("You cannot deactivate your own account")
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("service/auth: fetching user %d: %w", targetID, err)
	}

	next := !user.Active
	if _, err := s.users.Update(ctx, targetID, repository.UserUpdate{Active: &next}); err != nil {
		return false, fmt.Errorf("service/auth: toggling active for user %d: %w", targetID, err)
	}

	return next, nil
}

func apperrorIsNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
