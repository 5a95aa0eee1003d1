package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/model"
	"github.com/ritza-co/legacy-auth-bridge/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, name, google_id, avatar, provider,
	verified, active, last_login_at, created_at, updated_at`

// Create inserts a new user and fills in ID, hash, and timestamps.
//
// A non-empty plaintextPassword is bcrypt-hashed here, before it touches the
// INSERT — the database never sees plaintext. Federated accounts pass "" and
// get a NULL hash. Duplicate email or google_id comes back as
// apperror.Conflict so callers can tell "identity already exists" apart from
// a storage failure.
func (db *DB) Create(ctx context.Context, user *model.User, plaintextPassword string) error {
	if user.Provider == "" {
		user.Provider = model.ProviderLocal
	}

	var hash *string
	if plaintextPassword != "" {
		h, err := db.passwords.Hash(plaintextPassword)
		if err != nil {
			return fmt.Errorf("sqlite: hashing password for %s: %w", user.Email, err)
		}
		hash = &h
	}

	now := time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, google_id, avatar, provider,
			verified, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email,
		hash,
		user.Name,
		user.GoogleID,
		user.AvatarURL,
		user.Provider,
		user.Verified,
		user.Active,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", uniqueViolationKey(err, user))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}

	user.ID = id
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by exact email match. No normalization is
// applied here — callers that want case-insensitive lookup lower-case first.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

// GetByGoogleID retrieves a federated user by Google account ID.
func (db *DB) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_id = ?`, googleID)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", googleID)
		}
		return nil, fmt.Errorf("sqlite: getting user by google_id %s: %w", googleID, err)
	}
	return u, nil
}

// List returns all users, newest first. The dashboard's user table.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// Update applies a partial update. Nil fields in upd are left alone;
// updated_at is refreshed on every call. Returns true if a row changed.
func (db *DB) Update(ctx context.Context, id int64, upd repository.UserUpdate) (bool, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *upd.AvatarURL)
	}
	if upd.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *upd.Active)
	}
	if upd.LastLoginAt != nil {
		sets = append(sets, "last_login_at = ?")
		args = append(args, upd.LastLoginAt.UTC())
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("sqlite: updating user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected for user %d: %w", id, err)
	}
	return n > 0, nil
}

// UpdateLastLogin stamps the user's last-login timestamp with now.
func (db *DB) UpdateLastLogin(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC()
	return db.Update(ctx, id, repository.UserUpdate{LastLoginAt: &now})
}

// Delete removes a user. Returns true if a row was deleted.
func (db *DB) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected deleting user %d: %w", id, err)
	}
	return n > 0, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		u         model.User
		hash      sql.NullString
		googleID  sql.NullString
		avatar    sql.NullString
		lastLogin sql.NullTime
	)

	err := s.Scan(
		&u.ID,
		&u.Email,
		&hash,
		&u.Name,
		&googleID,
		&avatar,
		&u.Provider,
		&u.Verified,
		&u.Active,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if hash.Valid {
		u.PasswordHash = &hash.String
	}
	if googleID.Valid {
		u.GoogleID = &googleID.String
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}

	return &u, nil
}

// isUniqueViolation detects sqlite UNIQUE constraint errors. modernc.org/sqlite
// surfaces the C library's message text; matching on it avoids importing the
// lib package for one extended result code.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func uniqueViolationKey(err error, user *model.User) string {
	if strings.Contains(err.Error(), "users.google_id") && user.GoogleID != nil {
		return "google_id " + *user.GoogleID
	}
	return "email " + user.Email
}
