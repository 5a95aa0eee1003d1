package connector

import "time"

// ExportIdentity is the record handed to the external identity system on a
// successful connector call. It is computed per call and never persisted;
// the ID field is a deterministic function of the internal user ID alone,
// so repeated calls for one user always export one external identity.
//
// Field names and JSON shape follow the FusionAuth user schema — this is a
// wire contract, not an internal type. Don't rename tags.
type ExportIdentity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`

	// Password carries the original plaintext secret from this request so
	// the external system can hash it under its own policy. Intentional
	// one-time credential transfer — not a pattern to copy anywhere else,
	// and never to be written to logs.
	Password               string `json:"password"`
	PasswordChangeRequired bool   `json:"passwordChangeRequired"`

	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
	Verified  bool   `json:"verified"`
	Active    bool   `json:"active"`

	// Epoch milliseconds, per the external schema.
	InsertInstant     int64 `json:"insertInstant"`
	LastUpdateInstant int64 `json:"lastUpdateInstant"`
	LastLoginInstant  int64 `json:"lastLoginInstant"`

	Registrations []Registration `json:"registrations"`
	Data          MigrationData  `json:"data"`
}

// Registration associates the exported user with the application inside the
// external system. The ID is a fresh random UUID per call.
type Registration struct {
	ID            string   `json:"id"`
	ApplicationID string   `json:"applicationId"`
	Verified      bool     `json:"verified"`
	Roles         []string `json:"roles"`
}

// MigrationData records provenance so the migrated account can always be
// traced back to its legacy row.
type MigrationData struct {
	MigratedFrom  string    `json:"migrated_from"`
	OriginalID    int64     `json:"original_id"`
	MigratedAt    time.Time `json:"migrated_at"`
	Provider      string    `json:"provider"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	MigrationNote string    `json:"migration_note"`
}
