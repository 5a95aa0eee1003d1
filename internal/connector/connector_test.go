package connector

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/identity"
	"github.com/ritza-co/legacy-auth-bridge/internal/model"
	"github.com/ritza-co/legacy-auth-bridge/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository keyed by stored email.
// Set failWith to simulate a store outage.
type fakeUserRepo struct {
	byEmail  map[string]*model.User
	failWith error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{byEmail: make(map[string]*model.User)}
	for _, u := range users {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User, pw string) error {
	return errors.New("not implemented")
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeUserRepo) GetByGoogleID(ctx context.Context, id string) (*model.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeUserRepo) Update(ctx context.Context, id int64, upd repository.UserUpdate) (bool, error) {
	return false, errors.New("not implemented")
}
func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id int64) (bool, error) {
	return false, errors.New("not implemented")
}
func (f *fakeUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return false, errors.New("not implemented")
}

var (
	testCreated   = time.Date(2023, 1, 15, 10, 0, 0, 0, time.UTC)
	testUpdated   = time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)
	testLastLogin = time.Date(2024, 2, 20, 8, 45, 0, 0, time.UTC)
	testNow       = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
)

// newTestUser returns the canonical local user most tests authenticate:
// id 7, a@b.com, password "secret", name "Jane Doe".
func newTestUser(t *testing.T) *model.User {
	t.Helper()

	hash, err := auth.NewPasswordServiceForTest(4).Hash("secret")
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}

	login := testLastLogin
	return &model.User{
		ID:           7,
		Email:        "a@b.com",
		PasswordHash: &hash,
		Name:         "Jane Doe",
		Provider:     model.ProviderLocal,
		Verified:     true,
		Active:       true,
		LastLoginAt:  &login,
		CreatedAt:    testCreated,
		UpdatedAt:    testUpdated,
	}
}

// newTestBridge wires a Bridge with a pinned clock and registration ID so
// exports are fully comparable.
func newTestBridge(t *testing.T, repo *fakeUserRepo) *Bridge {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	b := New(repo, auth.NewCredentialVerifier(), logger, time.Second)
	b.clock = func() time.Time { return testNow }
	b.newRegistrationID = func() string { return "11111111-2222-3333-4444-555555555555" }
	return b
}

func TestAuthenticate_Success(t *testing.T) {
	user := newTestUser(t)
	b := newTestBridge(t, newFakeUserRepo(user))

	// Mixed-case loginId — the bridge lower-cases before lookup.
	export, err := b.Authenticate(context.Background(), "A@B.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if want := identity.DeriveUserUUID(7); export.ID != want {
		t.Errorf("ID = %q, want %q", export.ID, want)
	}
	if export.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", export.Email, "a@b.com")
	}
	if export.Username != "a@b.com" {
		t.Errorf("Username = %q, want %q", export.Username, "a@b.com")
	}
	if export.Password != "secret" {
		t.Errorf("Password = %q, want the original plaintext", export.Password)
	}
	if export.PasswordChangeRequired {
		t.Error("PasswordChangeRequired = true, want false")
	}
	if export.FullName != "Jane Doe" || export.FirstName != "Jane" || export.LastName != "Doe" {
		t.Errorf("name fields = %q/%q/%q", export.FullName, export.FirstName, export.LastName)
	}
	if !export.Verified || !export.Active {
		t.Errorf("Verified/Active = %v/%v, want true/true", export.Verified, export.Active)
	}

	if export.InsertInstant != testCreated.UnixMilli() {
		t.Errorf("InsertInstant = %d, want %d", export.InsertInstant, testCreated.UnixMilli())
	}
	if export.LastUpdateInstant != testUpdated.UnixMilli() {
		t.Errorf("LastUpdateInstant = %d, want %d", export.LastUpdateInstant, testUpdated.UnixMilli())
	}
	if export.LastLoginInstant != testLastLogin.UnixMilli() {
		t.Errorf("LastLoginInstant = %d, want %d", export.LastLoginInstant, testLastLogin.UnixMilli())
	}

	if len(export.Registrations) != 1 {
		t.Fatalf("Registrations count = %d, want 1", len(export.Registrations))
	}
	reg := export.Registrations[0]
	if reg.ID != "11111111-2222-3333-4444-555555555555" {
		t.Errorf("Registration.ID = %q", reg.ID)
	}
	if reg.ApplicationID != ApplicationID {
		t.Errorf("Registration.ApplicationID = %q, want %q", reg.ApplicationID, ApplicationID)
	}
	if !reg.Verified {
		t.Error("Registration.Verified = false, want true")
	}
	if len(reg.Roles) != 1 || reg.Roles[0] != DefaultRole {
		t.Errorf("Registration.Roles = %v, want [%q]", reg.Roles, DefaultRole)
	}

	data := export.Data
	if data.MigratedFrom != "local_authentication" {
		t.Errorf("Data.MigratedFrom = %q", data.MigratedFrom)
	}
	if data.OriginalID != 7 {
		t.Errorf("Data.OriginalID = %d, want 7", data.OriginalID)
	}
	if !data.MigratedAt.Equal(testNow) {
		t.Errorf("Data.MigratedAt = %v, want %v", data.MigratedAt, testNow)
	}
	if data.Provider != model.ProviderLocal {
		t.Errorf("Data.Provider = %q", data.Provider)
	}
	if !data.CreatedAt.Equal(testCreated) || !data.UpdatedAt.Equal(testUpdated) {
		t.Errorf("Data timestamps = %v/%v", data.CreatedAt, data.UpdatedAt)
	}
	if data.MigrationNote == "" {
		t.Error("Data.MigrationNote is empty")
	}
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	b := newTestBridge(t, newFakeUserRepo(newTestUser(t)))

	tests := []struct {
		name    string
		loginID string
		secret  string
	}{
		{"empty loginId", "", "secret"},
		{"empty password", "a@b.com", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Authenticate(context.Background(), tt.loginID, tt.secret)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Authenticate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAuthenticate_UnknownUserAndWrongPasswordAreIndistinguishable(t *testing.T) {
	b := newTestBridge(t, newFakeUserRepo(newTestUser(t)))

	_, unknownErr := b.Authenticate(context.Background(), "nobody@b.com", "secret")
	_, wrongPwErr := b.Authenticate(context.Background(), "a@b.com", "wrong-password")

	if !errors.Is(unknownErr, apperror.ErrNotFound) {
		t.Errorf("unknown user error = %v, want ErrNotFound", unknownErr)
	}
	if !errors.Is(wrongPwErr, apperror.ErrNotFound) {
		t.Errorf("wrong password error = %v, want ErrNotFound", wrongPwErr)
	}

	// Anti-enumeration: identical classification AND identical message.
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownErr.Error(), wrongPwErr.Error())
	}
}

func TestAuthenticate_FederatedUserNeverAuthenticates(t *testing.T) {
	gid := "google-123"
	hash, _ := auth.NewPasswordServiceForTest(4).Hash("secret")
	federated := &model.User{
		ID:           8,
		Email:        "fed@b.com",
		PasswordHash: &hash, // even with a hash present
		GoogleID:     &gid,
		Provider:     model.ProviderGoogle,
		Verified:     true,
		Active:       true,
	}
	b := newTestBridge(t, newFakeUserRepo(federated))

	_, err := b.Authenticate(context.Background(), "fed@b.com", "secret")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("federated login error = %v, want ErrNotFound", err)
	}
}

func TestAuthenticate_StoreFailureIsInternal(t *testing.T) {
	repo := newFakeUserRepo()
	repo.failWith = errors.New("disk on fire")
	b := newTestBridge(t, repo)

	_, err := b.Authenticate(context.Background(), "a@b.com", "secret")
	if err == nil {
		t.Fatal("Authenticate() returned nil error on store failure")
	}
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation) {
		t.Errorf("store failure classified as business error: %v", err)
	}
}

func TestAuthenticate_MissingTimestampsDefaultToNow(t *testing.T) {
	user := newTestUser(t)
	user.LastLoginAt = nil
	user.CreatedAt = time.Time{}
	user.UpdatedAt = time.Time{}
	b := newTestBridge(t, newFakeUserRepo(user))

	export, err := b.Authenticate(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	want := testNow.UnixMilli()
	if export.InsertInstant != want {
		t.Errorf("InsertInstant = %d, want now (%d)", export.InsertInstant, want)
	}
	if export.LastUpdateInstant != want {
		t.Errorf("LastUpdateInstant = %d, want now (%d)", export.LastUpdateInstant, want)
	}
	if export.LastLoginInstant != want {
		t.Errorf("LastLoginInstant = %d, want now (%d)", export.LastLoginInstant, want)
	}
}

func TestAuthenticate_RepeatedCallsExportSameIdentity(t *testing.T) {
	user := newTestUser(t)
	repo := newFakeUserRepo(user)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// Real registration ID generator here: the identity UUID must repeat,
	// the registration ID must not.
	b := New(repo, auth.NewCredentialVerifier(), logger, time.Second)

	first, err := b.Authenticate(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("first Authenticate() error = %v", err)
	}
	second, err := b.Authenticate(context.Background(), "a@b.com", "secret")
	if err != nil {
		t.Fatalf("second Authenticate() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("export IDs differ across calls: %q vs %q", first.ID, second.ID)
	}
	if first.Registrations[0].ID == second.Registrations[0].ID {
		t.Error("registration IDs repeated across calls; they must be fresh randomness")
	}
}
