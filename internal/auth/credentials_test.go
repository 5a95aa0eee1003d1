package auth

import (
	"testing"

	"github.com/ritza-co/legacy-auth-bridge/internal/model"
)

func strptr(s string) *string { return &s }

func TestCredentialVerifier(t *testing.T) {
	ps := newTestPasswordService()
	hash, err := ps.Hash("secret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	v := NewCredentialVerifier()

	tests := []struct {
		name   string
		user   *model.User
		secret string
		want   bool
	}{
		{
			name:   "local user with matching password",
			user:   &model.User{Provider: model.ProviderLocal, PasswordHash: &hash},
			secret: "secret",
			want:   true,
		},
		{
			name:   "local user with wrong password",
			user:   &model.User{Provider: model.ProviderLocal, PasswordHash: &hash},
			secret: "wrong",
			want:   false,
		},
		{
			name:   "local user without hash",
			user:   &model.User{Provider: model.ProviderLocal},
			secret: "secret",
			want:   false,
		},
		{
			// No fallback path: a federated record never passes local
			// verification even when a hash is present in the row.
			name:   "google user with hash present",
			user:   &model.User{Provider: model.ProviderGoogle, PasswordHash: &hash},
			secret: "secret",
			want:   false,
		},
		{
			name:   "google user without hash",
			user:   &model.User{Provider: model.ProviderGoogle},
			secret: "anything",
			want:   false,
		},
		{
			name:   "malformed stored hash fails cleanly",
			user:   &model.User{Provider: model.ProviderLocal, PasswordHash: strptr("garbage")},
			secret: "secret",
			want:   false,
		},
		{
			name:   "nil user",
			user:   nil,
			secret: "secret",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Verify(tt.user, tt.secret); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}
