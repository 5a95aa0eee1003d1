package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultValues(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "data/users.db", cfg.DBPath)
	assert.Equal(t, "web/templates", cfg.TemplateDir)
	assert.Equal(t, "", cfg.SessionSecret)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.ConnectorStoreTimeoutSeconds)
	assert.Equal(t, "", cfg.Google.ClientID)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/var/lib/bridge/users.db")
	t.Setenv("SESSION_SECRET", "super-secret-session-key-123456")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CONNECTOR_STORE_TIMEOUT", "2")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://example.com/auth/google/callback")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/bridge/users.db", cfg.DBPath)
	assert.Equal(t, "super-secret-session-key-123456", cfg.SessionSecret)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 2, cfg.ConnectorStoreTimeoutSeconds)
	assert.Equal(t, "client-id", cfg.Google.ClientID)
	assert.Equal(t, "client-secret", cfg.Google.ClientSecret)
	assert.Equal(t, "https://example.com/auth/google/callback", cfg.Google.CallbackURL)
}

func TestNew_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := New()
	assert.Error(t, err)
}
