// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains all server configuration parameters.
//
// SESSION_SECRET has no default on purpose: login is disabled when it is
// unset, and the server logs a warning instead of inventing a weak secret.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	DBPath      string `env:"DB_PATH" envDefault:"data/users.db"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"web/templates"`

	SessionSecret string `env:"SESSION_SECRET"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"12"`

	// Bound on each connector store call; expiry is reported to the
	// external caller as an internal error.
	ConnectorStoreTimeoutSeconds int `env:"CONNECTOR_STORE_TIMEOUT" envDefault:"5"`

	Google Google `envPrefix:"GOOGLE_"`
}

// Google contains the OAuth client credentials from the Google Cloud console.
// CallbackURL defaults per-port in main when unset.
type Google struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
