// Package main is the entry point for the auth bridge server.
//
// main stays minimal: read configuration, create the logger, build the
// server, start it. Everything else lives in internal/.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ritza-co/legacy-auth-bridge/internal/config"
	"github.com/ritza-co/legacy-auth-bridge/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the data directory exists before sqlite tries to create the file.
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// SESSION_SECRET must be a long random string. Use:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// Without one the web login is disabled; the connector endpoint still
	// runs, which is all a migration-only deployment needs.
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set — web login is disabled, connector endpoint only")
	}

	callbackURL := cfg.Google.CallbackURL
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		logger.Warn("Google OAuth credentials not set — Google login is disabled")
	}

	srv, err := server.New(server.Config{
		Port:                  cfg.Port,
		TemplateDir:           cfg.TemplateDir,
		DBPath:                cfg.DBPath,
		SessionSecret:         cfg.SessionSecret,
		BcryptCost:            cfg.BcryptCost,
		ConnectorStoreTimeout: time.Duration(cfg.ConnectorStoreTimeoutSeconds) * time.Second,
		GoogleClientID:        cfg.Google.ClientID,
		GoogleClientSecret:    cfg.Google.ClientSecret,
		GoogleCallbackURL:     callbackURL,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
