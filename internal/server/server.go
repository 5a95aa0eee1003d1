// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer — the composition root where every
// dependency is assembled in one place:
//
//	sqlite.DB → AuthService / connector.Bridge → handlers → routes
//
// Each layer only receives what it needs: the service gets the repository
// interface (not the concrete sqlite.DB), handlers get services, and the
// router only ever sees http.HandlerFunc values.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/connector"
	"github.com/ritza-co/legacy-auth-bridge/internal/handler"
	"github.com/ritza-co/legacy-auth-bridge/internal/middleware"
	sqliteRepo "github.com/ritza-co/legacy-auth-bridge/internal/repository/sqlite"
	"github.com/ritza-co/legacy-auth-bridge/internal/service"
)

// Config holds server configuration, translated from environment variables in
// main. Zero values fall back to package defaults where one exists.
type Config struct {
	Port        int
	TemplateDir string
	DBPath      string

	// SessionSecret signs session cookies. When empty, login and every
	// session-gated page are disabled; the connector endpoint still works,
	// so a migration-only deployment needs no secret at all.
	SessionSecret string

	BcryptCost            int
	ConnectorStoreTimeout time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

// Server represents the HTTP server and all its dependencies. It owns the
// database connection and closes it during shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the service and handler
// graph, and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	db, err := sqliteRepo.New(cfg.DBPath, passwords)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                          → landing page
//	GET  /login, POST /login        → local login
//	GET  /register, POST /register  → registration
//	GET  /logout                    → clear session
//	GET  /auth/google               → start Google OAuth
//	GET  /auth/google/callback      → finish Google OAuth
//	GET  /dashboard                 → dashboard (auth required)
//	GET  /profile, POST /profile    → profile (auth required)
//	GET  /users                     → user management (auth required)
//	POST /users/{id}/delete         → delete user (auth required)
//	POST /users/{id}/toggle-active  → toggle active flag (auth required)
//	POST /fusionauth/connector      → migration connector (no session auth)
//
// Middleware order matters: RequestID and RealIP first so the logger and
// recoverer see them, Recoverer before our handlers so panics become 500s.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	renderer, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	verifier := auth.NewCredentialVerifier()

	// Sessions are only available with a signing secret. main already warned
	// about the degraded mode; here we just wire what we can.
	var tokens *auth.TokenService
	if s.config.SessionSecret != "" {
		tokens, err = auth.NewTokenService(s.config.SessionSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
	}

	var google *auth.GoogleProvider
	if s.config.GoogleClientID != "" && s.config.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(
			s.config.GoogleClientID,
			s.config.GoogleClientSecret,
			s.config.GoogleCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db, tokens, verifier, s.logger)

	pageHandler := handler.NewPageHandler(authService, renderer, s.logger)
	authHandler := handler.NewAuthHandler(authService, google, renderer, s.logger)
	dashHandler := handler.NewDashboardHandler(authService, renderer, s.logger)

	// === Connector endpoint ===
	// No session middleware here: the external identity system calls it
	// directly with the credentials in the body.
	bridge := connector.New(s.db, verifier, s.logger, s.config.ConnectorStoreTimeout)
	connectorHandler := handler.NewConnectorHandler(bridge, s.logger)
	s.router.Post("/fusionauth/connector", connectorHandler.HandleConnector)

	if tokens == nil {
		// Session-less mode: the connector still works, pages explain why
		// login is unavailable.
		s.router.Get("/", pageHandler.HandleHome)
		return nil
	}

	// === Public pages ===
	// OptionalAuth so logged-in visitors get their name in the header.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/", pageHandler.HandleHome)
		r.Get("/login", authHandler.HandleLoginPage)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/register", authHandler.HandleRegisterPage)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/logout", authHandler.HandleLogout)

		r.Get("/auth/google", authHandler.HandleGoogleLogin)
		r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	})

	// === Session-gated pages ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequirePageAuth(tokens))

		r.Get("/dashboard", dashHandler.HandleDashboard)
		r.Get("/profile", authHandler.HandleProfilePage)
		r.Post("/profile", authHandler.HandleProfileUpdate)
		r.Get("/users", dashHandler.HandleUsers)
		r.Post("/users/{id}/delete", dashHandler.HandleUserDelete)
		r.Post("/users/{id}/toggle-active", dashHandler.HandleUserToggleActive)
	})

	return nil
}

// Start starts the HTTP server and blocks until shutdown.
//
// Graceful shutdown: stop accepting connections, give in-flight requests 30
// seconds to finish, then close the database (flushes the WAL and releases
// the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
