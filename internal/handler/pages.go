// Package handler contains the HTTP request handlers: server-rendered pages,
// the auth flows, user administration, and the migration connector endpoint.
//
// Handlers are glue — they parse requests, call a service, and write a
// response. Business rules live in internal/service and internal/connector.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/model"
	"github.com/ritza-co/legacy-auth-bridge/internal/service"
)

// Renderer holds the parsed page templates, parsed once at startup.
//
// Every page file defines its own top-level template (named after the file),
// and pulls shared chrome from the "header"/"footer" partials in base.html.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewRenderer parses all templates in templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	tmpl, err := template.ParseGlob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	return &Renderer{templates: tmpl, logger: logger}, nil
}

// pageData is what every template receives: the logged-in user (nil for
// anonymous visitors), flash-style messages carried in redirect query
// params, and any page-specific payload.
type pageData struct {
	User    *model.User
	Error   string
	Success string
	Data    any
}

// Render executes the named page template.
func (rn *Renderer) Render(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := rn.templates.ExecuteTemplate(w, name, data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// PageHandler serves the public pages.
type PageHandler struct {
	service  *service.AuthService
	renderer *Renderer
	logger   *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(svc *service.AuthService, renderer *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{service: svc, renderer: renderer, logger: logger}
}

// HandleHome serves the landing page.
//
// HTTP: GET /
// Auth: optional — logged-in visitors get their profile in the header.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "index.html", pageData{
		User:    currentUser(r, h.service),
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
	})
}

// currentUser loads the logged-in user's record, or nil for anonymous
// requests (or when the record vanished after the cookie was issued).
func currentUser(r *http.Request, svc *service.AuthService) *model.User {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	user, err := svc.GetUserByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}
