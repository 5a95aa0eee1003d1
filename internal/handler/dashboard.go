package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/service"
)

// DashboardHandler serves the dashboard and the user-administration actions.
// Every registered user can see and manage the user list — this app predates
// any role system, which is exactly why it's being migrated.
type DashboardHandler struct {
	service  *service.AuthService
	renderer *Renderer
	logger   *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(svc *service.AuthService, renderer *Renderer, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, renderer: renderer, logger: logger}
}

// HandleDashboard serves the dashboard page with the full user list.
//
// HTTP: GET /dashboard
// Auth: required
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderUserList(w, r, "dashboard.html")
}

// HandleUsers serves the user management page.
//
// HTTP: GET /users
// Auth: required
func (h *DashboardHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	h.renderUserList(w, r, "users.html")
}

func (h *DashboardHandler) renderUserList(w http.ResponseWriter, r *http.Request, tmpl string) {
	user := currentUser(r, h.service)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		redirectWithError(w, r, "/", "Failed to load dashboard")
		return
	}

	h.renderer.Render(w, tmpl, pageData{
		User:    user,
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
		Data:    users,
	})
}

// HandleUserDelete deletes a user account.
//
// HTTP: POST /users/{id}/delete
// Auth: required; self-deletion is rejected by the service.
func (h *DashboardHandler) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), actorID, targetID); err != nil {
		redirectWithError(w, r, "/users", adminActionMessage(err, "Failed to delete user"))
		return
	}

	http.Redirect(w, r, "/users?success="+url.QueryEscape("User deleted successfully"), http.StatusSeeOther)
}

// HandleUserToggleActive flips a user's active flag.
//
// HTTP: POST /users/{id}/toggle-active
// Auth: required; self-deactivation is rejected by the service.
func (h *DashboardHandler) HandleUserToggleActive(w http.ResponseWriter, r *http.Request) {
	actorID, targetID, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}

	active, err := h.service.ToggleActive(r.Context(), actorID, targetID)
	if err != nil {
		redirectWithError(w, r, "/users", adminActionMessage(err, "Failed to update user status"))
		return
	}

	msg := "User deactivated successfully"
	if active {
		msg = "User activated successfully"
	}
	http.Redirect(w, r, "/users?success="+url.QueryEscape(msg), http.StatusSeeOther)
}

// actorAndTarget extracts the acting user from the session context and the
// target user from the {id} route param.
func (h *DashboardHandler) actorAndTarget(w http.ResponseWriter, r *http.Request) (actorID, targetID int64, ok bool) {
	actorID, authed := auth.UserIDFromContext(r.Context())
	if !authed {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return 0, 0, false
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/users", "Invalid user id")
		return 0, 0, false
	}

	return actorID, targetID, true
}

// adminActionMessage picks the flash message for a failed admin action:
// business failures show their own message, everything else a generic one.
func adminActionMessage(err error, fallback string) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) &&
		(errors.Is(err, apperror.ErrForbidden) || errors.Is(err, apperror.ErrNotFound)) {
		return appErr.Message
	}
	return fallback
}
