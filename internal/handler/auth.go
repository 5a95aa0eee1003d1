package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/xid"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/auth"
	"github.com/ritza-co/legacy-auth-bridge/internal/service"
)

// AuthHandler manages registration, local login, Google OAuth, logout, and
// the profile page.
//
// Feedback to the browser travels as redirect query params
// (?error=... / ?success=...) which the target page renders as a flash
// message — no server-side flash storage needed.
type AuthHandler struct {
	service  *service.AuthService
	google   *auth.GoogleProvider // nil when Google OAuth is not configured
	renderer *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. google may be nil; the Google
// routes then redirect to /login with an error message.
func NewAuthHandler(
	svc *service.AuthService,
	google *auth.GoogleProvider,
	renderer *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		service:  svc,
		google:   google,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleLoginPage serves the login form.
//
// HTTP: GET /login
// Already-authenticated visitors are sent to the dashboard instead.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, "login.html", pageData{
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
	})
}

// HandleLogin processes the login form.
//
// HTTP: POST /login (form fields: email, password)
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Invalid form submission")
		return
	}

	result, err := h.service.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrUnauthorized) {
			redirectWithError(w, r, "/login", appErr.Message)
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		redirectWithError(w, r, "/login", "Login failed. Please try again.")
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/dashboard?success="+url.QueryEscape("Successfully logged in!"), http.StatusSeeOther)
}

// HandleRegisterPage serves the registration form.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, "register.html", pageData{
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
	})
}

// HandleRegister processes the registration form.
//
// HTTP: POST /register (form fields: email, password, name)
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/register", "Invalid form submission")
		return
	}

	_, err := h.service.Register(r.Context(),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("name"),
	)
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			errors.As(err, &appErr)
			redirectWithError(w, r, "/register", appErr.Message)
		case errors.Is(err, apperror.ErrConflict):
			redirectWithError(w, r, "/register", "Email already registered")
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			redirectWithError(w, r, "/register", "Registration failed. Please try again.")
		}
		return
	}

	http.Redirect(w, r, "/login?success="+url.QueryEscape("Registration successful! Please log in."), http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/?success="+url.QueryEscape("Successfully logged out!"), http.StatusSeeOther)
}

// HandleGoogleLogin starts the Google OAuth flow.
//
// HTTP: GET /auth/google
//
// The random state nonce goes into a short-lived cookie; the callback
// verifies Google echoed it back, which ties the callback to a flow this
// server started.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		redirectWithError(w, r, "/login", "Google login is not configured")
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the Google OAuth flow.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		redirectWithError(w, r, "/login", "Google login is not configured")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch or missing state cookie")
		redirectWithError(w, r, "/login", "Invalid OAuth state")
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError(w, r, "/login", "Missing OAuth code")
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		redirectWithError(w, r, "/login", "Login failed. Please try again.")
		return
	}

	result, err := h.service.LoginOrRegisterGoogle(r.Context(), gUser)
	if err != nil {
		h.logger.Error("google callback: login failed",
			slog.String("googleID", gUser.ID),
			slog.String("error", err.Error()),
		)
		redirectWithError(w, r, "/login", "Login failed. Please try again.")
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/dashboard?success="+url.QueryEscape("Successfully logged in with Google!"), http.StatusSeeOther)
}

// HandleProfilePage serves the profile page.
//
// HTTP: GET /profile
// Auth: required
func (h *AuthHandler) HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r, h.service)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, "profile.html", pageData{
		User:    user,
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
	})
}

// HandleProfileUpdate processes the profile form.
//
// HTTP: POST /profile (form field: name)
// Auth: required
func (h *AuthHandler) HandleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/profile", "Invalid form submission")
		return
	}

	if err := h.service.UpdateProfile(r.Context(), userID, r.PostFormValue("name")); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			redirectWithError(w, r, "/profile", appErr.Message)
			return
		}
		h.logger.Error("profile update failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		redirectWithError(w, r, "/profile", "Profile update failed. Please try again.")
		return
	}

	http.Redirect(w, r, "/profile?success="+url.QueryEscape("Profile updated successfully!"), http.StatusSeeOther)
}

// setSessionCookie stores the session token in an HttpOnly cookie.
// HttpOnly keeps scripts away from it; SameSite=Lax keeps it off cross-site
// POSTs. Secure should be enabled behind HTTPS in production.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectWithError sends the browser to target with a flash-style error.
func redirectWithError(w http.ResponseWriter, r *http.Request, target, message string) {
	http.Redirect(w, r, target+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}
