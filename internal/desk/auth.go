// ABOUTME: Login, logout and forgot-password handlers
// ABOUTME: Login failures share one generic message; password reset is logged at WARN on every use

package desk

import (
	"errors"
	"net/http"
	"strings"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/metrics"
	"github.com/2389/frontdesk/internal/store"
)

const invalidCredentialsMessage = "Invalid username or password"

// handleLoginPage renders the login page
func (d *Desk) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go to the dashboard
	if _, err := d.identityFromSession(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	d.renderLoginPage(w, r, http.StatusOK, "")
}

// handleLogin processes login form submission
func (d *Desk) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		d.notify(r, auth.NoticeError, "Invalid form data")
		d.renderLoginPage(w, r, http.StatusBadRequest, "")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := strings.TrimSpace(r.FormValue("password"))

	if !d.validateCSRF(r) {
		d.notify(r, auth.NoticeError, "Invalid request, please try again")
		d.renderLoginPage(w, r, http.StatusOK, username)
		return
	}

	user, err := auth.Authenticate(r.Context(), d.store, username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			d.metrics.Login(metrics.LoginFailure)
			d.logger.Info("login failed", "username", username)
			d.notify(r, auth.NoticeError, invalidCredentialsMessage)
			d.renderLoginPage(w, r, http.StatusOK, username)
			return
		}
		d.serverError(w, r, "failed to authenticate", err)
		return
	}

	if err := d.createSession(r.Context(), w, r, user); err != nil {
		d.serverError(w, r, "failed to create session", err)
		return
	}

	d.metrics.Login(metrics.LoginSuccess)
	d.logger.Info("login successful", "username", user.Username)
	d.notify(r, auth.NoticeSuccess, "Login successful")
	d.redirect(w, r, "/")
}

// handleLogout ends the session. The cookie is cleared even if no session exists.
func (d *Desk) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := d.store.DeleteSession(r.Context(), cookie.Value); err != nil {
			d.logger.Error("failed to delete session", "error", err)
		}
	}

	clearCookie(w, SessionCookieName)

	d.notify(r, auth.NoticeSuccess, "Logged out successfully")
	d.redirect(w, r, "/login")
}

// handleForgotPasswordPage renders the reset form
func (d *Desk) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	if !d.config.AllowPasswordReset {
		http.NotFound(w, r)
		return
	}
	d.renderForgotPasswordPage(w, r)
}

// handleForgotPassword overwrites a user's password given only the username.
// There is no identity check beyond knowing the username.
func (d *Desk) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !d.config.AllowPasswordReset {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		d.notify(r, auth.NoticeError, "Invalid form data")
		d.redirect(w, r, "/forgot-password")
		return
	}

	if !d.checkCSRF(w, r, "/forgot-password") {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	newPassword := strings.TrimSpace(r.FormValue("new_password"))

	if username == "" || newPassword == "" {
		d.notify(r, auth.NoticeError, "Username and new password are required")
		d.redirect(w, r, "/forgot-password")
		return
	}

	ctx := r.Context()
	user, err := d.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			d.notify(r, auth.NoticeError, "User not found")
			d.redirect(w, r, "/forgot-password")
			return
		}
		d.serverError(w, r, "failed to get user", err)
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		d.serverError(w, r, "failed to hash password", err)
		return
	}

	if err := d.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		d.serverError(w, r, "failed to update password", err)
		return
	}

	// Existing sessions belong to whoever knew the old password
	if _, err := d.store.DeleteUserSessions(ctx, user.ID); err != nil {
		d.logger.Error("failed to revoke sessions after password reset", "error", err)
	}

	d.metrics.PasswordReset()
	d.logger.Warn("password reset without identity verification",
		"username", user.Username,
		"remote_addr", r.RemoteAddr,
	)

	d.notify(r, auth.NoticeSuccess, "Password updated. Please log in with your new password.")
	d.redirect(w, r, "/login")
}
