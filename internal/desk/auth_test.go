// ABOUTME: Tests for login, logout and forgot-password handlers
// ABOUTME: Exercises the full cookie flow against a seeded temp-dir store

package desk

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_SeededAdminReachesDashboard(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login("admin", "admin123")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotEmpty(t, env.cookie(SessionCookieName))

	dash := env.follow(resp)
	require.Equal(t, http.StatusOK, dash.StatusCode)

	page := readBody(t, dash)
	assert.Contains(t, page, "Login successful")
	assert.Contains(t, page, "Skyline Heights Residency")
	assert.Contains(t, page, "Signed in as admin")

	assert.Contains(t, scrapeMetrics(t, env.metrics), `frontdesk_logins_total{result="success"} 1`)
}

func TestLogin_TrimsInput(t *testing.T) {
	env := newTestEnv(t)

	resp := env.login("  admin ", " admin123  ")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "wrong"},
		{"unknown user", "nobody", "admin123"},
		{"empty fields", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp := env.login(tt.username, tt.password)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			page := readBody(t, resp)
			assert.Contains(t, page, "Invalid username or password")
			assert.Empty(t, env.cookie(SessionCookieName))

			// Still locked out
			assert.Equal(t, http.StatusSeeOther, env.get("/").StatusCode)
		})
	}
}

func TestLogin_MissingCSRF(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postRaw("/login", url.Values{"username": {"admin"}, "password": {"admin123"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid request, please try again")
	assert.Empty(t, env.cookie(SessionCookieName))
}

func TestLoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()

	resp := env.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLoginPage_Renders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/login")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	page := readBody(t, resp)
	assert.Contains(t, page, `name="csrf_token"`)
	assert.Contains(t, page, `href="/forgot-password"`)
	assert.NotEmpty(t, env.cookie(CSRFCookieName))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()
	sessionID := env.cookie(SessionCookieName)
	require.NotEmpty(t, sessionID)

	resp := env.get("/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Empty(t, env.cookie(SessionCookieName))

	page := readBody(t, env.follow(resp))
	assert.Contains(t, page, "Logged out successfully")

	// Session row is gone server-side too
	_, err := env.store.GetSession(context.Background(), sessionID)
	assert.Error(t, err)

	assert.Equal(t, http.StatusSeeOther, env.get("/residents").StatusCode)
}

func TestLogout_WithoutSession(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/logout")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestForgotPassword_ChangesPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post("/forgot-password", url.Values{
		"username":     {"admin"},
		"new_password": {"n3w-pass"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	page := readBody(t, env.follow(resp))
	assert.Contains(t, page, "Password updated. Please log in with your new password.")

	resp = env.login("admin", "admin123")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "old password must fail")

	resp = env.login("admin", "n3w-pass")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "new password must succeed")

	assert.Contains(t, scrapeMetrics(t, env.metrics), "frontdesk_password_resets_total 1")
}

func TestForgotPassword_RevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	env.mustLogin()
	require.Equal(t, http.StatusOK, env.get("/residents").StatusCode)

	resp := env.post("/forgot-password", url.Values{
		"username":     {"admin"},
		"new_password": {"another"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	assert.Equal(t, http.StatusSeeOther, env.get("/residents").StatusCode)
}

func TestForgotPassword_Errors(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "missing username",
			form:    url.Values{"new_password": {"x"}},
			message: "Username and new password are required",
		},
		{
			name:    "missing password",
			form:    url.Values{"username": {"admin"}, "new_password": {"   "}},
			message: "Username and new password are required",
		},
		{
			name:    "unknown user",
			form:    url.Values{"username": {"ghost"}, "new_password": {"x"}},
			message: "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			resp := env.post("/forgot-password", tt.form)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			assert.Equal(t, "/forgot-password", resp.Header.Get("Location"))

			page := readBody(t, env.follow(resp))
			assert.Contains(t, page, tt.message)

			// Original password untouched
			assert.Equal(t, http.StatusSeeOther, env.login("admin", "admin123").StatusCode)
		})
	}
}

func TestForgotPassword_Disabled(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.AllowPasswordReset = false })

	assert.Equal(t, http.StatusNotFound, env.get("/forgot-password").StatusCode)

	resp := env.post("/forgot-password", url.Values{"username": {"admin"}, "new_password": {"x"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	page := readBody(t, env.get("/login"))
	assert.NotContains(t, page, `href="/forgot-password"`)

	assert.Equal(t, http.StatusSeeOther, env.login("admin", "admin123").StatusCode)
}
