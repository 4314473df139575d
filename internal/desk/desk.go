// ABOUTME: Front desk web UI: route table, session guard, CSRF and session cookies
// ABOUTME: Handlers for each area live in their own files in this package

package desk

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/metrics"
	"github.com/2389/frontdesk/internal/store"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "frontdesk_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "frontdesk_csrf"

	// NoticeCookieName carries one-shot notices across a redirect
	NoticeCookieName = "frontdesk_notice"
)

// Config holds desk UI configuration
type Config struct {
	// ComplexName is shown on the dashboard hero
	ComplexName string

	// HeroImageURL is the dashboard background image
	HeroImageURL string

	// SessionTTL bounds session lifetime. Zero means sessions never expire.
	SessionTTL time.Duration

	// AllowPasswordReset enables the username-only forgot-password form
	AllowPasswordReset bool

	// SecretKey signs notice cookies
	SecretKey []byte
}

// Desk handles the front desk routes
type Desk struct {
	store   store.Store
	metrics *metrics.Metrics
	notices *auth.NoticeSigner
	config  Config
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a new Desk handler. m may be nil when metrics are disabled.
func New(s store.Store, m *metrics.Metrics, cfg Config) *Desk {
	return &Desk{
		store:   s,
		metrics: m,
		notices: auth.NewNoticeSigner(cfg.SecretKey),
		config:  cfg,
		logger:  slog.Default().With("component", "desk"),
		now:     time.Now,
	}
}

// RegisterRoutes registers all desk routes on the given mux
func (d *Desk) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no session required)
	mux.HandleFunc("GET /login", d.page(d.handleLoginPage))
	mux.HandleFunc("POST /login", d.page(d.handleLogin))
	mux.HandleFunc("GET /logout", d.page(d.handleLogout))
	mux.HandleFunc("GET /forgot-password", d.page(d.handleForgotPasswordPage))
	mux.HandleFunc("POST /forgot-password", d.page(d.handleForgotPassword))

	// Protected routes (session required)
	mux.HandleFunc("GET /{$}", d.protected(d.handleDashboard))

	mux.HandleFunc("GET /visitors", d.protected(d.handleVisitors))
	mux.HandleFunc("POST /visitors/add", d.protected(d.handleAddVisitor))
	mux.HandleFunc("POST /visitors/checkout/{id}", d.protected(d.handleCheckoutVisitor))

	mux.HandleFunc("GET /residents", d.protected(d.handleResidents))
	mux.HandleFunc("POST /residents/add", d.protected(d.handleAddResident))

	mux.HandleFunc("GET /security-logs", d.protected(d.handleSecurityLogs))
	mux.HandleFunc("POST /security-logs/add", d.protected(d.handleStartShift))
	mux.HandleFunc("POST /security-logs/end/{id}", d.protected(d.handleEndShift))

	mux.HandleFunc("GET /help", d.protected(d.handleHelp))
	mux.HandleFunc("GET /help/{topic}", d.protected(d.handleHelp))
}

// page wraps a public handler with per-request state (notices, CSRF)
func (d *Desk) page(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = d.withState(w, r)
		next(w, r)
	}
}

// protected wraps a handler with per-request state and the session guard
func (d *Desk) protected(next http.HandlerFunc) http.HandlerFunc {
	return d.page(d.requireSession(next))
}

// requireSession redirects to the login page unless the request carries a
// valid session. The identity is attached to the request context.
func (d *Desk) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := d.identityFromSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := auth.WithIdentity(r.Context(), identity)
		next(w, r.WithContext(ctx))
	}
}

// identityFromSession resolves the session cookie to the logged-in user
func (d *Desk) identityFromSession(r *http.Request) (*auth.Identity, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	session, err := d.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	user, err := d.store.GetUser(r.Context(), session.UserID)
	if err != nil {
		return nil, err
	}

	return &auth.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: session.ID,
	}, nil
}

// ensureCSRFToken returns the CSRF token for this request, issuing a cookie if needed
func (d *Desk) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := auth.GenerateToken(32)
	if err != nil {
		d.logger.Error("failed to generate CSRF token", "error", err)
		return "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return token
}

// validateCSRF checks the CSRF token from the form against the cookie
func (d *Desk) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// checkCSRF validates the CSRF token on a mutating route. On failure it
// queues an error notice, redirects to back and returns false.
func (d *Desk) checkCSRF(w http.ResponseWriter, r *http.Request, back string) bool {
	if d.validateCSRF(r) {
		return true
	}
	d.logger.Warn("rejected request with invalid CSRF token", "path", r.URL.Path)
	d.notify(r, auth.NoticeError, "Invalid request, please try again")
	d.redirect(w, r, back)
	return false
}

// createSession creates a new session for a user and sets the cookie
func (d *Desk) createSession(ctx context.Context, w http.ResponseWriter, r *http.Request, user *store.User) error {
	sessionID, err := auth.GenerateToken(32)
	if err != nil {
		return err
	}

	now := d.now()
	session := &store.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
	}
	if d.config.SessionTTL > 0 {
		expires := now.Add(d.config.SessionTTL)
		session.ExpiresAt = &expires
	}

	if err := d.store.CreateSession(ctx, session); err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if session.ExpiresAt != nil {
		cookie.Expires = *session.ExpiresAt
	}
	http.SetCookie(w, cookie)

	return nil
}

// clearCookie expires a cookie on the client
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// pathID parses the {id} path segment. Non-integer ids are answered with 404.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// serverError logs a storage failure and answers 500
func (d *Desk) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	d.logger.Error(msg, "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
