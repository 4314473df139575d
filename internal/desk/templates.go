// ABOUTME: Template rendering functions for the desk UI
// ABOUTME: Loads templates from the embedded filesystem and renders them inside base.html

package desk

import (
	"html/template"
	"net/http"
	"time"

	"github.com/2389/frontdesk/internal/assets"
	"github.com/2389/frontdesk/internal/auth"
	"github.com/2389/frontdesk/internal/store"
)

// displayLayout is how timestamps appear in the UI
const displayLayout = store.TimeLayout

var templateFuncs = template.FuncMap{
	"asset":     assets.URL,
	"timestamp": formatTimestamp,
}

// formatTimestamp renders a time.Time or *time.Time; nil and zero render empty
func formatTimestamp(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(displayLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(displayLayout)
	default:
		return ""
	}
}

// pageData is shared by every page
type pageData struct {
	Title     string
	Active    string
	User      *auth.Identity
	CSRFToken string
	Notices   []auth.Notice
}

// Template data types
type loginData struct {
	pageData
	Username           string
	AllowPasswordReset bool
}

type dashboardData struct {
	pageData
	ComplexName    string
	HeroImageURL   string
	DailyCount     int
	InsideCount    int
	TotalResidents int
	Recent         []store.RecentVisitor
}

type visitorsData struct {
	pageData
	Visitors []*store.Visitor
}

type residentsData struct {
	pageData
	Residents []*store.Resident
}

type securityLogsData struct {
	pageData
	Logs []*store.SecurityLog
}

type helpTopic struct {
	Slug   string
	Title  string
	Active bool
}

type helpData struct {
	pageData
	Topics  []helpTopic
	Content template.HTML
}

// newPageData fills the shared fields: identity, CSRF token and pending notices
func (d *Desk) newPageData(w http.ResponseWriter, r *http.Request, title, active string) pageData {
	return pageData{
		Title:     title,
		Active:    active,
		User:      auth.FromContext(r.Context()),
		CSRFToken: d.ensureCSRFToken(w, r),
		Notices:   takeNotices(r),
	}
}

// render executes base.html with the named page template
func (d *Desk) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl := template.Must(template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		d.logger.Error("failed to render page", "page", page, "error", err)
	}
}

// renderLoginPage renders the login page
func (d *Desk) renderLoginPage(w http.ResponseWriter, r *http.Request, status int, username string) {
	data := loginData{
		pageData:           d.newPageData(w, r, "Login", "login"),
		Username:           username,
		AllowPasswordReset: d.config.AllowPasswordReset,
	}
	d.render(w, status, "login.html", data)
}

// renderForgotPasswordPage renders the password reset form
func (d *Desk) renderForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	data := d.newPageData(w, r, "Forgot Password", "login")
	d.render(w, http.StatusOK, "forgot_password.html", data)
}

// renderDashboard renders the dashboard
func (d *Desk) renderDashboard(w http.ResponseWriter, r *http.Request, summary *store.DashboardSummary) {
	data := dashboardData{
		pageData:       d.newPageData(w, r, "Dashboard", "dashboard"),
		ComplexName:    d.config.ComplexName,
		HeroImageURL:   d.config.HeroImageURL,
		DailyCount:     summary.DailyCount,
		InsideCount:    summary.InsideCount,
		TotalResidents: summary.TotalResidents,
		Recent:         summary.Recent,
	}
	d.render(w, http.StatusOK, "dashboard.html", data)
}

// renderVisitors renders the visitor register
func (d *Desk) renderVisitors(w http.ResponseWriter, r *http.Request, visitors []*store.Visitor) {
	data := visitorsData{
		pageData: d.newPageData(w, r, "Visitors", "visitors"),
		Visitors: visitors,
	}
	d.render(w, http.StatusOK, "visitors.html", data)
}

// renderResidents renders the resident directory
func (d *Desk) renderResidents(w http.ResponseWriter, r *http.Request, residents []*store.Resident) {
	data := residentsData{
		pageData:  d.newPageData(w, r, "Resident List", "residents"),
		Residents: residents,
	}
	d.render(w, http.StatusOK, "residents.html", data)
}

// renderSecurityLogs renders the guard shift log
func (d *Desk) renderSecurityLogs(w http.ResponseWriter, r *http.Request, logs []*store.SecurityLog) {
	data := securityLogsData{
		pageData: d.newPageData(w, r, "Security Logs", "security-logs"),
		Logs:     logs,
	}
	d.render(w, http.StatusOK, "security_logs.html", data)
}
