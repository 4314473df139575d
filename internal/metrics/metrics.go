// ABOUTME: Prometheus counters and histograms for the front desk
// ABOUTME: Uses a private registry so tests and multiple servers don't collide

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Metrics holds every collector the desk exports. A nil *Metrics is valid
// and records nothing, so callers never need to check whether metrics are on.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	logins       *prometheus.CounterVec
	checkIns     prometheus.Counter
	checkOuts    prometheus.Counter
	shiftsStart  prometheus.Counter
	shiftsEnd    prometheus.Counter
	residents    prometheus.Counter
	resets       prometheus.Counter
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_http_requests_total",
				Help: "HTTP requests by route pattern, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "frontdesk_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "frontdesk_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_visitor_checkins_total",
			Help: "Visitors checked in",
		}),
		checkOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_visitor_checkouts_total",
			Help: "Visitors checked out (repeat check-outs are not counted)",
		}),
		shiftsStart: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_guard_shifts_started_total",
			Help: "Guard shifts started",
		}),
		shiftsEnd: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_guard_shifts_ended_total",
			Help: "Guard shifts ended (repeat ends are not counted)",
		}),
		residents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_residents_added_total",
			Help: "Residents added to the directory",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frontdesk_password_resets_total",
			Help: "Passwords overwritten through the forgot-password form",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.logins,
		m.checkIns,
		m.checkOuts,
		m.shiftsStart,
		m.shiftsEnd,
		m.residents,
		m.resets,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. route is the matched
// ServeMux pattern (or "unmatched") to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Login records a login attempt.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// VisitorCheckedIn records a check-in.
func (m *Metrics) VisitorCheckedIn() {
	if m == nil {
		return
	}
	m.checkIns.Inc()
}

// VisitorCheckedOut records a check-out that closed a visit.
func (m *Metrics) VisitorCheckedOut() {
	if m == nil {
		return
	}
	m.checkOuts.Inc()
}

// ShiftStarted records a new guard shift.
func (m *Metrics) ShiftStarted() {
	if m == nil {
		return
	}
	m.shiftsStart.Inc()
}

// ShiftEnded records a shift that was closed.
func (m *Metrics) ShiftEnded() {
	if m == nil {
		return
	}
	m.shiftsEnd.Inc()
}

// ResidentAdded records a new resident.
func (m *Metrics) ResidentAdded() {
	if m == nil {
		return
	}
	m.residents.Inc()
}

// PasswordReset records a forgot-password overwrite.
func (m *Metrics) PasswordReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}
