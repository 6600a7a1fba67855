// Package api serves the JSON endpoints and assembles the HTTP handler
// chain shared with the pages.
package api

import (
	"net/http"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
)

// Deps are the services behind the API.
type Deps struct {
	Auth        *auth.Service
	Reports     *reports.Service
	Sessions    *session.Manager
	EnforceCSRF bool

	// MaxUploadBytes bounds a report image; the request body may carry
	// form fields on top.
	MaxUploadBytes int64
}

const formBodyLimit = 1 << 20

// NewRouter registers the API routes on a new mux. Requests matching no
// API route go to pages.
func NewRouter(d *Deps, pages http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Auth: d.Auth, Sessions: d.Sessions}
	reportsHandler := &ReportsHandler{Reports: d.Reports}
	adminHandler := &AdminHandler{Auth: d.Auth, Reports: d.Reports}

	csrf := RequireCSRF(d.Sessions, d.EnforceCSRF)
	small := LimitBody(formBodyLimit)
	upload := LimitBody(d.MaxUploadBytes + formBodyLimit)

	user := func(h http.HandlerFunc) http.Handler { return RequireUser(h) }
	admin := func(h http.HandlerFunc) http.Handler { return RequireAdmin(h) }

	// Public: account creation and login.
	mux.Handle("POST /register", small(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /login", small(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /verify-otp", small(http.HandlerFunc(authHandler.VerifyOTP)))
	mux.Handle("POST /admin/login", small(http.HandlerFunc(authHandler.AdminLogin)))
	mux.HandleFunc("GET /api/csrf-token", authHandler.CSRFToken)

	// Public: published listings and images.
	mux.HandleFunc("GET /api/items/published", reportsHandler.Published)
	mux.HandleFunc("GET /api/items/lost", reportsHandler.ByType(model.ReportLost))
	mux.HandleFunc("GET /api/items/found", reportsHandler.ByType(model.ReportFound))
	mux.HandleFunc("GET /api/items/{id}", reportsHandler.Get)
	mux.HandleFunc("GET /uploads/{key}", reportsHandler.Image)

	// Logout clears whatever session the cookie carries, including one
	// still waiting for its OTP.
	mux.Handle("POST /logout", small(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /admin/logout", small(http.HandlerFunc(authHandler.Logout)))

	// User session.
	mux.Handle("GET /user/me", user(authHandler.Me))
	mux.Handle("POST /submit-report", upload(RequireUser(csrf(http.HandlerFunc(reportsHandler.Submit)))))
	mux.Handle("GET /api/user-history", user(reportsHandler.History))

	// Admin session.
	mux.Handle("GET /admin/me", admin(authHandler.AdminMe))
	mux.Handle("GET /api/admin/items", admin(adminHandler.Items))
	mux.Handle("POST /api/admin/update-status", small(RequireAdmin(csrf(http.HandlerFunc(adminHandler.UpdateStatus)))))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("GET /api/admin/recent-activity", admin(adminHandler.RecentActivity))
	mux.Handle("GET /api/admin/analytics", admin(adminHandler.Analytics))
	mux.Handle("GET /api/admin/pending-count", admin(adminHandler.PendingCount))
	mux.Handle("GET /api/admin/audit-logs", admin(adminHandler.AuditLogs))
	mux.Handle("GET /api/admin-users/all", admin(adminHandler.Accounts))
	mux.Handle("POST /api/admin-users/suspend/{id}", small(RequireAdmin(csrf(http.HandlerFunc(adminHandler.Suspend)))))

	if pages != nil {
		mux.Handle("/", pages)
	}
	return mux
}

// Handler wraps the router in the shared middleware chain: request id,
// access log, security headers, session loading, metrics.
func Handler(d *Deps, pages http.Handler) http.Handler {
	var h http.Handler = obs.Instrument(NewRouter(d, pages))
	h = d.Sessions.Middleware(h)
	h = SecurityHeaders(h)
	h = LoggingMiddleware(h)
	h = RequestID(h)
	return h
}
