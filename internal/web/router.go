// Package web serves the server-rendered pages and their static assets.
package web

import (
	"net/http"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
	webembed "github.com/erazemk/refoundly/web"
)

// NewRouter creates the page router with all page routes registered.
func NewRouter(authSvc *auth.Service, reportsSvc *reports.Service, sessions *session.Manager) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Templates: templates,
		Auth:      authSvc,
		Reports:   reportsSvc,
		Sessions:  sessions,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public pages.
	mux.HandleFunc("GET /{$}", s.IndexPage)
	mux.HandleFunc("GET /verify", s.VerifyPage)
	mux.HandleFunc("GET /admin/login", s.AdminLoginPage)

	// User pages.
	mux.Handle("GET /dashboard", RequireUser(http.HandlerFunc(s.DashboardPage)))
	mux.Handle("GET /lost", RequireUser(s.ItemsPage(model.ReportLost)))
	mux.Handle("GET /found", RequireUser(s.ItemsPage(model.ReportFound)))
	mux.Handle("GET /history", RequireUser(http.HandlerFunc(s.HistoryPage)))
	mux.Handle("GET /report", RequireUser(http.HandlerFunc(s.ReportPage)))
	mux.Handle("GET /account", RequireUser(http.HandlerFunc(s.AccountPage)))

	// Admin pages.
	mux.Handle("GET /admin", RequireAdmin(http.HandlerFunc(s.AdminPage)))
	mux.Handle("GET /admin/reports", RequireAdmin(http.HandlerFunc(s.AdminReportsPage)))

	return mux, nil
}
