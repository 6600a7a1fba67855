package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
	"github.com/erazemk/refoundly/internal/store"
)

// dashboardItems is the number of published reports on the user dashboard.
const dashboardItems = 6

// userPage builds the page data for a logged-in user. It returns false
// after redirecting when the session's user no longer exists.
func (s *Server) userPage(w http.ResponseWriter, r *http.Request, title, nav string) (PageData, bool) {
	sess := session.FromContext(r.Context())
	user, err := store.GetUser(r.Context(), s.Auth.DB, sess.UserID)
	if err != nil {
		slog.Error("failed to load page user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return PageData{}, false
	}
	if user == nil {
		sess.Destroy()
		if err := s.Sessions.Save(r.Context(), w, sess); err != nil {
			slog.Error("failed to drop stale session", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return PageData{}, false
	}

	token, err := s.Sessions.CSRFToken(r.Context(), w, sess)
	if err != nil {
		slog.Error("failed to issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return PageData{}, false
	}
	return PageData{Title: title, Nav: nav, User: user, CSRF: token}, true
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request, title, nav string) (PageData, bool) {
	sess := session.FromContext(r.Context())
	token, err := s.Sessions.CSRFToken(r.Context(), w, sess)
	if err != nil {
		slog.Error("failed to issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return PageData{}, false
	}
	return PageData{Title: title, Nav: nav, Admin: sess.Admin, CSRF: token}, true
}

// IndexPage handles GET /. Logged-in users go straight to their dashboard.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsUser() {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.Templates.Render(w, "index.html", &PageData{Title: "Welcome"})
}

// VerifyPage handles GET /verify.
func (s *Server) VerifyPage(w http.ResponseWriter, r *http.Request) {
	if !session.FromContext(r.Context()).HasPendingOTP() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.Templates.Render(w, "verify.html", &PageData{Title: "Verify login"})
}

// AdminLoginPage handles GET /admin/login.
func (s *Server) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	s.Templates.Render(w, "admin_login.html", &PageData{Title: "Admin login"})
}

// DashboardPage handles GET /dashboard.
func (s *Server) DashboardPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.userPage(w, r, "Dashboard", "dashboard")
	if !ok {
		return
	}

	items, err := s.Reports.Published(r.Context())
	if err != nil {
		slog.Error("failed to list published items", "error", err)
	}
	if len(items) > dashboardItems {
		items = items[:dashboardItems]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: data,
		Items:    items,
	})
}

// ItemsPage returns the handler for GET /lost and GET /found.
func (s *Server) ItemsPage(reportType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.userPage(w, r, reportType+" items", reportType)
		if !ok {
			return
		}

		items, err := s.Reports.ByType(r.Context(), reportType)
		if err != nil {
			slog.Error("failed to list items", "type", reportType, "error", err)
		}

		s.Templates.Render(w, "items.html", &struct {
			PageData
			ReportType string
			Items      []model.Item
		}{
			PageData:   data,
			ReportType: reportType,
			Items:      items,
		})
	}
}

// HistoryPage handles GET /history.
func (s *Server) HistoryPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.userPage(w, r, "My reports", "history")
	if !ok {
		return
	}

	items, err := s.Reports.OwnedBy(r.Context(), data.User.ID)
	if err != nil {
		slog.Error("failed to list user items", "error", err)
	}

	s.Templates.Render(w, "history.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: data,
		Items:    items,
	})
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.userPage(w, r, "Report an item", "report")
	if !ok {
		return
	}
	s.Templates.Render(w, "report.html", &struct {
		PageData
		ReportTypes []string
	}{
		PageData:    data,
		ReportTypes: []string{model.ReportLost, model.ReportFound},
	})
}

// AccountPage handles GET /account.
func (s *Server) AccountPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.userPage(w, r, "Account", "account")
	if !ok {
		return
	}
	s.Templates.Render(w, "account.html", &data)
}

// AdminPage handles GET /admin.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.adminPage(w, r, "Admin dashboard", "admin")
	if !ok {
		return
	}

	stats, err := s.Reports.Stats(r.Context())
	if err != nil {
		slog.Error("failed to get item stats", "error", err)
		stats = &store.ItemStats{}
	}
	recent, err := s.Reports.Recent(r.Context(), 5)
	if err != nil {
		slog.Error("failed to list recent items", "error", err)
	}
	pending, err := s.Reports.Pending(r.Context())
	if err != nil {
		slog.Error("failed to count pending items", "error", err)
		pending = &reports.PendingSummary{}
	}
	accounts, err := s.Auth.Accounts(r.Context())
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
	}

	s.Templates.Render(w, "admin.html", &struct {
		PageData
		Stats    *store.ItemStats
		Recent   []model.Item
		Pending  *reports.PendingSummary
		Accounts []model.Account
	}{
		PageData: data,
		Stats:    stats,
		Recent:   recent,
		Pending:  pending,
		Accounts: accounts,
	})
}

// AdminReportsPage handles GET /admin/reports.
func (s *Server) AdminReportsPage(w http.ResponseWriter, r *http.Request) {
	data, ok := s.adminPage(w, r, "All reports", "reports")
	if !ok {
		return
	}

	items, err := s.Reports.All(r.Context())
	if err != nil {
		slog.Error("failed to list all items", "error", err)
	}

	s.Templates.Render(w, "admin_reports.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: data,
		Items:    items,
	})
}
