package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
	webembed "github.com/erazemk/refoundly/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"statusClass": func(status string) string {
			switch status {
			case model.StatusPending:
				return "text-bg-warning"
			case model.StatusPublished:
				return "text-bg-primary"
			case model.StatusDenied:
				return "text-bg-danger"
			case model.StatusResolved:
				return "text-bg-success"
			default:
				return "text-bg-secondary"
			}
		},
		"date": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
		"nextStatuses": nextStatuses,
	}
}

// nextStatuses lists the statuses an admin can move an item to.
func nextStatuses(from string) []string {
	var out []string
	for _, to := range []string{model.StatusPublished, model.StatusDenied, model.StatusResolved} {
		if to != from && model.CanTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

var pages = []string{
	"index.html",
	"verify.html",
	"dashboard.html",
	"items.html",
	"history.html",
	"report.html",
	"account.html",
	"admin_login.html",
	"admin.html",
	"admin_reports.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title string
	Nav   string
	User  *model.User
	Admin *session.AdminIdentity
	CSRF  string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Templates *Templates
	Auth      *auth.Service
	Reports   *reports.Service
	Sessions  *session.Manager
}
