package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
	"github.com/erazemk/refoundly/internal/store"
)

// AdminHandler handles the admin dashboard endpoints.
type AdminHandler struct {
	Auth    *auth.Service
	Reports *reports.Service
}

type updateStatusRequest struct {
	ItemID    int64  `json:"itemId"`
	NewStatus string `json:"newStatus"`
}

type suspendRequest struct {
	Reasons []string `json:"reasons"`
}

// activity is one row of the dashboard's recent-activity table.
type activity struct {
	model.Item
	FormattedDate string `json:"formattedDate"`
}

// recentActivityLimit is the number of rows on the dashboard.
const recentActivityLimit = 5

// Items handles GET /api/admin/items.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.Reports.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, items)
}

// UpdateStatus handles POST /api/admin/update-status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.ItemID <= 0 || req.NewStatus == "" {
		jsonError(w, http.StatusBadRequest, "itemId and newStatus required")
		return
	}

	adminID := session.FromContext(r.Context()).Admin.ID
	item, err := h.Reports.UpdateStatus(r.Context(), adminID, req.ItemID, req.NewStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "item": item})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// RecentActivity handles GET /api/admin/recent-activity.
func (h *AdminHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	items, err := h.Reports.Recent(r.Context(), recentActivityLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows := make([]activity, 0, len(items))
	for _, it := range items {
		rows = append(rows, activity{Item: it, FormattedDate: it.CreatedAt.Format(time.DateOnly)})
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Analytics handles GET /api/admin/analytics.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.Reports.Analytics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, a)
}

// PendingCount handles GET /api/admin/pending-count.
func (h *AdminHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	p, err := h.Reports.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	jsonResponse(w, http.StatusOK, p)
}

// AuditLogs handles GET /api/admin/audit-logs.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := store.ListAuditLogs(r.Context(), h.Auth.DB, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}

// Accounts handles GET /api/admin-users/all.
func (h *AdminHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Auth.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, accounts)
}

// Suspend handles POST /api/admin-users/suspend/{id}.
func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req suspendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	adminID := session.FromContext(r.Context()).Admin.ID
	if err := h.Auth.Suspend(r.Context(), adminID, id, req.Reasons); err != nil {
		writeError(w, r, err)
		return
	}
	jsonOK(w, "This account has been suspended.")
}
