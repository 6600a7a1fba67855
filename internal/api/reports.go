package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/refoundly/internal/blob"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/reports"
	"github.com/erazemk/refoundly/internal/session"
)

// ReportsHandler handles report submission and the public listings.
type ReportsHandler struct {
	Reports *reports.Service
}

// listResponse writes items, never as JSON null.
func listResponse(w http.ResponseWriter, items []model.Item) {
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Submit handles POST /submit-report. Browser form posts are redirected to
// the history page; scripts get the created item.
func (h *ReportsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub reports.Submission
	if err := decodeBody(r, &sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var image io.Reader
	if r.MultipartForm != nil {
		file, _, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			image = file
		case errors.Is(err, http.ErrMissingFile):
		default:
			jsonError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		defer r.MultipartForm.RemoveAll()
	}

	sess := session.FromContext(r.Context())
	item, err := h.Reports.Submit(r.Context(), sess.UserID, sub, image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/history", http.StatusSeeOther)
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]any{"success": true, "item": item})
}

// History handles GET /api/user-history.
func (h *ReportsHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.Reports.OwnedBy(r.Context(), session.FromContext(r.Context()).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, items)
}

// Published handles GET /api/items/published.
func (h *ReportsHandler) Published(w http.ResponseWriter, r *http.Request) {
	items, err := h.Reports.Published(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, items)
}

// ByType returns a handler for GET /api/items/lost and /api/items/found.
func (h *ReportsHandler) ByType(reportType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.Reports.ByType(r.Context(), reportType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		listResponse(w, items)
	}
}

// Get handles GET /api/items/{id}. Reports that are not published are
// visible only to their reporter and to admins.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Reports.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Unpublished reports stay with their reporter and admins.
	if !item.Public() {
		sess := session.FromContext(r.Context())
		if !sess.IsAdmin() && !(sess.IsUser() && sess.UserID == item.UserID) {
			writeError(w, r, reports.ErrNotFound)
			return
		}
	}
	jsonResponse(w, http.StatusOK, item)
}

// Image handles GET /uploads/{key}.
func (h *ReportsHandler) Image(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.Reports.OpenImage(r.Context(), r.PathValue("key"))
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, "", time.Time{}, rs)
		return
	}
	io.Copy(w, rc)
}

