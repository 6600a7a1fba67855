package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/reports"
)

// message is the envelope of every non-listing response.
type message struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, message{Success: false, Message: msg})
}

// jsonOK writes a success envelope.
func jsonOK(w http.ResponseWriter, msg string) {
	jsonResponse(w, http.StatusOK, message{Success: true, Message: msg})
}

const msgInternal = "Internal Server Error"

// errorStatus maps domain errors to a status code and user-facing message.
var errorStatus = []struct {
	err    error
	status int
	msg    string
}{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid Email or Password"},
	{auth.ErrWeakPassword, http.StatusBadRequest, auth.ErrWeakPassword.Error()},
	{auth.ErrDuplicateEmail, http.StatusConflict, "Email is already registered"},
	{auth.ErrMissingFields, http.StatusBadRequest, "Please fill in all required fields"},
	{auth.ErrInvalidEmail, http.StatusBadRequest, "Please enter a valid email address"},
	{auth.ErrRateLimited, http.StatusTooManyRequests, "Too many login attempts. Please try again in a few seconds."},
	{auth.ErrInvalidOTP, http.StatusUnauthorized, "Invalid OTP"},
	{auth.ErrOTPExpired, http.StatusUnauthorized, "OTP expired. Please log in again."},
	{auth.ErrNoPendingOTP, http.StatusBadRequest, "No verification in progress. Please log in again."},
	{auth.ErrAccountSuspended, http.StatusForbidden, "This account has been suspended"},
	{auth.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{reports.ErrMissingFields, http.StatusBadRequest, "Please fill in all required fields"},
	{reports.ErrInvalidReportType, http.StatusBadRequest, "Report type must be Lost or Found"},
	{reports.ErrInvalidImage, http.StatusBadRequest, "Image must be a JPEG, PNG or WebP file up to 5 MB"},
	{reports.ErrNotFound, http.StatusNotFound, "Item not found"},
	{reports.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{reports.ErrInvalidTransition, http.StatusConflict, "Status change not allowed"},
}

// writeError maps err onto the response. Unknown errors are logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			jsonError(w, e.status, e.msg)
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonError(w, http.StatusInternalServerError, msgInternal)
}

// decodeBody fills target from a JSON body, or from form fields matched
// against target's json tags for urlencoded and multipart bodies.
func decodeBody(r *http.Request, target any) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decoding json body: %w", err)
		}
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return fmt.Errorf("parsing multipart form: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parsing form: %w", err)
		}
	}

	fields := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

var errNotJSON = errors.New("content type is not application/json")

// decodeJSON fills target from a JSON body and rejects every other content
// type.
func decodeJSON(r *http.Request, target any) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		return errNotJSON
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding json body: %w", err)
	}
	return nil
}

// writeDecodeError answers a body that decodeJSON refused.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNotJSON) {
		jsonError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	jsonError(w, http.StatusBadRequest, "invalid request body")
}

// wantsHTML reports whether the client is a browser form post rather than
// a script.
func wantsHTML(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return false
	}
	accept := r.Header.Get("Accept")
	for _, part := range strings.Split(accept, ",") {
		mt, _, _ := mime.ParseMediaType(part)
		if mt == "text/html" {
			return true
		}
	}
	return false
}
