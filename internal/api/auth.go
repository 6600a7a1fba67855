package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/refoundly/internal/auth"
	"github.com/erazemk/refoundly/internal/session"
	"github.com/erazemk/refoundly/internal/store"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	Auth     *auth.Service
	Sessions *session.Manager
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequest struct {
	OTP string `json:"otp"`
}

type profile struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number,omitempty"`
	DOB           string `json:"dob,omitempty"`
}

// save persists session changes, reporting failure as a 500.
func (h *AuthHandler) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := h.Sessions.Save(r.Context(), w, sess); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.Auth.Register(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, message{Success: true, Message: "Registration successful. Please log in."})
}

// Login handles POST /login. A correct password yields an OTP challenge,
// not a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := session.FromContext(r.Context())
	if err := h.Auth.Login(r.Context(), sess, clientIP(r), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	if !h.save(w, r, sess) {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"otpRequired": true,
		"message":     "A verification code has been sent to your email.",
	})
}

// VerifyOTP handles POST /verify-otp.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := session.FromContext(r.Context())
	_, err := h.Auth.VerifyOTP(r.Context(), sess, req.OTP)
	// Failed attempts change the session too.
	if !h.save(w, r, sess) {
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "redirect": "/dashboard"})
}

// Logout handles POST /logout and POST /admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	sess.Destroy()
	if !h.save(w, r, sess) {
		return
	}
	jsonOK(w, "")
}

// AdminLogin handles POST /admin/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := session.FromContext(r.Context())
	if _, err := h.Auth.AdminLogin(r.Context(), sess, clientIP(r), req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	if !h.save(w, r, sess) {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{"success": true, "redirect": "/admin"})
}

// Me handles GET /user/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := store.GetUser(r.Context(), h.Auth.DB, sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		slog.Warn("session references missing user", "user_id", sess.UserID)
		jsonError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	jsonResponse(w, http.StatusOK, profile{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		ContactNumber: user.ContactNumber,
		DOB:           user.DOB,
	})
}

// AdminMe handles GET /admin/me.
func (h *AuthHandler) AdminMe(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	admin, err := store.GetAdmin(r.Context(), h.Auth.DB, sess.Admin.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if admin == nil {
		jsonError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	jsonResponse(w, http.StatusOK, profile{
		ID:            admin.ID,
		Name:          admin.Name,
		Email:         admin.Email,
		ContactNumber: admin.ContactNumber,
	})
}

// CSRFToken handles GET /api/csrf-token.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.Sessions.CSRFToken(r.Context(), w, session.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	jsonResponse(w, http.StatusOK, map[string]string{"csrfToken": token})
}
