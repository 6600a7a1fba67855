// Package session keeps server-side session state in the sessions table and
// correlates it with a signed cookie.
package session

import "time"

// AdminIdentity is the admin half of an authenticated session.
type AdminIdentity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Session is one browser's server-held state. A session carries at most one
// identity: a user or an admin.
type Session struct {
	ID string `json:"-"`

	UserID int64          `json:"user_id,omitempty"`
	Admin  *AdminIdentity `json:"admin,omitempty"`

	// Pending second factor, set between password and OTP verification.
	PendingUserID  int64  `json:"pending_user_id,omitempty"`
	PendingOTPHash string `json:"pending_otp_hash,omitempty"`
	OTPExpiresAt   int64  `json:"otp_expires_at,omitempty"`
	OTPAttempts    int    `json:"otp_attempts,omitempty"`

	CSRFSeed string `json:"csrf_seed,omitempty"`

	persisted bool
	dirty     bool
	rotate    bool
	destroyed bool
}

// IsUser reports whether the session is authenticated as a user.
func (s *Session) IsUser() bool { return s != nil && s.UserID != 0 }

// IsAdmin reports whether the session is authenticated as an admin.
func (s *Session) IsAdmin() bool { return s != nil && s.Admin != nil }

// HasPendingOTP reports whether a second factor is outstanding.
func (s *Session) HasPendingOTP() bool {
	return s != nil && s.PendingUserID != 0 && s.PendingOTPHash != ""
}

// OTPExpired reports whether the pending code is past its expiry.
func (s *Session) OTPExpired(now time.Time) bool {
	return now.Unix() >= s.OTPExpiresAt
}

// SetUser authenticates the session as a user. Any admin identity and
// pending second factor are dropped and the id is rotated on save.
func (s *Session) SetUser(id int64) {
	s.UserID = id
	s.Admin = nil
	s.ClearPending()
	s.rotate = true
}

// SetAdmin authenticates the session as an admin. Any user identity and
// pending second factor are dropped and the id is rotated on save.
func (s *Session) SetAdmin(id int64, email string) {
	s.Admin = &AdminIdentity{ID: id, Email: email}
	s.UserID = 0
	s.ClearPending()
	s.rotate = true
}

// SetPending records a second-factor challenge for userID.
func (s *Session) SetPending(userID int64, otpHash string, expires time.Time) {
	s.PendingUserID = userID
	s.PendingOTPHash = otpHash
	s.OTPExpiresAt = expires.Unix()
	s.OTPAttempts = 0
	s.dirty = true
}

// FailOTP counts a wrong code.
func (s *Session) FailOTP() int {
	s.OTPAttempts++
	s.dirty = true
	return s.OTPAttempts
}

// ClearPending forgets any outstanding second-factor challenge.
func (s *Session) ClearPending() {
	s.PendingUserID = 0
	s.PendingOTPHash = ""
	s.OTPExpiresAt = 0
	s.OTPAttempts = 0
	s.dirty = true
}

// Destroy marks the session for removal on save.
func (s *Session) Destroy() {
	s.destroyed = true
}

// empty reports whether the session holds nothing worth persisting.
func (s *Session) empty() bool {
	return s.UserID == 0 && s.Admin == nil && s.PendingUserID == 0 && s.CSRFSeed == ""
}
