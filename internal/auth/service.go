// Package auth implements registration, password login with an emailed
// one-time passcode, and admin login.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/erazemk/refoundly/internal/audit"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/notify"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/session"
	"github.com/erazemk/refoundly/internal/store"
)

// Service authenticates users and admins against the credential store.
type Service struct {
	DB      *sql.DB
	Sender  notify.Sender
	Audit   *audit.Logger
	Limiter *Limiter

	OTPTTL         time.Duration
	OTPMaxAttempts int

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
	DOB           string `json:"dob"`
}

// bareAddress accepts only a plain addr-spec such as ana@example.com, so a
// mailbox has a single stored spelling.
func bareAddress(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return addr.Address, nil
}

// Register creates a user account. It does not log the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := model.NormalizeEmail(in.Email)
	dob := strings.TrimSpace(in.DOB)
	if name == "" || email == "" || in.Password == "" || dob == "" {
		return nil, ErrMissingFields
	}
	email, err := bareAddress(email)
	if err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := store.CreateUser(ctx, s.DB, &model.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		DOB:           dob,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	s.Audit.Record(ctx, audit.Actor{UserID: user.ID}, model.ActionUserRegistered, map[string]any{
		"email": user.Email,
	})
	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks a user's password and, on success, issues a one-time code
// to the user's email and records the challenge in sess. The session is
// not authenticated until VerifyOTP succeeds.
func (s *Service) Login(ctx context.Context, sess *session.Session, clientKey, email, password string) error {
	if s.Limiter != nil && !s.Limiter.Allow("user:"+clientKey) {
		obs.LoginAttempts.WithLabelValues("user", "rate_limited").Inc()
		return ErrRateLimited
	}

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		obs.LoginAttempts.WithLabelValues("user", "invalid").Inc()
		return ErrInvalidCredentials
	}

	user, err := store.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		VerifyPassword(string(dummyHash), password)
		obs.LoginAttempts.WithLabelValues("user", "invalid").Inc()
		return ErrInvalidCredentials
	}
	if !VerifyPassword(user.PasswordHash, password) {
		slog.Warn("login failed", "user_id", user.ID, "remote", clientKey)
		obs.LoginAttempts.WithLabelValues("user", "invalid").Inc()
		return ErrInvalidCredentials
	}
	if user.Suspended() {
		obs.LoginAttempts.WithLabelValues("user", "suspended").Inc()
		return ErrAccountSuspended
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	codeHash, err := HashPassword(code)
	if err != nil {
		return err
	}

	if err := s.Sender.Send(ctx, notify.OTPMessage(user.Email, code, s.OTPTTL)); err != nil {
		return fmt.Errorf("delivering otp: %w", err)
	}

	sess.SetPending(user.ID, codeHash, s.now().Add(s.OTPTTL))
	obs.LoginAttempts.WithLabelValues("user", "otp_sent").Inc()
	slog.Info("otp challenge issued", "user_id", user.ID)
	return nil
}

// VerifyOTP completes a user login. A wrong code leaves the challenge in
// place until OTPMaxAttempts failures, after which it is discarded.
func (s *Service) VerifyOTP(ctx context.Context, sess *session.Session, code string) (*model.User, error) {
	if !sess.HasPendingOTP() {
		return nil, ErrNoPendingOTP
	}
	if sess.OTPExpired(s.now()) {
		sess.ClearPending()
		obs.LoginAttempts.WithLabelValues("otp", "expired").Inc()
		return nil, ErrOTPExpired
	}

	if !VerifyPassword(sess.PendingOTPHash, code) {
		if sess.FailOTP() >= s.OTPMaxAttempts {
			slog.Warn("otp challenge discarded after repeated failures", "user_id", sess.PendingUserID)
			sess.ClearPending()
		}
		obs.LoginAttempts.WithLabelValues("otp", "invalid").Inc()
		return nil, ErrInvalidOTP
	}

	user, err := store.GetUser(ctx, s.DB, sess.PendingUserID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		sess.ClearPending()
		return nil, ErrInvalidCredentials
	}
	if user.Suspended() {
		sess.ClearPending()
		return nil, ErrAccountSuspended
	}

	sess.SetUser(user.ID)
	obs.LoginAttempts.WithLabelValues("otp", "success").Inc()
	slog.Info("user logged in", "user_id", user.ID)
	return user, nil
}

// AdminLogin authenticates an admin directly, without a second factor.
func (s *Service) AdminLogin(ctx context.Context, sess *session.Session, clientKey, email, password string) (*model.Admin, error) {
	if s.Limiter != nil && !s.Limiter.Allow("admin:"+clientKey) {
		obs.LoginAttempts.WithLabelValues("admin", "rate_limited").Inc()
		return nil, ErrRateLimited
	}

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		obs.LoginAttempts.WithLabelValues("admin", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	admin, err := store.GetAdminByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, fmt.Errorf("looking up admin: %w", err)
	}
	if admin == nil {
		VerifyPassword(string(dummyHash), password)
		obs.LoginAttempts.WithLabelValues("admin", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(admin.PasswordHash, password) {
		slog.Warn("admin login failed", "admin_id", admin.ID, "remote", clientKey)
		obs.LoginAttempts.WithLabelValues("admin", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	sess.SetAdmin(admin.ID, admin.Email)
	obs.LoginAttempts.WithLabelValues("admin", "success").Inc()
	slog.Info("admin logged in", "admin_id", admin.ID)
	return admin, nil
}

// CreateAdmin provisions an admin account out of band.
func CreateAdmin(ctx context.Context, db *sql.DB, name, email, password, contact string) (*model.Admin, error) {
	name = strings.TrimSpace(name)
	email = model.NormalizeEmail(email)
	if name == "" || email == "" {
		return nil, ErrMissingFields
	}
	email, err := bareAddress(email)
	if err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin, err := store.CreateAdmin(ctx, db, &model.Admin{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		ContactNumber: strings.TrimSpace(contact),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}
	return admin, nil
}
