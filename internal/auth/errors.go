package auth

import (
	"errors"

	"github.com/erazemk/refoundly/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrWeakPassword       = model.ErrWeakPassword
	ErrDuplicateEmail     = errors.New("auth: email already registered")
	ErrMissingFields      = errors.New("auth: missing required fields")
	ErrInvalidEmail       = errors.New("auth: invalid email address")
	ErrRateLimited        = errors.New("auth: too many login attempts")
	ErrInvalidOTP         = errors.New("auth: invalid otp")
	ErrOTPExpired         = errors.New("auth: otp expired")
	ErrNoPendingOTP       = errors.New("auth: no otp challenge in progress")
	ErrAccountSuspended   = errors.New("auth: account suspended")
)
