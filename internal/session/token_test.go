package session

import (
	"errors"
	"testing"
	"time"
)

func TestCookieRoundTrip(t *testing.T) {
	now := time.Now()
	value, err := signCookie("secret", "01HSESSION", now, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("signCookie: %v", err)
	}

	sid, err := parseCookie("secret", value, now)
	if err != nil {
		t.Fatalf("parseCookie: %v", err)
	}
	if sid != "01HSESSION" {
		t.Errorf("expected sid 01HSESSION, got %q", sid)
	}
}

func TestCookieRejected(t *testing.T) {
	now := time.Now()
	value, _ := signCookie("secret", "sid", now, now.Add(time.Minute))

	if _, err := parseCookie("other", value, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: expected ErrInvalidToken, got %v", err)
	}
	if _, err := parseCookie("secret", value, now.Add(2*time.Minute)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: expected ErrInvalidToken, got %v", err)
	}
	if _, err := parseCookie("secret", "not-a-token", now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: expected ErrInvalidToken, got %v", err)
	}
}

func TestCSRFToken(t *testing.T) {
	now := time.Now()
	token, err := signCSRF("secret", "sid", "seed", now)
	if err != nil {
		t.Fatalf("signCSRF: %v", err)
	}

	if err := verifyCSRF("secret", token, "sid", "seed", now); err != nil {
		t.Errorf("expected valid token, got %v", err)
	}
	if err := verifyCSRF("secret", token, "other-sid", "seed", now); err == nil {
		t.Error("expected error for a different session")
	}
	if err := verifyCSRF("secret", token, "sid", "rotated", now); err == nil {
		t.Error("expected error for a rotated seed")
	}

	// A CSRF token must not be accepted as a session cookie.
	if _, err := parseCookie("secret", token, now); err == nil {
		t.Error("expected CSRF token to be rejected as a cookie")
	}
}
