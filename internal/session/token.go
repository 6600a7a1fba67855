package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// cookieClaims is the payload of the signed session cookie. The JWT ID is
// the server-side session id.
type cookieClaims struct {
	jwt.RegisteredClaims
}

// csrfClaims binds a CSRF token to one session and its seed.
type csrfClaims struct {
	Seed string `json:"seed"`
	jwt.RegisteredClaims
}

const csrfAudience = "csrf"

// ErrInvalidToken is returned for cookies or CSRF tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// signCookie creates the cookie value for a session id.
func signCookie(secret, sid string, now, expires time.Time) (string, error) {
	claims := cookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing session cookie: %w", err)
	}
	return signed, nil
}

// parseCookie verifies a cookie value and returns its session id.
func parseCookie(secret, value string, now time.Time) (string, error) {
	claims := &cookieClaims{}
	if err := parse(secret, value, claims, now); err != nil {
		return "", err
	}
	if claims.ID == "" || len(claims.Audience) > 0 {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

// signCSRF creates a CSRF token for the given session id and seed.
func signCSRF(secret, sid, seed string, now time.Time) (string, error) {
	claims := csrfClaims{
		Seed: seed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  sid,
			Audience: jwt.ClaimStrings{csrfAudience},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing csrf token: %w", err)
	}
	return signed, nil
}

// verifyCSRF checks that a CSRF token was issued for sid and seed.
func verifyCSRF(secret, value, sid, seed string, now time.Time) error {
	claims := &csrfClaims{}
	if err := parse(secret, value, claims, now, jwt.WithAudience(csrfAudience)); err != nil {
		return err
	}
	if seed == "" || claims.Subject != sid || claims.Seed != seed {
		return ErrInvalidToken
	}
	return nil
}

func parse(secret, value string, claims jwt.Claims, now time.Time, opts ...jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
