package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/refoundly/internal/ids"
	"github.com/erazemk/refoundly/internal/store"
)

// CookieName is the name of the session cookie.
const CookieName = "refoundly_session"

// Manager loads and saves sessions.
type Manager struct {
	DB     *sql.DB
	Secret string
	TTL    time.Duration
	Secure bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewManager creates a Manager.
func NewManager(db *sql.DB, secret string, ttl time.Duration, secure bool) *Manager {
	return &Manager{DB: db, Secret: secret, TTL: ttl, Secure: secure, Now: time.Now}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Load returns the session referenced by the request cookie. Missing,
// forged or expired cookies yield a fresh anonymous session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return &Session{}, nil
	}

	now := m.now()
	sid, err := parseCookie(m.Secret, c.Value, now)
	if err != nil {
		return &Session{}, nil
	}

	data, err := store.GetSession(r.Context(), m.DB, sid, now)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if data == nil {
		return &Session{}, nil
	}

	s := &Session{}
	if err := json.Unmarshal(data, s); err != nil {
		slog.Warn("discarding corrupt session", "error", err)
		return &Session{}, nil
	}
	s.ID = sid
	s.persisted = true
	return s, nil
}

// Save persists the session and refreshes the cookie. Untouched sessions
// are left alone; destroyed sessions are deleted and the cookie cleared.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.destroyed {
		if s.ID != "" {
			if err := store.DeleteSession(ctx, m.DB, s.ID); err != nil {
				return fmt.Errorf("destroying session: %w", err)
			}
		}
		m.clearCookie(w)
		*s = Session{}
		return nil
	}

	if !s.dirty && !s.rotate {
		return nil
	}
	if s.empty() && !s.persisted {
		return nil
	}

	if s.rotate && s.ID != "" {
		if err := store.DeleteSession(ctx, m.DB, s.ID); err != nil {
			return fmt.Errorf("rotating session: %w", err)
		}
		s.ID = ""
		// A new id invalidates tokens bound to the old one.
		s.CSRFSeed = ""
	}
	if s.ID == "" {
		sid, err := ids.NewSessionID()
		if err != nil {
			return fmt.Errorf("generating session id: %w", err)
		}
		s.ID = sid
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	now := m.now()
	expires := now.Add(m.TTL)
	if err := store.SaveSession(ctx, m.DB, s.ID, data, expires); err != nil {
		return err
	}

	value, err := signCookie(m.Secret, s.ID, now, expires)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.persisted = true
	s.dirty = false
	s.rotate = false
	return nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CSRFToken returns a token bound to the session, creating the seed (and
// persisting the session) on first use.
func (m *Manager) CSRFToken(ctx context.Context, w http.ResponseWriter, s *Session) (string, error) {
	if s.CSRFSeed == "" || s.ID == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating csrf seed: %w", err)
		}
		s.CSRFSeed = hex.EncodeToString(buf)
		s.dirty = true
		if err := m.Save(ctx, w, s); err != nil {
			return "", err
		}
	}
	return signCSRF(m.Secret, s.ID, s.CSRFSeed, m.now())
}

// VerifyCSRF checks a token presented with a state-changing request.
func (m *Manager) VerifyCSRF(s *Session, token string) error {
	if s == nil || s.ID == "" || token == "" {
		return ErrInvalidToken
	}
	return verifyCSRF(m.Secret, token, s.ID, s.CSRFSeed, m.now())
}

// Middleware loads the session into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Load(r)
		if err != nil {
			slog.Error("failed to load session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// Sweep deletes expired sessions every interval until ctx is cancelled.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpiredSessions(ctx, m.DB, m.now())
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					slog.Error("failed to sweep sessions", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Debug("swept expired sessions", "count", n)
			}
		}
	}
}

type contextKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil outside Middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
