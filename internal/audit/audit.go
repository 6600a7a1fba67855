// Package audit records state-changing actions in the audit_logs table.
//
// Recording is best-effort: a failed write is logged and counted but never
// reported to the caller, so the action that triggered it still succeeds.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/store"
)

type ctxKey string

const (
	requestIDKey ctxKey = "audit_request_id"
	clientIPKey  ctxKey = "audit_client_ip"
)

// WithRequestID attaches the request identifier to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request identifier attached to ctx.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithClientIP attaches the caller's address to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller's address attached to ctx.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}

// Actor identifies who performed an action. At most one field is set.
type Actor struct {
	UserID  int64
	AdminID int64
}

// Logger writes audit entries.
type Logger struct {
	DB *sql.DB

	// Timeout bounds a single write. Zero means five seconds.
	Timeout time.Duration
}

// New creates a Logger writing to db.
func New(db *sql.DB) *Logger {
	return &Logger{DB: db}
}

// Record appends an audit entry. It never fails the caller.
func (l *Logger) Record(ctx context.Context, actor Actor, action string, details map[string]any) {
	if l == nil || l.DB == nil {
		return
	}

	fields := make(map[string]any, len(details)+1)
	for k, v := range details {
		fields[k] = v
	}
	if rid := RequestID(ctx); rid != "" {
		fields["request_id"] = rid
	}

	data, err := json.Marshal(fields)
	if err != nil {
		l.fail(action, err)
		return
	}

	entry := &model.AuditEntry{
		Action:    action,
		Details:   data,
		IPAddress: ClientIP(ctx),
	}
	if actor.UserID != 0 {
		entry.UserID = &actor.UserID
	}
	if actor.AdminID != 0 {
		entry.AdminID = &actor.AdminID
	}

	timeout := l.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	// The write outlives a client that has already hung up.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := store.InsertAuditLog(writeCtx, l.DB, entry); err != nil {
		l.fail(action, err)
	}
}

func (l *Logger) fail(action string, err error) {
	obs.AuditWriteFailures.Inc()
	slog.Error("failed to write audit log", "action", action, "error", err)
}
