package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/refoundly/internal/model"
)

// InsertAuditLog appends an audit entry.
func InsertAuditLog(ctx context.Context, db *sql.DB, e *model.AuditEntry) error {
	details := string(e.Details)
	if details == "" {
		details = "{}"
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (user_id, admin_id, action, details, ip_address)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.AdminID, e.Action, details, nullString(e.IPAddress),
	)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// ListAuditLogs returns the most recent audit entries, newest first.
func ListAuditLogs(ctx context.Context, db *sql.DB, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, admin_id, action, details, ip_address, created_at
		 FROM audit_logs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var details string
		var ip sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.AdminID, &e.Action, &details, &ip, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		e.Details = []byte(details)
		e.IPAddress = ip.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
