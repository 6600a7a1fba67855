package model

import (
	"encoding/json"
	"time"
)

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID        int64           `json:"id"`
	UserID    *int64          `json:"user_id,omitempty"`
	AdminID   *int64          `json:"admin_id,omitempty"`
	Action    string          `json:"action"`
	Details   json.RawMessage `json:"details"`
	IPAddress string          `json:"ip_address,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Audit actions.
const (
	ActionItemReported      = "ITEM_REPORTED"
	ActionAdminStatusUpdate = "ADMIN_STATUS_UPDATE"
	ActionUserSuspended     = "USER_SUSPENDED"
	ActionUserRegistered    = "USER_REGISTERED"
)
