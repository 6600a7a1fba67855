package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// Keys of the settings table.
const SettingSessionSecret = "session_secret"

// GetSetting returns the value stored under key, or "" when it is unset.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// InitSetting stores value under key unless the key is already set, and
// returns whichever value the table holds afterwards. Racing callers all
// get the first writer's value.
func InitSetting(ctx context.Context, db *sql.DB, key, value string) (string, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value,
	); err != nil {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	stored, err := GetSetting(ctx, db, key)
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", fmt.Errorf("setting %s is empty", key)
	}
	return stored, nil
}

// GetSessionSecret returns the key that signs session cookies, creating a
// random one on first use.
func GetSessionSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return InitSetting(ctx, db, SettingSessionSecret, hex.EncodeToString(buf))
}
