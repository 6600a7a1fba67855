package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/erazemk/refoundly/internal/audit"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/store"
)

// ErrUserNotFound is returned when suspending a user that does not exist.
var ErrUserNotFound = errors.New("auth: user not found")

// Accounts lists every admin and user.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	accounts, err := store.ListAccounts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return accounts, nil
}

// Suspend blocks a user from logging in. At least one reason is required.
func (s *Service) Suspend(ctx context.Context, adminID, userID int64, reasons []string) error {
	var cleaned []string
	for _, r := range reasons {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return ErrMissingFields
	}

	found, err := store.SuspendUser(ctx, s.DB, userID, strings.Join(cleaned, "; "))
	if err != nil {
		return fmt.Errorf("suspending user: %w", err)
	}
	if !found {
		return ErrUserNotFound
	}

	s.Audit.Record(ctx, audit.Actor{AdminID: adminID}, model.ActionUserSuspended, map[string]any{
		"user_id": userID,
		"reasons": cleaned,
	})
	slog.Info("user suspended", "user_id", userID, "admin_id", adminID)
	return nil
}
