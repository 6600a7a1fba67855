package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/store"
)

func TestSuspendAndAccounts(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u := registerTestUser(t, s, "ana@example.com")
	admin, err := CreateAdmin(ctx, s.DB, "Root", "root@example.com", testPassword, "")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Suspend(ctx, admin.ID, u.ID, []string{" ", ""}), ErrMissingFields)
	assert.ErrorIs(t, s.Suspend(ctx, admin.ID, 999, []string{"spam"}), ErrUserNotFound)
	require.NoError(t, s.Suspend(ctx, admin.ID, u.ID, []string{"spam", "fake reports"}))

	got, err := store.GetUser(ctx, s.DB, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Suspended())
	assert.Equal(t, "spam; fake reports", got.SuspensionReason)

	accounts, err := s.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	statuses := map[string]string{}
	for _, a := range accounts {
		statuses[a.Role] = a.Status
	}
	assert.Equal(t, model.AccountSuspended, statuses[model.RoleUser])
	assert.Equal(t, model.AccountActive, statuses[model.RoleAdmin])

	entries, err := store.ListAuditLogs(ctx, s.DB, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ActionUserSuspended, entries[0].Action)
}
