package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/refoundly/internal/db"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/store"
)

func TestRecordWritesEntry(t *testing.T) {
	database := db.NewTestDB(t)
	l := New(database)

	ctx := WithClientIP(WithRequestID(context.Background(), "req-1"), "203.0.113.7")
	l.Record(ctx, Actor{}, model.ActionUserRegistered, map[string]any{"email": "a@b.c"})

	entries, err := store.ListAuditLogs(ctx, database, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, model.ActionUserRegistered, e.Action)
	assert.Equal(t, "203.0.113.7", e.IPAddress)
	assert.Nil(t, e.UserID)
	assert.Nil(t, e.AdminID)

	var details map[string]any
	require.NoError(t, json.Unmarshal(e.Details, &details))
	assert.Equal(t, "a@b.c", details["email"])
	assert.Equal(t, "req-1", details["request_id"])
}

func TestRecordSurvivesCancelledContext(t *testing.T) {
	database := db.NewTestDB(t)
	l := New(database)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Record(ctx, Actor{}, model.ActionItemReported, nil)

	entries, err := store.ListAuditLogs(context.Background(), database, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordFailureIsSwallowed(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(errors.New("disk full"))

	before := testutil.ToFloat64(obs.AuditWriteFailures)
	New(mockDB).Record(context.Background(), Actor{UserID: 1}, model.ActionItemReported, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(obs.AuditWriteFailures))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Record(context.Background(), Actor{}, model.ActionItemReported, nil)
}
