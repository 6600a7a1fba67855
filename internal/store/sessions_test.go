package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/refoundly/internal/db"
)

func TestSaveAndGetSession(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := SaveSession(ctx, database, "sid-1", []byte(`{"user_id":1}`), now.Add(time.Minute)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	data, err := GetSession(ctx, database, "sid-1", now)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if string(data) != `{"user_id":1}` {
		t.Errorf("unexpected data %q", data)
	}

	// Saving again replaces the row.
	SaveSession(ctx, database, "sid-1", []byte(`{"user_id":2}`), now.Add(time.Minute))
	data, _ = GetSession(ctx, database, "sid-1", now)
	if string(data) != `{"user_id":2}` {
		t.Errorf("expected replaced data, got %q", data)
	}

	// Expired sessions are invisible.
	data, _ = GetSession(ctx, database, "sid-1", now.Add(2*time.Minute))
	if data != nil {
		t.Error("expected expired session to be hidden")
	}
}

func TestDeleteSessions(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	SaveSession(ctx, database, "live", []byte(`{}`), now.Add(time.Hour))
	SaveSession(ctx, database, "dead", []byte(`{}`), now.Add(-time.Second))

	n, err := DeleteExpiredSessions(ctx, database, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session removed, got %d", n)
	}

	if err := DeleteSession(ctx, database, "live"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	data, _ := GetSession(ctx, database, "live", now)
	if data != nil {
		t.Error("expected deleted session to be gone")
	}

	// Deleting twice is fine.
	if err := DeleteSession(ctx, database, "live"); err != nil {
		t.Errorf("second DeleteSession: %v", err)
	}
}
