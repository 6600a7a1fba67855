package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/refoundly/internal/db"
	"github.com/erazemk/refoundly/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, &model.User{
		Name:          "Test User",
		Email:         "test@example.com",
		PasswordHash:  "hash123",
		ContactNumber: "555-0100",
		DOB:           "1990-04-01",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "test@example.com" {
		t.Errorf("expected email 'test@example.com', got %q", user.Email)
	}
	if user.Suspended() {
		t.Error("expected new user not to be suspended")
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Test User" || got.ContactNumber != "555-0100" || got.DOB != "1990-04-01" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, &model.User{Name: "A", Email: "dup@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	_, err := CreateUser(ctx, database, &model.User{Name: "B", Email: "dup@example.com", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Emails are compared case-insensitively.
	_, err = CreateUser(ctx, database, &model.User{Name: "C", Email: "DUP@example.com", PasswordHash: "h"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for different case, got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"})

	user, err := GetUserByEmail(ctx, database, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Name != "Alice" {
		t.Errorf("expected 'Alice', got %q", user.Name)
	}

	missing, err := GetUserByEmail(ctx, database, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestSuspendUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, &model.User{Name: "S", Email: "s@example.com", PasswordHash: "h"})

	ok, err := SuspendUser(ctx, database, user.ID, "spam")
	if err != nil {
		t.Fatalf("SuspendUser: %v", err)
	}
	if !ok {
		t.Fatal("expected suspension to update a row")
	}

	got, _ := GetUser(ctx, database, user.ID)
	if !got.Suspended() || got.SuspensionReason != "spam" {
		t.Errorf("expected suspended user with reason, got %+v", got)
	}

	ok, err = SuspendUser(ctx, database, 9999, "spam")
	if err != nil {
		t.Fatalf("SuspendUser missing: %v", err)
	}
	if ok {
		t.Error("expected no row updated for missing user")
	}
}

func TestListAccounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateAdmin(ctx, database, &model.Admin{Name: "Root", Email: "root@example.com", PasswordHash: "h"})
	u, _ := CreateUser(ctx, database, &model.User{Name: "U", Email: "u@example.com", PasswordHash: "h"})
	SuspendUser(ctx, database, u.ID, "")

	accounts, err := ListAccounts(ctx, database)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	roles := map[string]model.Account{}
	for _, a := range accounts {
		roles[a.Role] = a
	}
	if roles[model.RoleAdmin].Email != "root@example.com" {
		t.Errorf("expected admin account, got %+v", roles[model.RoleAdmin])
	}
	if roles[model.RoleUser].Status != model.AccountSuspended {
		t.Errorf("expected suspended user account, got %+v", roles[model.RoleUser])
	}
}
