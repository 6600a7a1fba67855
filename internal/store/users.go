package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/refoundly/internal/model"
)

const userColumns = `id, full_name, email, password_hash, contact_number, dob,
	suspended_at, suspension_reason, created_at`

// CreateUser creates a new user. It returns ErrDuplicate if the email is taken.
func CreateUser(ctx context.Context, db *sql.DB, u *model.User) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (full_name, email, password_hash, contact_number, dob)
		 VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, nullString(u.ContactNumber), nullString(u.DOB),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID, or nil if none exists.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email, or nil if none exists.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// SuspendUser marks a user as suspended. It reports whether a user was updated.
func SuspendUser(ctx context.Context, db *sql.DB, id int64, reason string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET suspended_at = CURRENT_TIMESTAMP, suspension_reason = ?
		 WHERE id = ?`,
		reason, id,
	)
	if err != nil {
		return false, fmt.Errorf("suspending user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("suspending user: %w", err)
	}
	return n > 0, nil
}

// ListAccounts returns admins and users in one listing, newest first.
func ListAccounts(ctx context.Context, db *sql.DB) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, 'admin' AS role, 'active' AS status, created_at
		 FROM admins
		 UNION ALL
		 SELECT id, full_name, email, 'user' AS role,
		        CASE WHEN suspended_at IS NULL THEN 'active' ELSE 'suspended' END,
		        created_at
		 FROM users
		 ORDER BY created_at DESC, role, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var contact, dob, reason sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &contact, &dob,
		&u.SuspendedAt, &reason, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.ContactNumber = contact.String
	u.DOB = dob.String
	u.SuspensionReason = reason.String
	return u, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
