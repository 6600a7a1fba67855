package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/refoundly/internal/model"
)

// CreateAdmin provisions an administrator. It returns ErrDuplicate if the
// email is taken.
func CreateAdmin(ctx context.Context, db *sql.DB, a *model.Admin) (*model.Admin, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO admins (name, email, password_hash, contact_number) VALUES (?, ?, ?, ?)`,
		a.Name, a.Email, a.PasswordHash, nullString(a.ContactNumber),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting admin id: %w", err)
	}

	return GetAdmin(ctx, db, id)
}

// GetAdmin returns an admin by ID, or nil if none exists.
func GetAdmin(ctx context.Context, db *sql.DB, id int64) (*model.Admin, error) {
	a, err := scanAdmin(db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, contact_number, created_at
		 FROM admins WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// GetAdminByEmail returns an admin by email, or nil if none exists.
func GetAdminByEmail(ctx context.Context, db *sql.DB, email string) (*model.Admin, error) {
	a, err := scanAdmin(db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, contact_number, created_at
		 FROM admins WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin by email: %w", err)
	}
	return a, nil
}

func scanAdmin(row *sql.Row) (*model.Admin, error) {
	a := &model.Admin{}
	var contact sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &contact, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ContactNumber = contact.String
	return a, nil
}
