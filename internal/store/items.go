package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/refoundly/internal/model"
)

const itemColumns = `id, user_id, item_name, category, brand, incident_date, incident_time,
	location, image_path, description, report_type, contact_firstname, contact_lastname,
	contact_phone, contact_email, status, created_at, updated_at`

// ItemFilter narrows ListItems. Zero fields are ignored.
type ItemFilter struct {
	Status     string
	ReportType string
	UserID     int64
	Limit      int
}

// CreateItem inserts a new report. The status always starts as Pending Approval.
func CreateItem(ctx context.Context, db *sql.DB, it *model.Item) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (user_id, item_name, category, brand, incident_date, incident_time,
		    location, image_path, description, report_type, contact_firstname, contact_lastname,
		    contact_phone, contact_email, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.UserID, it.ItemName, it.Category, nullString(it.Brand), nullString(it.IncidentDate),
		nullString(it.IncidentTime), it.Location, nullString(it.ImagePath), nullString(it.Description),
		it.ReportType, nullString(it.ContactFirstName), nullString(it.ContactLastName),
		nullString(it.ContactPhone), nullString(it.ContactEmail), model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or nil if none exists.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.ReportType != "" {
		where = append(where, "report_type = ?")
		args = append(args, f.ReportType)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemStatus moves an item from one status to another. It reports
// false when no item with that id currently holds status from.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, from, to string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	it := &model.Item{}
	var brand, date, tm, image, desc, first, last, phone, email sql.NullString
	err := row.Scan(&it.ID, &it.UserID, &it.ItemName, &it.Category, &brand, &date, &tm,
		&it.Location, &image, &desc, &it.ReportType, &first, &last, &phone, &email,
		&it.Status, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Brand = brand.String
	it.IncidentDate = date.String
	it.IncidentTime = tm.String
	it.ImagePath = image.String
	it.Description = desc.String
	it.ContactFirstName = first.String
	it.ContactLastName = last.String
	it.ContactPhone = phone.String
	it.ContactEmail = email.String
	return it, nil
}
