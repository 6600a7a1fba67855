// Package reports manages lost and found reports and their review workflow.
package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/erazemk/refoundly/internal/audit"
	"github.com/erazemk/refoundly/internal/blob"
	"github.com/erazemk/refoundly/internal/ids"
	"github.com/erazemk/refoundly/internal/imaging"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/obs"
	"github.com/erazemk/refoundly/internal/store"
)

var (
	ErrMissingFields     = errors.New("reports: missing required fields")
	ErrInvalidReportType = errors.New("reports: report type must be Lost or Found")
	ErrInvalidImage      = errors.New("reports: invalid image")
	ErrNotFound          = errors.New("reports: item not found")
	ErrInvalidStatus     = errors.New("reports: unknown status")
	ErrInvalidTransition = errors.New("reports: status change not allowed")
)

// UploadPrefix is the URL path images are served under.
const UploadPrefix = "/uploads/"

// Service is the item repository.
type Service struct {
	DB            *sql.DB
	Blobs         blob.Store
	Audit         *audit.Logger
	MaxImageBytes int64
}

// Submission is a report as entered by a user.
type Submission struct {
	ItemName         string `json:"item_name"`
	Category         string `json:"category"`
	Brand            string `json:"brand"`
	IncidentDate     string `json:"incident_date"`
	IncidentTime     string `json:"incident_time"`
	Location         string `json:"location"`
	Description      string `json:"description"`
	ReportType       string `json:"report_type"`
	ContactFirstName string `json:"contact_firstname"`
	ContactLastName  string `json:"contact_lastname"`
	ContactPhone     string `json:"contact_phone"`
	ContactEmail     string `json:"contact_email"`
}

func (sub *Submission) normalize() {
	for _, f := range []*string{
		&sub.ItemName, &sub.Category, &sub.Brand, &sub.IncidentDate, &sub.IncidentTime,
		&sub.Location, &sub.Description, &sub.ReportType, &sub.ContactFirstName,
		&sub.ContactLastName, &sub.ContactPhone, &sub.ContactEmail,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Submit stores a new report owned by userID with status Pending Approval.
// image may be nil.
func (s *Service) Submit(ctx context.Context, userID int64, sub Submission, image io.Reader) (*model.Item, error) {
	sub.normalize()
	if sub.ItemName == "" || sub.Category == "" || sub.Location == "" || sub.ReportType == "" {
		return nil, ErrMissingFields
	}
	if !model.ValidReportType(sub.ReportType) {
		return nil, ErrInvalidReportType
	}

	var imagePath, key string
	if image != nil {
		photo, err := imaging.Process(image, s.MaxImageBytes)
		if err != nil {
			if errors.Is(err, imaging.ErrTooLarge) || errors.Is(err, imaging.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
			}
			return nil, fmt.Errorf("processing image: %w", err)
		}
		key = ids.NewUploadKey(photo.Ext())
		if err := s.Blobs.Put(ctx, key, photo.Data, photo.MIME); err != nil {
			return nil, fmt.Errorf("storing image: %w", err)
		}
		imagePath = UploadPrefix + key
	}

	item, err := store.CreateItem(ctx, s.DB, &model.Item{
		UserID:           userID,
		ItemName:         sub.ItemName,
		Category:         sub.Category,
		Brand:            sub.Brand,
		IncidentDate:     sub.IncidentDate,
		IncidentTime:     sub.IncidentTime,
		Location:         sub.Location,
		ImagePath:        imagePath,
		Description:      sub.Description,
		ReportType:       sub.ReportType,
		ContactFirstName: sub.ContactFirstName,
		ContactLastName:  sub.ContactLastName,
		ContactPhone:     sub.ContactPhone,
		ContactEmail:     sub.ContactEmail,
	})
	if err != nil {
		if key != "" {
			if derr := s.Blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
				slog.Warn("failed to remove orphaned image", "key", key, "error", derr)
			}
		}
		return nil, err
	}

	s.Audit.Record(ctx, audit.Actor{UserID: userID}, model.ActionItemReported, map[string]any{
		"item_id":     item.ID,
		"item_name":   item.ItemName,
		"report_type": item.ReportType,
	})
	obs.ReportsSubmitted.WithLabelValues(item.ReportType).Inc()
	slog.Info("report submitted", "item_id", item.ID, "user_id", userID, "type", item.ReportType)
	return item, nil
}

// Published lists every published report.
func (s *Service) Published(ctx context.Context) ([]model.Item, error) {
	return store.ListItems(ctx, s.DB, store.ItemFilter{Status: model.StatusPublished})
}

// ByType lists published reports of one type.
func (s *Service) ByType(ctx context.Context, reportType string) ([]model.Item, error) {
	if !model.ValidReportType(reportType) {
		return nil, ErrInvalidReportType
	}
	return store.ListItems(ctx, s.DB, store.ItemFilter{Status: model.StatusPublished, ReportType: reportType})
}

// OwnedBy lists every report a user submitted, whatever its status.
func (s *Service) OwnedBy(ctx context.Context, userID int64) ([]model.Item, error) {
	return store.ListItems(ctx, s.DB, store.ItemFilter{UserID: userID})
}

// All lists every report.
func (s *Service) All(ctx context.Context) ([]model.Item, error) {
	return store.ListItems(ctx, s.DB, store.ItemFilter{})
}

// Recent lists the newest reports of any status.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.Item, error) {
	return store.ListItems(ctx, s.DB, store.ItemFilter{Limit: limit})
}

// Get returns one report.
func (s *Service) Get(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// UpdateStatus moves an item to status on behalf of an admin. Re-applying
// the current status succeeds and is audited again.
func (s *Service) UpdateStatus(ctx context.Context, adminID, itemID int64, status string) (*model.Item, error) {
	if !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(item.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, item.Status, status)
	}

	updated, err := store.UpdateItemStatus(ctx, s.DB, itemID, item.Status, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Deleted or moved by someone else since the read above.
		current, err := s.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	s.Audit.Record(ctx, audit.Actor{AdminID: adminID}, model.ActionAdminStatusUpdate, map[string]any{
		"item_id": itemID,
		"from":    item.Status,
		"to":      status,
	})
	obs.StatusChanges.WithLabelValues(status).Inc()
	slog.Info("item status updated", "item_id", itemID, "admin_id", adminID, "from", item.Status, "to", status)

	return s.Get(ctx, itemID)
}

// OpenImage returns a stored report image.
func (s *Service) OpenImage(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.Blobs.Get(ctx, key)
}
