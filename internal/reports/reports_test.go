package reports

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/refoundly/internal/audit"
	"github.com/erazemk/refoundly/internal/blob"
	"github.com/erazemk/refoundly/internal/db"
	"github.com/erazemk/refoundly/internal/model"
	"github.com/erazemk/refoundly/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	database := db.NewTestDB(t)
	blobs, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)
	return &Service{DB: database, Blobs: blobs, Audit: audit.New(database), MaxImageBytes: 5 << 20}
}

func newTestUser(t *testing.T, s *Service, email string) *model.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), s.DB, &model.User{
		Name: "Ana", Email: email, PasswordHash: "x",
	})
	require.NoError(t, err)
	return u
}

func wallet() Submission {
	return Submission{ItemName: "Wallet", Category: "Accessories", Location: "Library", ReportType: model.ReportLost}
}

func auditActions(t *testing.T, s *Service) []string {
	t.Helper()
	entries, err := store.ListAuditLogs(context.Background(), s.DB, 100)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func TestSubmit(t *testing.T) {
	s := newTestService(t)
	u := newTestUser(t, s, "ana@example.com")

	item, err := s.Submit(context.Background(), u.ID, wallet(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, item.Status)
	assert.Equal(t, u.ID, item.UserID)
	assert.Empty(t, item.ImagePath)
	assert.Equal(t, []string{model.ActionItemReported}, auditActions(t, s))
}

func TestSubmitMissingFields(t *testing.T) {
	s := newTestService(t)
	u := newTestUser(t, s, "ana@example.com")

	for _, mutate := range []func(*Submission){
		func(sub *Submission) { sub.ItemName = "" },
		func(sub *Submission) { sub.Category = "  " },
		func(sub *Submission) { sub.Location = "" },
		func(sub *Submission) { sub.ReportType = "" },
	} {
		sub := wallet()
		mutate(&sub)
		_, err := s.Submit(context.Background(), u.ID, sub, nil)
		assert.ErrorIs(t, err, ErrMissingFields)
	}

	sub := wallet()
	sub.ReportType = "Stolen"
	_, err := s.Submit(context.Background(), u.ID, sub, nil)
	assert.ErrorIs(t, err, ErrInvalidReportType)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitWithImage(t *testing.T) {
	s := newTestService(t)
	u := newTestUser(t, s, "ana@example.com")

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(1, 1, color.RGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	item, err := s.Submit(context.Background(), u.ID, wallet(), &buf)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(item.ImagePath, UploadPrefix))

	rc, ct, err := s.OpenImage(context.Background(), strings.TrimPrefix(item.ImagePath, UploadPrefix))
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.NotEmpty(t, data)
}

func TestSubmitRejectsBadImage(t *testing.T) {
	s := newTestService(t)
	u := newTestUser(t, s, "ana@example.com")

	_, err := s.Submit(context.Background(), u.ID, wallet(), strings.NewReader("GIF89a not allowed"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestListings(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	ana := newTestUser(t, s, "ana@example.com")
	bor := newTestUser(t, s, "bor@example.com")

	lost, err := s.Submit(ctx, ana.ID, wallet(), nil)
	require.NoError(t, err)
	foundSub := wallet()
	foundSub.ItemName = "Umbrella"
	foundSub.ReportType = model.ReportFound
	found, err := s.Submit(ctx, bor.ID, foundSub, nil)
	require.NoError(t, err)

	published, err := s.Published(ctx)
	require.NoError(t, err)
	assert.Empty(t, published, "new reports are not public")

	_, err = s.UpdateStatus(ctx, 1, lost.ID, model.StatusPublished)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, 1, found.ID, model.StatusPublished)
	require.NoError(t, err)

	lostList, err := s.ByType(ctx, model.ReportLost)
	require.NoError(t, err)
	require.Len(t, lostList, 1)
	assert.Equal(t, lost.ID, lostList[0].ID)

	_, err = s.ByType(ctx, "Other")
	assert.ErrorIs(t, err, ErrInvalidReportType)

	mine, err := s.OwnedBy(ctx, bor.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, found.ID, mine[0].ID)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, found.ID, all[0].ID, "newest first")

	_, err = s.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusTransitions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := newTestUser(t, s, "ana@example.com")

	item, err := s.Submit(ctx, u.ID, wallet(), nil)
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, 1, item.ID, "Archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.UpdateStatus(ctx, 1, item.ID, model.StatusResolved)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.UpdateStatus(ctx, 1, 999, model.StatusPublished)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := s.UpdateStatus(ctx, 1, item.ID, model.StatusDenied)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDenied, updated.Status)

	_, err = s.UpdateStatus(ctx, 1, item.ID, model.StatusPublished)
	assert.ErrorIs(t, err, ErrInvalidTransition, "denied is terminal")
}

func itemRow(id int64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "item_name", "category", "brand", "incident_date",
		"incident_time", "location", "image_path", "description", "report_type", "contact_firstname",
		"contact_lastname", "contact_phone", "contact_email", "status", "created_at", "updated_at"}).
		AddRow(id, 1, "Wallet", "Accessories", nil, nil, nil, "Library", nil, nil, model.ReportLost,
			nil, nil, nil, nil, status, now, now)
}

func TestUpdateStatusConcurrentChange(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()
	s := &Service{DB: database}

	selectItem := regexp.QuoteMeta(`FROM items WHERE id = ?`)
	mock.ExpectQuery(selectItem).WithArgs(5).WillReturnRows(itemRow(5, model.StatusPending))
	// Another admin published the item between the read and the write.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET status = ?`)).
		WithArgs(model.StatusDenied, 5, model.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectItem).WithArgs(5).WillReturnRows(itemRow(5, model.StatusPublished))

	_, err = s.UpdateStatus(context.Background(), 1, 5, model.StatusDenied)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := newTestUser(t, s, "ana@example.com")

	item, err := s.Submit(ctx, u.ID, wallet(), nil)
	require.NoError(t, err)

	for range 2 {
		updated, err := s.UpdateStatus(ctx, 7, item.ID, model.StatusPublished)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPublished, updated.Status)
	}

	assert.Equal(t, []string{
		model.ActionAdminStatusUpdate,
		model.ActionAdminStatusUpdate,
		model.ActionItemReported,
	}, auditActions(t, s))
}

func TestStatsAndPending(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u := newTestUser(t, s, "ana@example.com")

	a, err := s.Submit(ctx, u.ID, wallet(), nil)
	require.NoError(t, err)
	b, err := s.Submit(ctx, u.ID, wallet(), nil)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, 1, a.ID, model.StatusPublished)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, 1, a.ID, model.StatusResolved)
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLost)
	assert.Equal(t, 1, stats.TotalPending)
	assert.Equal(t, 1, stats.TotalClaimed)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Pending)
	assert.Equal(t, b.ID, pending.LatestID)

	analytics, err := s.Analytics(ctx)
	require.NoError(t, err)
	require.Len(t, analytics.Monthly, 1)
	assert.Equal(t, 2, analytics.Monthly[0].Total)
	assert.Equal(t, 1, analytics.Monthly[0].Resolved)
	require.Len(t, analytics.Categories, 1)
	assert.Equal(t, "Accessories", analytics.Categories[0].Category)
}

func TestAnalyticsEmptyIsNotNull(t *testing.T) {
	s := newTestService(t)
	analytics, err := s.Analytics(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, analytics.Monthly)
	assert.NotNil(t, analytics.Categories)
}
