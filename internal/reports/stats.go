package reports

import (
	"context"

	"github.com/erazemk/refoundly/internal/store"
)

// Analytics is the payload behind the admin charts.
type Analytics struct {
	Monthly    []store.MonthlyCount  `json:"monthly"`
	Categories []store.CategoryCount `json:"categories"`
}

// PendingSummary feeds the admin notification badge.
type PendingSummary struct {
	Pending  int   `json:"pending"`
	LatestID int64 `json:"latest_id"`
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*store.ItemStats, error) {
	return store.GetItemStats(ctx, s.DB)
}

// Analytics returns per-month and per-category report counts.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	monthly, err := store.MonthlyCounts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	categories, err := store.CategoryCounts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if monthly == nil {
		monthly = []store.MonthlyCount{}
	}
	if categories == nil {
		categories = []store.CategoryCount{}
	}
	return &Analytics{Monthly: monthly, Categories: categories}, nil
}

// Pending returns how many reports await review and the newest one's id.
func (s *Service) Pending(ctx context.Context) (*PendingSummary, error) {
	n, latest, err := store.CountPending(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &PendingSummary{Pending: n, LatestID: latest}, nil
}
