package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/refoundly/internal/model"
)

// ItemStats holds the dashboard counters.
type ItemStats struct {
	TotalLost    int `json:"totalLost"`
	TotalFound   int `json:"totalFound"`
	TotalPending int `json:"totalPending"`
	TotalClaimed int `json:"totalClaimed"`
}

// MonthlyCount is the number of reports created in a calendar month.
type MonthlyCount struct {
	Month    string `json:"month"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

// CategoryCount is the number of reports in a category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GetItemStats returns the counters shown on the admin dashboard.
func GetItemStats(ctx context.Context, db *sql.DB) (*ItemStats, error) {
	s := &ItemStats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		    COALESCE(SUM(report_type = ?), 0),
		    COALESCE(SUM(report_type = ?), 0),
		    COALESCE(SUM(status = ?), 0),
		    COALESCE(SUM(status = ?), 0)
		 FROM items`,
		model.ReportLost, model.ReportFound, model.StatusPending, model.StatusResolved,
	).Scan(&s.TotalLost, &s.TotalFound, &s.TotalPending, &s.TotalClaimed)
	if err != nil {
		return nil, fmt.Errorf("getting item stats: %w", err)
	}
	return s, nil
}

// CountPending returns the number of items awaiting review and the newest
// pending item ID (0 when there are none).
func CountPending(ctx context.Context, db *sql.DB) (int, int64, error) {
	var count int
	var latest int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(id), 0) FROM items WHERE status = ?`,
		model.StatusPending,
	).Scan(&count, &latest)
	if err != nil {
		return 0, 0, fmt.Errorf("counting pending items: %w", err)
	}
	return count, latest, nil
}

// MonthlyCounts returns report totals per month for the last twelve months,
// oldest first.
func MonthlyCounts(ctx context.Context, db *sql.DB) ([]MonthlyCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', created_at) AS month,
		        COUNT(*),
		        COALESCE(SUM(status = ?), 0)
		 FROM items
		 WHERE created_at >= date('now', 'start of month', '-11 months')
		 GROUP BY month
		 ORDER BY month`,
		model.StatusResolved,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items per month: %w", err)
	}
	defer rows.Close()

	var out []MonthlyCount
	for rows.Next() {
		var m MonthlyCount
		if err := rows.Scan(&m.Month, &m.Total, &m.Resolved); err != nil {
			return nil, fmt.Errorf("scanning monthly count: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CategoryCounts returns report totals per category, largest first.
func CategoryCounts(ctx context.Context, db *sql.DB) ([]CategoryCount, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT category, COUNT(*) AS n FROM items GROUP BY category ORDER BY n DESC, category`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting items per category: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
