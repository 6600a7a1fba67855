package store

import (
	"context"
	"testing"

	"github.com/erazemk/refoundly/internal/db"
	"github.com/erazemk/refoundly/internal/model"
)

func TestItemStatsAndCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newTestOwner(t, database, "stats@example.com")

	a := newTestItem(t, database, owner.ID, "Wallet", model.ReportLost)
	newTestItem(t, database, owner.ID, "Keys", model.ReportLost)
	c := newTestItem(t, database, owner.ID, "Umbrella", model.ReportFound)

	UpdateItemStatus(ctx, database, a.ID, model.StatusPending, model.StatusPublished)
	UpdateItemStatus(ctx, database, a.ID, model.StatusPublished, model.StatusResolved)
	UpdateItemStatus(ctx, database, c.ID, model.StatusPending, model.StatusPublished)

	stats, err := GetItemStats(ctx, database)
	if err != nil {
		t.Fatalf("GetItemStats: %v", err)
	}
	want := ItemStats{TotalLost: 2, TotalFound: 1, TotalPending: 1, TotalClaimed: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}

	pending, latest, err := CountPending(ctx, database)
	if err != nil {
		t.Fatalf("CountPending: %v", err)
	}
	if pending != 1 || latest == 0 {
		t.Errorf("expected 1 pending with latest id, got %d/%d", pending, latest)
	}

	monthly, err := MonthlyCounts(ctx, database)
	if err != nil {
		t.Fatalf("MonthlyCounts: %v", err)
	}
	if len(monthly) != 1 || monthly[0].Total != 3 || monthly[0].Resolved != 1 {
		t.Errorf("unexpected monthly counts: %+v", monthly)
	}

	categories, err := CategoryCounts(ctx, database)
	if err != nil {
		t.Fatalf("CategoryCounts: %v", err)
	}
	if len(categories) != 1 || categories[0].Category != "Accessories" || categories[0].Count != 3 {
		t.Errorf("unexpected category counts: %+v", categories)
	}
}

func TestItemStatsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	stats, err := GetItemStats(context.Background(), database)
	if err != nil {
		t.Fatalf("GetItemStats: %v", err)
	}
	if *stats != (ItemStats{}) {
		t.Errorf("expected zero stats, got %+v", *stats)
	}
}
