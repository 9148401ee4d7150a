package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

func TestMemoryUserDuplicateEmail(t *testing.T) {
	store := NewMemoryStore().AsStore()
	ctx := context.Background()

	if err := store.Users.Create(ctx, &models.User{Email: "a@example.com", Name: "A"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Users.Create(ctx, &models.User{Email: "a@example.com", Name: "B"}); err == nil {
		t.Fatal("expected duplicate email error")
	}

	u, err := store.Users.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil || u.Name != "A" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestMemoryMissingRowsReturnNil(t *testing.T) {
	store := NewMemoryStore().AsStore()
	ctx := context.Background()

	if u, err := store.Users.GetByID(ctx, 1); err != nil || u != nil {
		t.Fatalf("users: got %+v, %v; want nil, nil", u, err)
	}
	if c, err := store.Connections.GetByID(ctx, 1); err != nil || c != nil {
		t.Fatalf("connections: got %+v, %v; want nil, nil", c, err)
	}
	if c, err := store.Connections.UpdateStatus(ctx, 1, models.ConnectionStatusError, nil); err != nil || c != nil {
		t.Fatalf("update status: got %+v, %v; want nil, nil", c, err)
	}
}

func TestMemoryCampaignUpsert(t *testing.T) {
	store := NewMemoryStore().AsStore()
	ctx := context.Background()

	campaign := &models.Campaign{
		ConnectionID:       7,
		PlatformCampaignID: "ext-1",
		Name:               "First",
		Objective:          models.ObjectiveTraffic,
		Status:             "ACTIVE",
	}
	inserted, err := store.Campaigns.Upsert(ctx, campaign)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !inserted {
		t.Fatal("first upsert must insert")
	}
	firstID := campaign.ID

	update := &models.Campaign{
		ConnectionID:       7,
		PlatformCampaignID: "ext-1",
		Name:               "Renamed",
		Objective:          models.ObjectiveTraffic,
		Status:             "PAUSED",
	}
	inserted, err = store.Campaigns.Upsert(ctx, update)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if inserted {
		t.Fatal("same natural key must update, not insert")
	}
	if update.ID != firstID {
		t.Fatalf("update id = %d, want existing id %d", update.ID, firstID)
	}

	got, err := store.Campaigns.GetByID(ctx, firstID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Renamed" || got.Status != "PAUSED" {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestMemoryMetricsUpsertNormalizesDate(t *testing.T) {
	store := NewMemoryStore().AsStore()
	ctx := context.Background()

	afternoon := time.Date(2024, time.March, 1, 15, 30, 0, 0, time.UTC)
	m := &models.CampaignMetrics{
		CampaignID: 1,
		Date:       afternoon,
		Spend:      decimal.RequireFromString("10.00"),
	}
	inserted, err := store.Metrics.Upsert(ctx, m)
	if err != nil || !inserted {
		t.Fatalf("upsert: inserted=%v err=%v", inserted, err)
	}

	// Another instant on the same calendar day hits the same row.
	morning := time.Date(2024, time.March, 1, 2, 0, 0, 0, time.UTC)
	inserted, err = store.Metrics.Upsert(ctx, &models.CampaignMetrics{
		CampaignID: 1,
		Date:       morning,
		Spend:      decimal.RequireFromString("12.00"),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if inserted {
		t.Fatal("same calendar day must update, not insert")
	}
}

func TestMemoryListRowsJoinsDimensions(t *testing.T) {
	mem := NewMemoryStore()
	store := mem.AsStore()
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Name: "A"}
	if err := store.Users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	conn := &models.AdAccountConnection{
		UserID:      user.ID,
		Platform:    models.PlatformTikTokAds,
		AccountID:   "acct",
		AccessToken: "tok",
		Status:      models.ConnectionStatusConnected,
	}
	if err := store.Connections.Create(ctx, conn); err != nil {
		t.Fatalf("create connection: %v", err)
	}
	campaign := &models.Campaign{
		ConnectionID:       conn.ID,
		PlatformCampaignID: "ext-1",
		Name:               "C",
		Objective:          models.ObjectiveEngagement,
		Status:             "ACTIVE",
	}
	if _, err := store.Campaigns.Upsert(ctx, campaign); err != nil {
		t.Fatalf("upsert campaign: %v", err)
	}

	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if _, err := store.Metrics.Upsert(ctx, &models.CampaignMetrics{
		CampaignID: campaign.ID,
		Date:       date,
		Spend:      decimal.RequireFromString("10.00"),
	}); err != nil {
		t.Fatalf("upsert metrics: %v", err)
	}

	rows, err := store.Metrics.ListRows(ctx, MetricsFilter{
		UserID:    user.ID,
		StartDate: date,
		EndDate:   date,
	})
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Platform != models.PlatformTikTokAds {
		t.Fatalf("row platform = %s, want connection's platform", rows[0].Platform)
	}
	if rows[0].Objective != models.ObjectiveEngagement {
		t.Fatalf("row objective = %s, want campaign's objective", rows[0].Objective)
	}

	// Filters on the joined dimensions apply.
	wrongPlatform := models.PlatformMetaAds
	rows, err = store.Metrics.ListRows(ctx, MetricsFilter{
		UserID:    user.ID,
		StartDate: date,
		EndDate:   date,
		Platform:  &wrongPlatform,
	})
	if err != nil {
		t.Fatalf("list rows: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("platform filter leaked %d rows", len(rows))
	}
}

func TestMemoryInsightListRecentOrder(t *testing.T) {
	store := NewMemoryStore().AsStore()
	ctx := context.Background()

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.Insights.Create(ctx, &models.AiInsight{
			UserID:      1,
			InsightType: models.InsightSeasonality,
			Title:       "T",
			Platform:    models.PlatformMetaAds,
			CreatedAt:   base, // identical timestamps, id breaks the tie
		}); err != nil {
			t.Fatalf("create insight: %v", err)
		}
	}

	list, err := store.Insights.ListRecent(ctx, 1, nil, nil, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list length = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].ID > list[i-1].ID {
			t.Fatalf("tie not broken by id desc: %d before %d", list[i-1].ID, list[i].ID)
		}
	}
}
