package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseGroupBy(t *testing.T) {
	if g, err := ParseGroupBy(""); err != nil || g != GroupByDay {
		t.Fatalf("empty group_by: got %q, %v; want day", g, err)
	}
	if g, err := ParseGroupBy("month"); err != nil || g != GroupByMonth {
		t.Fatalf("month group_by: got %q, %v", g, err)
	}
	if _, err := ParseGroupBy("quarter"); err == nil {
		t.Fatal("expected error for unknown group_by")
	}
}

func TestBucketStartWeekIsMonday(t *testing.T) {
	cases := []struct {
		date time.Time
		want time.Time
	}{
		// 2024-01-15 is a Monday.
		{day(2024, time.January, 15), day(2024, time.January, 15)},
		{day(2024, time.January, 16), day(2024, time.January, 15)},
		{day(2024, time.January, 21), day(2024, time.January, 15)}, // Sunday
		{day(2024, time.January, 22), day(2024, time.January, 22)}, // next Monday
	}

	for _, c := range cases {
		got := bucketStart(c.date, GroupByWeek)
		if !got.Equal(c.want) {
			t.Fatalf("bucketStart(%s, week) = %s, want %s",
				c.date.Format("2006-01-02"), got.Format("2006-01-02"), c.want.Format("2006-01-02"))
		}
	}
}

func TestBucketStartMonth(t *testing.T) {
	got := bucketStart(day(2024, time.February, 29), GroupByMonth)
	if want := day(2024, time.February, 1); !got.Equal(want) {
		t.Fatalf("bucketStart month = %s, want %s", got, want)
	}
}

func TestBucketRowsWeekly(t *testing.T) {
	mk := func(campaignID int64, date time.Time, spend string, impressions int64, ctr, roas float64) models.MetricRow {
		return models.MetricRow{
			CampaignMetrics: models.CampaignMetrics{
				CampaignID:  campaignID,
				Date:        date,
				Impressions: impressions,
				Clicks:      impressions / 100,
				Spend:       decimal.RequireFromString(spend),
				CTR:         ctr,
				ROAS:        roas,
				CPC:         decimal.RequireFromString("1.00"),
				CPM:         decimal.RequireFromString("10.00"),
			},
			Platform:  models.PlatformMetaAds,
			Objective: models.ObjectiveTraffic,
		}
	}

	rows := []models.MetricRow{
		// Same ISO week (Mon 15th through Sun 21st).
		mk(1, day(2024, time.January, 16), "10.00", 1000, 2.0, 1.0),
		mk(1, day(2024, time.January, 21), "30.00", 3000, 4.0, 3.0),
		// Next week.
		mk(1, day(2024, time.January, 22), "5.00", 500, 1.0, 0.5),
		// Different campaign, first week.
		mk(2, day(2024, time.January, 16), "7.00", 700, 1.5, 2.0),
	}

	buckets := bucketRows(rows, GroupByWeek)

	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}

	// Sorted by campaign id then period start.
	first := buckets[0]
	if first.CampaignID != 1 || !first.PeriodStart.Equal(day(2024, time.January, 15)) {
		t.Fatalf("unexpected first bucket: %+v", first)
	}
	if first.Days != 2 {
		t.Fatalf("first bucket days = %d, want 2", first.Days)
	}
	if want := decimal.RequireFromString("40.00"); !first.Spend.Equal(want) {
		t.Fatalf("first bucket spend = %s, want %s", first.Spend, want)
	}
	if first.Impressions != 4000 {
		t.Fatalf("first bucket impressions = %d, want 4000", first.Impressions)
	}
	if first.CTR != 3.0 {
		t.Fatalf("first bucket ctr = %f, want mean 3.0", first.CTR)
	}
	if first.ROAS != 2.0 {
		t.Fatalf("first bucket roas = %f, want mean 2.0", first.ROAS)
	}

	second := buckets[1]
	if second.CampaignID != 1 || !second.PeriodStart.Equal(day(2024, time.January, 22)) {
		t.Fatalf("unexpected second bucket: %+v", second)
	}
	if second.Days != 1 {
		t.Fatalf("second bucket days = %d, want 1", second.Days)
	}

	third := buckets[2]
	if third.CampaignID != 2 {
		t.Fatalf("unexpected third bucket: %+v", third)
	}
}

func TestBucketRowsMonthly(t *testing.T) {
	mk := func(date time.Time, spend string) models.MetricRow {
		return models.MetricRow{
			CampaignMetrics: models.CampaignMetrics{
				CampaignID: 1,
				Date:       date,
				Spend:      decimal.RequireFromString(spend),
				CPC:        decimal.Zero,
				CPM:        decimal.Zero,
			},
			Platform:  models.PlatformGoogleAds,
			Objective: models.ObjectiveConversion,
		}
	}

	rows := []models.MetricRow{
		mk(day(2024, time.January, 5), "10.00"),
		mk(day(2024, time.January, 31), "20.00"),
		mk(day(2024, time.February, 1), "40.00"),
	}

	buckets := bucketRows(rows, GroupByMonth)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(buckets))
	}
	if !buckets[0].PeriodStart.Equal(day(2024, time.January, 1)) {
		t.Fatalf("january bucket start = %s", buckets[0].PeriodStart)
	}
	if want := decimal.RequireFromString("30.00"); !buckets[0].Spend.Equal(want) {
		t.Fatalf("january spend = %s, want %s", buckets[0].Spend, want)
	}
	if !buckets[1].PeriodStart.Equal(day(2024, time.February, 1)) {
		t.Fatalf("february bucket start = %s", buckets[1].PeriodStart)
	}
}
