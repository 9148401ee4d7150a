package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

func metricRow(platform models.Platform, objective models.Objective, spend string, impressions, clicks, conversions int64, ctr, roas float64) models.MetricRow {
	return models.MetricRow{
		CampaignMetrics: models.CampaignMetrics{
			Impressions: impressions,
			Clicks:      clicks,
			Conversions: conversions,
			Spend:       decimal.RequireFromString(spend),
			CTR:         ctr,
			ROAS:        roas,
			CPC:         decimal.RequireFromString("0.50"),
			CPM:         decimal.RequireFromString("8.00"),
		},
		Platform:  platform,
		Objective: objective,
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if !s.TotalSpend.IsZero() {
		t.Fatalf("expected zero spend, got %s", s.TotalSpend)
	}
	if s.TotalImpressions != 0 || s.TotalClicks != 0 || s.TotalConversions != 0 {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if s.AvgCTR != 0 || s.AvgROAS != 0 || !s.AvgCPC.IsZero() {
		t.Fatalf("expected zero averages on empty input, got %+v", s)
	}
}

func TestSummarizeTotalsAndAverages(t *testing.T) {
	rows := []models.MetricRow{
		metricRow(models.PlatformMetaAds, models.ObjectiveConversion, "100.00", 1000, 50, 5, 5.0, 5.0),
		metricRow(models.PlatformGoogleAds, models.ObjectiveTraffic, "50.50", 2000, 30, 2, 1.5, 1.25),
	}

	s := Summarize(rows)

	if want := decimal.RequireFromString("150.50"); !s.TotalSpend.Equal(want) {
		t.Fatalf("total spend = %s, want %s", s.TotalSpend, want)
	}
	if s.TotalImpressions != 3000 {
		t.Fatalf("total impressions = %d, want 3000", s.TotalImpressions)
	}
	if s.TotalClicks != 80 {
		t.Fatalf("total clicks = %d, want 80", s.TotalClicks)
	}
	if s.TotalConversions != 7 {
		t.Fatalf("total conversions = %d, want 7", s.TotalConversions)
	}
	if s.AvgCTR != 3.25 {
		t.Fatalf("avg ctr = %f, want 3.25", s.AvgCTR)
	}
	// Mean of 5.0 and 1.25, not a ratio of totals.
	if s.AvgROAS != 3.125 {
		t.Fatalf("avg roas = %f, want 3.125", s.AvgROAS)
	}
	if want := decimal.RequireFromString("0.50"); !s.AvgCPC.Equal(want) {
		t.Fatalf("avg cpc = %s, want %s", s.AvgCPC, want)
	}
}

func TestBreakdownByPlatformPartitionsSpend(t *testing.T) {
	rows := []models.MetricRow{
		metricRow(models.PlatformMetaAds, models.ObjectiveConversion, "100.00", 1000, 50, 5, 5.0, 2.0),
		metricRow(models.PlatformMetaAds, models.ObjectiveTraffic, "25.00", 500, 10, 1, 2.0, 1.0),
		metricRow(models.PlatformGoogleAds, models.ObjectiveTraffic, "60.00", 2000, 30, 2, 1.5, 3.0),
	}

	groups := BreakdownByPlatform(rows)

	if len(groups) != 2 {
		t.Fatalf("expected 2 platform groups, got %d", len(groups))
	}

	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Spend)
	}
	total := Summarize(rows).TotalSpend
	if !sum.Equal(total) {
		t.Fatalf("group spend %s does not partition total %s", sum, total)
	}

	// Sorted by platform name: google_ads before meta_ads.
	if groups[0].Platform != models.PlatformGoogleAds {
		t.Fatalf("expected google_ads first, got %s", groups[0].Platform)
	}
	if groups[1].Impressions != 1500 || groups[1].Clicks != 60 {
		t.Fatalf("meta_ads group totals wrong: %+v", groups[1])
	}
}

func TestBreakdownByObjectivePerformanceScore(t *testing.T) {
	rows := []models.MetricRow{
		metricRow(models.PlatformMetaAds, models.ObjectiveConversion, "10.00", 100, 5, 1, 5.0, 4.0),
		metricRow(models.PlatformGoogleAds, models.ObjectiveConversion, "10.00", 100, 5, 1, 5.0, 2.0),
		metricRow(models.PlatformMetaAds, models.ObjectiveAwareness, "5.00", 100, 5, 0, 5.0, 0.5),
	}

	groups := BreakdownByObjective(rows)

	if len(groups) != 2 {
		t.Fatalf("expected 2 objective groups, got %d", len(groups))
	}

	byObjective := make(map[models.Objective]ObjectiveBreakdown)
	for _, g := range groups {
		byObjective[g.Objective] = g
	}

	conv := byObjective[models.ObjectiveConversion]
	if conv.PerformanceScore != 3.0 {
		t.Fatalf("conversion performance score = %f, want mean roas 3.0", conv.PerformanceScore)
	}
	if want := decimal.RequireFromString("20.00"); !conv.Spend.Equal(want) {
		t.Fatalf("conversion spend = %s, want %s", conv.Spend, want)
	}
	if byObjective[models.ObjectiveAwareness].PerformanceScore != 0.5 {
		t.Fatalf("awareness performance score = %f, want 0.5", byObjective[models.ObjectiveAwareness].PerformanceScore)
	}
}

func TestAggregateEmptyHasNoNilSlices(t *testing.T) {
	result := Aggregate(nil)

	if result.Platforms == nil || result.Objectives == nil || result.RecentInsights == nil {
		t.Fatalf("expected empty slices, got %+v", result)
	}
	if len(result.Platforms) != 0 || len(result.Objectives) != 0 {
		t.Fatalf("expected no groups for empty input, got %+v", result)
	}
}
