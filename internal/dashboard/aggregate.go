package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

// Summary holds the scalar totals and averages over a filtered row set.
// Totals are plain sums; averages are unweighted arithmetic means over
// the rows, 0 when the set is empty.
type Summary struct {
	TotalSpend       decimal.Decimal `json:"total_spend"`
	TotalImpressions int64           `json:"total_impressions"`
	TotalClicks      int64           `json:"total_clicks"`
	TotalConversions int64           `json:"total_conversions"`
	AvgCTR           float64         `json:"avg_ctr"`
	AvgCPC           decimal.Decimal `json:"avg_cpc"`
	AvgROAS          float64         `json:"avg_roas"`
}

// PlatformBreakdown is one platform group's summed volume and spend.
type PlatformBreakdown struct {
	Platform    models.Platform `json:"platform"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Conversions int64           `json:"conversions"`
}

// ObjectiveBreakdown is one objective group's spend and performance
// score. The performance score is the mean ROAS across the group's
// rows, not a sum.
type ObjectiveBreakdown struct {
	Objective        models.Objective `json:"objective"`
	Spend            decimal.Decimal  `json:"spend"`
	PerformanceScore float64          `json:"performance_score"`
}

// Result is the dashboard-shaped rollup of a filtered metric row set.
// Rows carries the fetched row count for instrumentation and is not
// part of the response body.
type Result struct {
	Summary        Summary                 `json:"summary"`
	Platforms      []PlatformBreakdown     `json:"platform_breakdown"`
	Objectives     []ObjectiveBreakdown    `json:"objective_breakdown"`
	RecentInsights []models.InsightSummary `json:"recent_insights"`
	Rows           int                     `json:"-"`
}

// Aggregate reduces a fetched row set into the dashboard result, minus
// the insights feed which is fetched separately. Pure function of its
// input; it applies no filtering of its own.
func Aggregate(rows []models.MetricRow) Result {
	return Result{
		Summary:        Summarize(rows),
		Platforms:      BreakdownByPlatform(rows),
		Objectives:     BreakdownByObjective(rows),
		RecentInsights: []models.InsightSummary{},
		Rows:           len(rows),
	}
}

// Summarize computes the scalar totals and unweighted averages. An
// empty row set yields all zeros; the count guard keeps the averages
// from dividing by zero.
func Summarize(rows []models.MetricRow) Summary {
	s := Summary{
		TotalSpend: decimal.Zero,
		AvgCPC:     decimal.Zero,
	}

	var ctrSum, roasSum float64
	cpcSum := decimal.Zero

	for _, row := range rows {
		s.TotalSpend = s.TotalSpend.Add(row.Spend)
		s.TotalImpressions += row.Impressions
		s.TotalClicks += row.Clicks
		s.TotalConversions += row.Conversions
		ctrSum += row.CTR
		roasSum += row.ROAS
		cpcSum = cpcSum.Add(row.CPC)
	}

	if n := len(rows); n > 0 {
		s.AvgCTR = ctrSum / float64(n)
		s.AvgROAS = roasSum / float64(n)
		s.AvgCPC = cpcSum.Div(decimal.NewFromInt(int64(n)))
	}
	return s
}

// BreakdownByPlatform groups rows by the owning connection's platform.
// Only platforms present in the row set appear; output is sorted by
// platform name for determinism, though callers must not rely on order.
func BreakdownByPlatform(rows []models.MetricRow) []PlatformBreakdown {
	groups := make(map[models.Platform]*PlatformBreakdown)
	for _, row := range rows {
		g, ok := groups[row.Platform]
		if !ok {
			g = &PlatformBreakdown{Platform: row.Platform, Spend: decimal.Zero}
			groups[row.Platform] = g
		}
		g.Spend = g.Spend.Add(row.Spend)
		g.Impressions += row.Impressions
		g.Clicks += row.Clicks
		g.Conversions += row.Conversions
	}

	result := make([]PlatformBreakdown, 0, len(groups))
	for _, g := range groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Platform < result[j].Platform })
	return result
}

// BreakdownByObjective groups rows by the owning campaign's objective.
func BreakdownByObjective(rows []models.MetricRow) []ObjectiveBreakdown {
	type objAgg struct {
		spend   decimal.Decimal
		roasSum float64
		count   int
	}

	groups := make(map[models.Objective]*objAgg)
	for _, row := range rows {
		g, ok := groups[row.Objective]
		if !ok {
			g = &objAgg{spend: decimal.Zero}
			groups[row.Objective] = g
		}
		g.spend = g.spend.Add(row.Spend)
		g.roasSum += row.ROAS
		g.count++
	}

	result := make([]ObjectiveBreakdown, 0, len(groups))
	for objective, g := range groups {
		result = append(result, ObjectiveBreakdown{
			Objective:        objective,
			Spend:            g.spend,
			PerformanceScore: g.roasSum / float64(g.count),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Objective < result[j].Objective })
	return result
}
