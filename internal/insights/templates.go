package insights

import (
	"fmt"
	"time"

	"github.com/vantagead/adboard/internal/models"
)

// template is a fixed insight body keyed by insight type. Platform name
// and the formatted date range are the only interpolated values, so a
// given type always yields the same confidence score and metadata shape.
type template struct {
	title           string
	content         string
	recommendations string
	confidence      float64
	metadata        map[string]any
}

var templates = map[models.InsightType]template{
	models.InsightBudgetOptimization: {
		title:           "Budget reallocation opportunity on %s",
		content:         "Spend distribution on %s between %s suggests shifting budget toward your top-performing campaigns would improve overall return.",
		recommendations: "Reallocate 15-20% of budget from campaigns with below-average ROAS to your top two performers, then re-evaluate after one week.",
		confidence:      0.82,
		metadata:        map[string]any{"category": "budget", "suggested_shift_pct": 15},
	},
	models.InsightAudienceExpansion: {
		title:           "Audience expansion potential on %s",
		content:         "Your %s campaigns between %s are saturating their current audiences. Similar audiences remain unreached at comparable cost levels.",
		recommendations: "Create lookalike audiences from your highest-converting segments and test them at 10% of existing budget.",
		confidence:      0.74,
		metadata:        map[string]any{"category": "audience", "test_budget_pct": 10},
	},
	models.InsightCreativeFatigue: {
		title:           "Creative fatigue detected on %s",
		content:         "Engagement on %s declined over %s while frequency climbed, a typical signal that audiences have seen your creatives too often.",
		recommendations: "Rotate in fresh creative variants and cap frequency at 3 impressions per user per week.",
		confidence:      0.78,
		metadata:        map[string]any{"category": "creative", "frequency_cap": 3},
	},
	models.InsightBidAdjustment: {
		title:           "Bid strategy tuning for %s",
		content:         "Auction performance on %s between %s shows your bids trailing the winning range during peak hours.",
		recommendations: "Raise bids 10% during peak conversion hours and lower them overnight to hold average CPC steady.",
		confidence:      0.69,
		metadata:        map[string]any{"category": "bidding", "peak_adjustment_pct": 10},
	},
	models.InsightPerformanceTrend: {
		title:           "Performance trend on %s",
		content:         "Key metrics for %s trended upward across %s, with click-through rate leading the improvement.",
		recommendations: "Maintain current targeting and increase budget gradually to capture the favorable trend without destabilizing delivery.",
		confidence:      0.85,
		metadata:        map[string]any{"category": "trend", "direction": "up"},
	},
	models.InsightConversionOpportunity: {
		title:           "Conversion opportunity on %s",
		content:         "Traffic quality on %s during %s is strong but conversion rates lag the click volume, pointing at post-click friction.",
		recommendations: "Audit landing page load time and form length; a one-second load improvement typically lifts conversion rate measurably.",
		confidence:      0.71,
		metadata:        map[string]any{"category": "conversion", "focus": "landing_page"},
	},
	models.InsightSeasonality: {
		title:           "Seasonal pattern on %s",
		content:         "Historical delivery on %s across %s follows a recurring weekly cycle with weekend engagement peaks.",
		recommendations: "Front-load weekend budgets and schedule creative refreshes for Thursday to catch the rising engagement window.",
		confidence:      0.66,
		metadata:        map[string]any{"category": "seasonality", "cycle": "weekly"},
	},
	models.InsightPlacementOptimization: {
		title:           "Placement mix review for %s",
		content:         "Placement-level delivery on %s between %s is concentrated in a small set of placements with uneven cost efficiency.",
		recommendations: "Exclude the bottom-quartile placements by CPM and let delivery rebalance for a week before further changes.",
		confidence:      0.73,
		metadata:        map[string]any{"category": "placement", "action": "exclude_bottom_quartile"},
	},
	models.InsightAnomalyDetection: {
		title:           "Delivery anomaly on %s",
		content:         "Metrics for %s during %s deviate from the recent baseline beyond normal variance.",
		recommendations: "Verify tracking tags fire correctly and check for recent campaign setting changes before adjusting budgets.",
		confidence:      0.88,
		metadata:        map[string]any{"category": "anomaly", "severity": "review"},
	},
}

// genericTemplate backs unrecognized insight types; generation never
// fails on the type value alone.
var genericTemplate = template{
	title:           "Account review for %s",
	content:         "A general review of your %s activity between %s found no single dominant pattern; performance is broadly in line with your account baseline.",
	recommendations: "Continue monitoring key metrics and revisit once more data has accumulated.",
	confidence:      0.5,
	metadata:        map[string]any{"category": "general"},
}

func lookupTemplate(t models.InsightType) template {
	if tpl, ok := templates[t]; ok {
		return tpl
	}
	return genericTemplate
}

func formatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s and %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}
