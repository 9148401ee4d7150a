package sync

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

// generator produces substitute campaign and metrics data in place of a
// real platform API. Campaign identity derives from the connection id,
// so repeated runs upsert the same natural keys instead of minting new
// rows; metric values are randomized per run since updates are free.
type generator struct {
	rng *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{rng: rand.New(rand.NewSource(seed))}
}

var campaignNamePool = []string{
	"Brand Awareness Push",
	"Retargeting Blast",
	"Holiday Promo",
	"Lead Magnet Funnel",
	"Product Launch Teaser",
	"Evergreen Prospecting",
	"App Install Drive",
	"Newsletter Signup",
}

// campaignsFor returns the fixed campaign set for a connection. Count
// and objectives derive from the connection id so the set is stable
// across runs.
func (g *generator) campaignsFor(conn *models.AdAccountConnection) []*models.Campaign {
	count := 3 + int(conn.ID%3)

	campaigns := make([]*models.Campaign, 0, count)
	for i := 0; i < count; i++ {
		daily := decimal.NewFromInt(int64(50 + g.rng.Intn(450)))
		lifetime := daily.Mul(decimal.NewFromInt(30))
		start := models.Day(time.Now().UTC()).AddDate(0, 0, -60)

		campaigns = append(campaigns, &models.Campaign{
			ConnectionID:       conn.ID,
			PlatformCampaignID: fmt.Sprintf("conn_%d_campaign_%d", conn.ID, i+1),
			Name:               campaignNamePool[(int(conn.ID)+i)%len(campaignNamePool)],
			Objective:          models.Objectives[(int(conn.ID)+i)%len(models.Objectives)],
			Status:             "ACTIVE",
			DailyBudget:        &daily,
			LifetimeBudget:     &lifetime,
			StartDate:          &start,
		})
	}
	return campaigns
}

// metricsFor returns one randomized daily metrics row. Rates are kept
// internally consistent with the generated volumes.
func (g *generator) metricsFor(campaignID int64, date time.Time) *models.CampaignMetrics {
	impressions := int64(1000 + g.rng.Intn(49000))
	clicks := int64(float64(impressions) * (0.005 + g.rng.Float64()*0.045))
	if clicks < 1 {
		clicks = 1
	}
	conversions := int64(float64(clicks) * (0.01 + g.rng.Float64()*0.14))

	spend := decimal.NewFromFloat(5 + g.rng.Float64()*495).Round(2)
	conversionValue := spend.Mul(decimal.NewFromFloat(0.5 + g.rng.Float64()*4)).Round(2)

	ctr := float64(clicks) / float64(impressions) * 100
	cpc := spend.Div(decimal.NewFromInt(clicks)).Round(4)
	cpm := spend.Div(decimal.NewFromInt(impressions)).Mul(decimal.NewFromInt(1000)).Round(4)
	roas, _ := conversionValue.Div(spend).Float64()

	frequency := 1 + g.rng.Float64()*3
	reach := int64(float64(impressions) / frequency)
	videoViews := int64(float64(impressions) * g.rng.Float64() * 0.3)
	engagementRate := g.rng.Float64() * 10

	return &models.CampaignMetrics{
		CampaignID:      campaignID,
		Date:            models.Day(date),
		Impressions:     impressions,
		Clicks:          clicks,
		Spend:           spend,
		Conversions:     conversions,
		ConversionValue: conversionValue,
		CTR:             ctr,
		CPC:             cpc,
		CPM:             cpm,
		ROAS:            roas,
		Frequency:       &frequency,
		Reach:           &reach,
		VideoViews:      &videoViews,
		EngagementRate:  &engagementRate,
	}
}
