package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantagead/adboard/internal/models"
)

// GroupBy selects the time bucket for the flat metrics listing.
type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

// ParseGroupBy validates a raw group_by value; empty defaults to day.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "", GroupByDay:
		return GroupByDay, nil
	case GroupByWeek:
		return GroupByWeek, nil
	case GroupByMonth:
		return GroupByMonth, nil
	}
	return "", fmt.Errorf("unknown group_by %q", s)
}

// BucketRow is a campaign's metrics collapsed into one time bucket.
// Counts, spend and conversion value are re-summed; ctr/cpc/cpm/roas
// are re-averaged as unweighted means over the constituent daily rows,
// the same rules the dashboard summary applies.
type BucketRow struct {
	CampaignID      int64            `json:"campaign_id"`
	PeriodStart     time.Time        `json:"period_start"`
	Platform        models.Platform  `json:"platform"`
	Objective       models.Objective `json:"objective"`
	Impressions     int64            `json:"impressions"`
	Clicks          int64            `json:"clicks"`
	Conversions     int64            `json:"conversions"`
	Spend           decimal.Decimal  `json:"spend"`
	ConversionValue decimal.Decimal  `json:"conversion_value"`
	CTR             float64          `json:"ctr"`
	CPC             decimal.Decimal  `json:"cpc"`
	CPM             decimal.Decimal  `json:"cpm"`
	ROAS            float64          `json:"roas"`
	Days            int              `json:"days"`
}

// ListBucketed returns the request's rows collapsed into day, week or
// month buckets per campaign. Weekly buckets start on Monday; monthly
// buckets align to calendar months.
func (s *Service) ListBucketed(ctx context.Context, req Request, groupBy GroupBy) ([]BucketRow, error) {
	rows, err := s.ListRows(ctx, req)
	if err != nil {
		return nil, err
	}
	return bucketRows(rows, groupBy), nil
}

type bucketKey struct {
	campaignID int64
	start      time.Time
}

func bucketRows(rows []models.MetricRow, groupBy GroupBy) []BucketRow {
	type agg struct {
		row     BucketRow
		ctrSum  float64
		roasSum float64
		cpcSum  decimal.Decimal
		cpmSum  decimal.Decimal
	}

	groups := make(map[bucketKey]*agg)
	for _, row := range rows {
		start := bucketStart(row.Date, groupBy)
		key := bucketKey{row.CampaignID, start}

		g, ok := groups[key]
		if !ok {
			g = &agg{
				row: BucketRow{
					CampaignID:      row.CampaignID,
					PeriodStart:     start,
					Platform:        row.Platform,
					Objective:       row.Objective,
					Spend:           decimal.Zero,
					ConversionValue: decimal.Zero,
				},
				cpcSum: decimal.Zero,
				cpmSum: decimal.Zero,
			}
			groups[key] = g
		}
		g.row.Impressions += row.Impressions
		g.row.Clicks += row.Clicks
		g.row.Conversions += row.Conversions
		g.row.Spend = g.row.Spend.Add(row.Spend)
		g.row.ConversionValue = g.row.ConversionValue.Add(row.ConversionValue)
		g.ctrSum += row.CTR
		g.roasSum += row.ROAS
		g.cpcSum = g.cpcSum.Add(row.CPC)
		g.cpmSum = g.cpmSum.Add(row.CPM)
		g.row.Days++
	}

	result := make([]BucketRow, 0, len(groups))
	for _, g := range groups {
		n := decimal.NewFromInt(int64(g.row.Days))
		g.row.CTR = g.ctrSum / float64(g.row.Days)
		g.row.ROAS = g.roasSum / float64(g.row.Days)
		g.row.CPC = g.cpcSum.Div(n)
		g.row.CPM = g.cpmSum.Div(n)
		result = append(result, g.row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CampaignID != result[j].CampaignID {
			return result[i].CampaignID < result[j].CampaignID
		}
		return result[i].PeriodStart.Before(result[j].PeriodStart)
	})
	return result
}

func bucketStart(date time.Time, groupBy GroupBy) time.Time {
	day := models.Day(date)
	switch groupBy {
	case GroupByWeek:
		// Monday-start weeks.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GroupByMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}
