package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/models"
	"github.com/vantagead/adboard/internal/storage"
)

// recentInsightLimit bounds the dashboard insights feed.
const recentInsightLimit = 5

// Request selects the metric rows feeding a dashboard or listing call.
// UserID and the inclusive date range are required; the rest narrows
// the row set (all conditions ANDed).
type Request struct {
	UserID      int64
	StartDate   time.Time
	EndDate     time.Time
	CampaignIDs []int64
	Platform    *models.Platform
	Objective   *models.Objective
}

func (r Request) filter() storage.MetricsFilter {
	return storage.MetricsFilter{
		UserID:      r.UserID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		CampaignIDs: r.CampaignIDs,
		Platform:    r.Platform,
		Objective:   r.Objective,
	}
}

// Service fetches filtered metric rows and reduces them to the
// dashboard shape.
type Service struct {
	metrics  storage.MetricsRepo
	insights storage.InsightRepo
	logger   *zap.Logger
}

func NewService(metrics storage.MetricsRepo, insights storage.InsightRepo, logger *zap.Logger) *Service {
	return &Service{metrics: metrics, insights: insights, logger: logger}
}

// Dashboard returns the aggregated rollup for the request: scalar
// summary, per-platform and per-objective breakdowns, and the recent
// insights feed. Any fetch error aborts the whole call; there is no
// partial result.
func (s *Service) Dashboard(ctx context.Context, req Request) (*Result, error) {
	rows, err := s.metrics.ListRows(ctx, req.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metric rows: %w", err)
	}

	result := Aggregate(rows)

	recent, err := s.insights.ListRecent(ctx, req.UserID, req.Platform, req.Objective, recentInsightLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent insights: %w", err)
	}
	for _, ins := range recent {
		result.RecentInsights = append(result.RecentInsights, models.InsightSummary{
			ID:              ins.ID,
			Title:           ins.Title,
			InsightType:     ins.InsightType,
			ConfidenceScore: ins.ConfidenceScore,
			CreatedAt:       ins.CreatedAt,
		})
	}

	s.logger.Debug("dashboard aggregated",
		zap.Int64("user_id", req.UserID),
		zap.Int("rows", len(rows)),
		zap.Int("platform_groups", len(result.Platforms)),
	)
	return &result, nil
}

// ListRows returns the raw daily rows matching the request, for tabular
// display. Same filter semantics as Dashboard; an empty match is an
// empty slice, never an error.
func (s *Service) ListRows(ctx context.Context, req Request) ([]models.MetricRow, error) {
	rows, err := s.metrics.ListRows(ctx, req.filter())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metric rows: %w", err)
	}
	return rows, nil
}
