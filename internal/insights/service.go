package insights

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/errs"
	"github.com/vantagead/adboard/internal/models"
	"github.com/vantagead/adboard/internal/storage"
)

// GenerateRequest describes one insight to produce. The date range is
// used only for the human-readable text; no metric analysis happens.
type GenerateRequest struct {
	UserID       int64
	InsightType  models.InsightType
	Platform     models.Platform
	CampaignID   *int64
	ConnectionID *int64
	Objective    *models.Objective
	StartDate    time.Time
	EndDate      time.Time
}

// Service produces and stores templated insights.
type Service struct {
	store  *storage.Store
	logger *zap.Logger
}

func NewService(store *storage.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Generate looks up the fixed template for the request's insight type,
// interpolates the platform name and date range, persists the record
// and returns it. Referenced entities must exist and belong to the
// requesting user.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*models.AiInsight, error) {
	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errs.NotFound("user", req.UserID)
	}

	if req.ConnectionID != nil {
		conn, err := s.store.Connections.GetByID(ctx, *req.ConnectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load connection: %w", err)
		}
		if conn == nil || conn.UserID != req.UserID {
			return nil, errs.NotFound("connection", *req.ConnectionID)
		}
	}

	if req.CampaignID != nil {
		campaign, err := s.store.Campaigns.GetByID(ctx, *req.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("failed to load campaign: %w", err)
		}
		if campaign == nil {
			return nil, errs.NotFound("campaign", *req.CampaignID)
		}
		conn, err := s.store.Connections.GetByID(ctx, campaign.ConnectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load campaign connection: %w", err)
		}
		if conn == nil || conn.UserID != req.UserID {
			return nil, errs.NotFound("campaign", *req.CampaignID)
		}
	}

	tpl := lookupTemplate(req.InsightType)
	platform := req.Platform.DisplayName()
	dateRange := formatDateRange(req.StartDate, req.EndDate)

	ins := &models.AiInsight{
		UserID:          req.UserID,
		CampaignID:      req.CampaignID,
		ConnectionID:    req.ConnectionID,
		InsightType:     req.InsightType,
		Title:           fmt.Sprintf(tpl.title, platform),
		Content:         fmt.Sprintf(tpl.content, platform, dateRange),
		Recommendations: tpl.recommendations,
		ConfidenceScore: tpl.confidence,
		Platform:        req.Platform,
		Objective:       req.Objective,
		Metadata:        tpl.metadata,
	}

	if err := s.store.Insights.Create(ctx, ins); err != nil {
		return nil, fmt.Errorf("failed to store insight: %w", err)
	}

	s.logger.Info("insight generated",
		zap.Int64("user_id", req.UserID),
		zap.String("insight_type", string(req.InsightType)),
		zap.String("platform", string(req.Platform)),
	)
	return ins, nil
}

// Recent returns the newest insights for a user, trimmed to the feed
// limit used by the dashboard.
func (s *Service) Recent(ctx context.Context, userID int64, platform *models.Platform, objective *models.Objective, limit int) ([]*models.AiInsight, error) {
	if limit <= 0 || limit > 5 {
		limit = 5
	}
	list, err := s.store.Insights.ListRecent(ctx, userID, platform, objective, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	return list, nil
}
