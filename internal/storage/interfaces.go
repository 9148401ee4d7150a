package storage

import (
	"context"
	"time"

	"github.com/vantagead/adboard/internal/models"
)

// MetricsFilter selects daily metric rows for one user. StartDate and
// EndDate are inclusive calendar days. Optional dimensions are ANDed;
// a nil/empty dimension matches any value.
type MetricsFilter struct {
	UserID      int64
	StartDate   time.Time
	EndDate     time.Time
	CampaignIDs []int64
	Platform    *models.Platform
	Objective   *models.Objective
}

// UserRepo defines operations for user storage.
type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// ConnectionRepo defines operations for ad account connection storage.
type ConnectionRepo interface {
	Create(ctx context.Context, c *models.AdAccountConnection) error
	GetByID(ctx context.Context, id int64) (*models.AdAccountConnection, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.AdAccountConnection, error)

	// UpdateStatus updates status and, when lastSyncAt is non-nil,
	// last_sync_at; updated_at is always refreshed. Returns the updated
	// row, or nil when the connection does not exist.
	UpdateStatus(ctx context.Context, id int64, status models.ConnectionStatus, lastSyncAt *time.Time) (*models.AdAccountConnection, error)
}

// CampaignRepo defines operations for campaign storage.
type CampaignRepo interface {
	// Upsert inserts or updates keyed on (connection_id,
	// platform_campaign_id) and reports whether a new row was created.
	Upsert(ctx context.Context, c *models.Campaign) (inserted bool, err error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	ListByConnection(ctx context.Context, connectionID int64) ([]*models.Campaign, error)
}

// MetricsRepo defines operations for daily campaign metrics.
type MetricsRepo interface {
	// Upsert inserts or updates keyed on (campaign_id, date) and
	// reports whether a new row was created.
	Upsert(ctx context.Context, m *models.CampaignMetrics) (inserted bool, err error)

	// ListRows returns every metric row owned by filter.UserID that
	// satisfies the filter, joined with the owning connection's
	// platform and campaign's objective. Row order is unspecified.
	ListRows(ctx context.Context, filter MetricsFilter) ([]models.MetricRow, error)
}

// InsightRepo defines operations for stored insights.
type InsightRepo interface {
	Create(ctx context.Context, ins *models.AiInsight) error

	// ListRecent returns at most limit insights for the user, newest
	// first (created_at desc, id desc as the deterministic tie-break),
	// optionally restricted to a platform and objective.
	ListRecent(ctx context.Context, userID int64, platform *models.Platform, objective *models.Objective, limit int) ([]*models.AiInsight, error)
}

// Store bundles every repository backed by one storage engine.
type Store struct {
	Users       UserRepo
	Connections ConnectionRepo
	Campaigns   CampaignRepo
	Metrics     MetricsRepo
	Insights    InsightRepo
}
