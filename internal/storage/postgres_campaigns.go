package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagead/adboard/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

const campaignColumns = `id, connection_id, platform_campaign_id, name, objective,
	status, daily_budget, lifetime_budget, start_date, end_date, created_at, updated_at`

func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) (bool, error) {
	now := time.Now().UTC()
	var inserted bool

	// xmax = 0 only holds for freshly inserted rows, which is how the
	// sync counters distinguish inserts from updates.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns
			(connection_id, platform_campaign_id, name, objective, status,
			 daily_budget, lifetime_budget, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (connection_id, platform_campaign_id) DO UPDATE SET
			name = EXCLUDED.name,
			objective = EXCLUDED.objective,
			status = EXCLUDED.status,
			daily_budget = EXCLUDED.daily_budget,
			lifetime_budget = EXCLUDED.lifetime_budget,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0)
	`, c.ConnectionID, c.PlatformCampaignID, c.Name, c.Objective, c.Status,
		c.DailyBudget, c.LifetimeBudget, c.StartDate, c.EndDate, now).Scan(&c.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert campaign: %w", err)
	}
	c.UpdatedAt = now
	return inserted, nil
}

func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	var c models.Campaign
	err := r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE id = $1
	`, id).Scan(&c.ID, &c.ConnectionID, &c.PlatformCampaignID, &c.Name, &c.Objective,
		&c.Status, &c.DailyBudget, &c.LifetimeBudget, &c.StartDate, &c.EndDate,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func (r *PostgresCampaignRepo) ListByConnection(ctx context.Context, connectionID int64) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE connection_id = $1
		ORDER BY created_at DESC
	`, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]*models.Campaign, 0)
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.ConnectionID, &c.PlatformCampaignID, &c.Name,
			&c.Objective, &c.Status, &c.DailyBudget, &c.LifetimeBudget,
			&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

// PostgresMetricsRepo implements MetricsRepo using PostgreSQL.
type PostgresMetricsRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMetricsRepo(pool *pgxpool.Pool) *PostgresMetricsRepo {
	return &PostgresMetricsRepo{pool: pool}
}

func (r *PostgresMetricsRepo) Upsert(ctx context.Context, m *models.CampaignMetrics) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaign_metrics
			(campaign_id, date, impressions, clicks, spend, conversions,
			 conversion_value, ctr, cpc, cpm, roas, frequency, reach,
			 video_views, engagement_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (campaign_id, date) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			spend = EXCLUDED.spend,
			conversions = EXCLUDED.conversions,
			conversion_value = EXCLUDED.conversion_value,
			ctr = EXCLUDED.ctr,
			cpc = EXCLUDED.cpc,
			cpm = EXCLUDED.cpm,
			roas = EXCLUDED.roas,
			frequency = EXCLUDED.frequency,
			reach = EXCLUDED.reach,
			video_views = EXCLUDED.video_views,
			engagement_rate = EXCLUDED.engagement_rate
		RETURNING id, (xmax = 0)
	`, m.CampaignID, models.Day(m.Date), m.Impressions, m.Clicks, m.Spend,
		m.Conversions, m.ConversionValue, m.CTR, m.CPC, m.CPM, m.ROAS,
		m.Frequency, m.Reach, m.VideoViews, m.EngagementRate).Scan(&m.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert metrics: %w", err)
	}
	return inserted, nil
}

func (r *PostgresMetricsRepo) ListRows(ctx context.Context, filter MetricsFilter) ([]models.MetricRow, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT m.id, m.campaign_id, m.date, m.impressions, m.clicks, m.spend,
		       m.conversions, m.conversion_value, m.ctr, m.cpc, m.cpm, m.roas,
		       m.frequency, m.reach, m.video_views, m.engagement_rate,
		       conn.platform, c.objective
		FROM campaign_metrics m
		JOIN campaigns c ON c.id = m.campaign_id
		JOIN ad_account_connections conn ON conn.id = c.connection_id
		WHERE conn.user_id = $1 AND m.date >= $2 AND m.date <= $3`)

	args := []any{filter.UserID, models.Day(filter.StartDate), models.Day(filter.EndDate)}
	if len(filter.CampaignIDs) > 0 {
		args = append(args, filter.CampaignIDs)
		fmt.Fprintf(&sb, " AND m.campaign_id = ANY($%d)", len(args))
	}
	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		fmt.Fprintf(&sb, " AND conn.platform = $%d", len(args))
	}
	if filter.Objective != nil {
		args = append(args, *filter.Objective)
		fmt.Fprintf(&sb, " AND c.objective = $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric rows: %w", err)
	}
	defer rows.Close()

	result := make([]models.MetricRow, 0)
	for rows.Next() {
		var row models.MetricRow
		if err := rows.Scan(&row.ID, &row.CampaignID, &row.Date, &row.Impressions,
			&row.Clicks, &row.Spend, &row.Conversions, &row.ConversionValue,
			&row.CTR, &row.CPC, &row.CPM, &row.ROAS, &row.Frequency, &row.Reach,
			&row.VideoViews, &row.EngagementRate, &row.Platform, &row.Objective); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
