package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagead/adboard/internal/models"
)

// PostgresInsightRepo implements InsightRepo using PostgreSQL.
type PostgresInsightRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresInsightRepo(pool *pgxpool.Pool) *PostgresInsightRepo {
	return &PostgresInsightRepo{pool: pool}
}

func (r *PostgresInsightRepo) Create(ctx context.Context, ins *models.AiInsight) error {
	var metadata []byte
	if ins.Metadata != nil {
		var err error
		metadata, err = json.Marshal(ins.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal insight metadata: %w", err)
		}
	}

	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ai_insights
			(user_id, campaign_id, connection_id, insight_type, title, content,
			 recommendations, confidence_score, platform, objective, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, ins.UserID, ins.CampaignID, ins.ConnectionID, ins.InsightType, ins.Title,
		ins.Content, ins.Recommendations, ins.ConfidenceScore, ins.Platform,
		ins.Objective, metadata, now).Scan(&ins.ID)
	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}
	ins.CreatedAt = now
	return nil
}

func (r *PostgresInsightRepo) ListRecent(ctx context.Context, userID int64, platform *models.Platform, objective *models.Objective, limit int) ([]*models.AiInsight, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, campaign_id, connection_id, insight_type, title,
		       content, recommendations, confidence_score, platform, objective,
		       metadata, created_at
		FROM ai_insights
		WHERE user_id = $1`)

	args := []any{userID}
	if platform != nil {
		args = append(args, *platform)
		fmt.Fprintf(&sb, " AND platform = $%d", len(args))
	}
	if objective != nil {
		args = append(args, *objective)
		fmt.Fprintf(&sb, " AND objective = $%d", len(args))
	}
	args = append(args, limit)
	// id desc keeps the feed deterministic when created_at collides.
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	insights := make([]*models.AiInsight, 0)
	for rows.Next() {
		var ins models.AiInsight
		var metadata []byte
		if err := rows.Scan(&ins.ID, &ins.UserID, &ins.CampaignID, &ins.ConnectionID,
			&ins.InsightType, &ins.Title, &ins.Content, &ins.Recommendations,
			&ins.ConfidenceScore, &ins.Platform, &ins.Objective, &metadata,
			&ins.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ins.Metadata); err != nil {
				return nil, fmt.Errorf("failed to parse insight metadata: %w", err)
			}
		}
		insights = append(insights, &ins)
	}
	return insights, rows.Err()
}
