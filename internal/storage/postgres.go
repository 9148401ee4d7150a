package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagead/adboard/internal/models"
)

// NewPostgresStore builds a Store with every repo backed by PostgreSQL.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:       NewPostgresUserRepo(pool),
		Connections: NewPostgresConnectionRepo(pool),
		Campaigns:   NewPostgresCampaignRepo(pool),
		Metrics:     NewPostgresMetricsRepo(pool),
		Insights:    NewPostgresInsightRepo(pool),
	}
}

// PostgresUserRepo implements UserRepo using PostgreSQL.
type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, company_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id
	`, u.Email, u.Name, nullString(u.CompanyName), now).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUserRepo) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	var company *string

	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, company_name, created_at, updated_at
		FROM users `+where,
		arg).Scan(&u.ID, &u.Email, &u.Name, &company, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if company != nil {
		u.CompanyName = *company
	}
	return &u, nil
}

// PostgresConnectionRepo implements ConnectionRepo using PostgreSQL.
type PostgresConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresConnectionRepo(pool *pgxpool.Pool) *PostgresConnectionRepo {
	return &PostgresConnectionRepo{pool: pool}
}

const connectionColumns = `id, user_id, platform, account_id, account_name,
	access_token, refresh_token, status, last_sync_at, created_at, updated_at`

func (r *PostgresConnectionRepo) Create(ctx context.Context, c *models.AdAccountConnection) error {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ad_account_connections
			(user_id, platform, account_id, account_name, access_token,
			 refresh_token, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`, c.UserID, c.Platform, c.AccountID, c.AccountName, c.AccessToken,
		nullString(c.RefreshToken), c.Status, now).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func (r *PostgresConnectionRepo) GetByID(ctx context.Context, id int64) (*models.AdAccountConnection, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+connectionColumns+`
		FROM ad_account_connections WHERE id = $1
	`, id)
	return scanConnection(row)
}

func (r *PostgresConnectionRepo) ListByUser(ctx context.Context, userID int64) ([]*models.AdAccountConnection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+connectionColumns+`
		FROM ad_account_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	conns := make([]*models.AdAccountConnection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *PostgresConnectionRepo) UpdateStatus(ctx context.Context, id int64, status models.ConnectionStatus, lastSyncAt *time.Time) (*models.AdAccountConnection, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE ad_account_connections
		SET status = $2,
		    last_sync_at = COALESCE($3, last_sync_at),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+connectionColumns,
		id, status, lastSyncAt, time.Now().UTC())
	return scanConnection(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*models.AdAccountConnection, error) {
	var c models.AdAccountConnection
	var refresh *string

	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.AccountID, &c.AccountName,
		&c.AccessToken, &refresh, &c.Status, &c.LastSyncAt, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan connection: %w", err)
	}
	if refresh != nil {
		c.RefreshToken = *refresh
	}
	return &c, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
