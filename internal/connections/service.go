// Package connections implements the ad account connection lifecycle:
// create, list-by-user and status updates. Sync is a separate package.
package connections

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/errs"
	"github.com/vantagead/adboard/internal/models"
	"github.com/vantagead/adboard/internal/storage"
)

// CreateRequest carries the fields for linking a new ad account.
type CreateRequest struct {
	UserID       int64
	Platform     models.Platform
	AccountID    string
	AccountName  string
	AccessToken  string
	RefreshToken string
}

// UpdateStatusRequest mutates a connection's status and optionally its
// last sync timestamp. Other fields are never touched.
type UpdateStatusRequest struct {
	ConnectionID int64
	Status       models.ConnectionStatus
	LastSyncAt   *time.Time
}

type Service struct {
	store  *storage.Store
	logger *zap.Logger
}

func NewService(store *storage.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create links an ad account to an existing user. New connections start
// in pending status with no sync history.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.AdAccountConnection, error) {
	user, err := s.store.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errs.NotFound("user", req.UserID)
	}

	conn := &models.AdAccountConnection{
		UserID:       req.UserID,
		Platform:     req.Platform,
		AccountID:    req.AccountID,
		AccountName:  req.AccountName,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		Status:       models.ConnectionStatusPending,
	}
	if err := conn.Validate(); err != nil {
		return nil, errs.Validation(err)
	}

	if err := s.store.Connections.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	s.logger.Info("connection created",
		zap.Int64("connection_id", conn.ID),
		zap.Int64("user_id", conn.UserID),
		zap.String("platform", string(conn.Platform)),
	)
	return conn, nil
}

// ListByUser returns every connection owned by the user.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*models.AdAccountConnection, error) {
	list, err := s.store.Connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return list, nil
}

// Get returns a single connection or a not-found error.
func (s *Service) Get(ctx context.Context, id int64) (*models.AdAccountConnection, error) {
	conn, err := s.store.Connections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return nil, errs.NotFound("connection", id)
	}
	return conn, nil
}

// UpdateStatus changes a connection's status, stamping updated_at and,
// when supplied, last_sync_at. Unknown ids fail with not-found and
// leave no side effects.
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.AdAccountConnection, error) {
	conn, err := s.store.Connections.UpdateStatus(ctx, req.ConnectionID, req.Status, req.LastSyncAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	if conn == nil {
		return nil, errs.NotFound("connection", req.ConnectionID)
	}

	s.logger.Info("connection status updated",
		zap.Int64("connection_id", conn.ID),
		zap.String("status", string(conn.Status)),
	)
	return conn, nil
}
