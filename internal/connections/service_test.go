package connections

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/errs"
	"github.com/vantagead/adboard/internal/models"
	"github.com/vantagead/adboard/internal/storage"
)

func newService(t *testing.T) (*Service, *storage.Store, int64) {
	t.Helper()
	store := storage.NewMemoryStore().AsStore()

	user := &models.User{Email: "ops@example.com", Name: "Ops"}
	if err := store.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewService(store, zap.NewNop()), store, user.ID
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc, _, userID := newService(t)

	conn, err := svc.Create(context.Background(), CreateRequest{
		UserID:      userID,
		Platform:    models.PlatformMetaAds,
		AccountID:   "acct-123",
		AccountName: "Main Account",
		AccessToken: "secret",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if conn.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if conn.Status != models.ConnectionStatusPending {
		t.Fatalf("status = %s, want pending", conn.Status)
	}
	if conn.LastSyncAt != nil {
		t.Fatal("new connection must have no sync history")
	}
}

func TestCreateUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:      999,
		Platform:    models.PlatformMetaAds,
		AccountID:   "acct-123",
		AccessToken: "secret",
	})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, userID := newService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		UserID:      userID,
		Platform:    "myspace_ads",
		AccountID:   "acct-123",
		AccessToken: "secret",
	})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error for unknown platform, got %v", err)
	}

	// Missing fields are a validation failure, never a store failure.
	_, err = svc.Create(context.Background(), CreateRequest{
		UserID:   userID,
		Platform: models.PlatformMetaAds,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error for missing account_id, got %v", err)
	}
}

func TestUpdateStatusPreservesFields(t *testing.T) {
	svc, _, userID := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		UserID:      userID,
		Platform:    models.PlatformGoogleAds,
		AccountID:   "acct-9",
		AccountName: "Search",
		AccessToken: "secret",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	syncedAt := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateStatus(ctx, UpdateStatusRequest{
		ConnectionID: created.ID,
		Status:       models.ConnectionStatusConnected,
		LastSyncAt:   &syncedAt,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}

	if updated.Status != models.ConnectionStatusConnected {
		t.Fatalf("status = %s, want connected", updated.Status)
	}
	if updated.LastSyncAt == nil || !updated.LastSyncAt.Equal(syncedAt) {
		t.Fatalf("last_sync_at = %v, want %v", updated.LastSyncAt, syncedAt)
	}
	if updated.AccessToken != "secret" || updated.AccountName != "Search" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	// Omitting last_sync_at leaves the existing stamp in place.
	updated, err = svc.UpdateStatus(ctx, UpdateStatusRequest{
		ConnectionID: created.ID,
		Status:       models.ConnectionStatusError,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.LastSyncAt == nil || !updated.LastSyncAt.Equal(syncedAt) {
		t.Fatalf("last_sync_at lost on status-only update: %v", updated.LastSyncAt)
	}
}

func TestUpdateStatusUnknownConnection(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		ConnectionID: 404,
		Status:       models.ConnectionStatusConnected,
	})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	svc, store, userID := newService(t)
	ctx := context.Background()

	other := &models.User{Email: "other@example.com", Name: "Other"}
	if err := store.Users.Create(ctx, other); err != nil {
		t.Fatalf("create user: %v", err)
	}

	for _, p := range []models.Platform{models.PlatformMetaAds, models.PlatformTikTokAds} {
		if _, err := svc.Create(ctx, CreateRequest{
			UserID:      userID,
			Platform:    p,
			AccountID:   "acct-" + string(p),
			AccessToken: "secret",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, CreateRequest{
		UserID:      other.ID,
		Platform:    models.PlatformMetaAds,
		AccountID:   "acct-other",
		AccessToken: "secret",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	for _, c := range list {
		if c.UserID != userID {
			t.Fatalf("foreign connection in listing: %+v", c)
		}
	}
}

func TestGetUnknownConnection(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Get(context.Background(), 42)
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
