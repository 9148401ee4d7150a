package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vantagead/adboard/internal/models"
)

// MemoryStore provides in-memory storage for every repository. It backs
// tests and the no-database fallback at startup. Each repository is a
// thin view over the shared state so the metrics fetch can join across
// entities the same way the SQL implementation does.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	users       map[int64]*models.User
	usersByMail map[string]int64
	connections map[int64]*models.AdAccountConnection
	campaigns   map[int64]*models.Campaign
	metrics     map[int64]*models.CampaignMetrics
	insights    map[int64]*models.AiInsight

	// Natural-key indexes enforcing the sync upsert keys.
	campaignsByKey map[campaignKey]int64
	metricsByKey   map[metricKey]int64
}

type campaignKey struct {
	connectionID       int64
	platformCampaignID string
}

type metricKey struct {
	campaignID int64
	date       time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[int64]*models.User),
		usersByMail:    make(map[string]int64),
		connections:    make(map[int64]*models.AdAccountConnection),
		campaigns:      make(map[int64]*models.Campaign),
		metrics:        make(map[int64]*models.CampaignMetrics),
		insights:       make(map[int64]*models.AiInsight),
		campaignsByKey: make(map[campaignKey]int64),
		metricsByKey:   make(map[metricKey]int64),
	}
}

// AsStore exposes the memory store through the repository bundle.
func (s *MemoryStore) AsStore() *Store {
	return &Store{
		Users:       &memUserRepo{s},
		Connections: &memConnectionRepo{s},
		Campaigns:   &memCampaignRepo{s},
		Metrics:     &memMetricsRepo{s},
		Insights:    &memInsightRepo{s},
	}
}

func (s *MemoryStore) allocID() int64 {
	s.nextID++
	return s.nextID
}

// ---- Users ----

type memUserRepo struct{ s *MemoryStore }

func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByMail[u.Email]; exists {
		return fmt.Errorf("duplicate key: users.email %q", u.Email)
	}

	now := time.Now().UTC()
	u.ID = s.allocID()
	u.CreatedAt = now
	u.UpdatedAt = now

	cp := *u
	s.users[u.ID] = &cp
	s.usersByMail[u.Email] = u.ID
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByMail[email]
	if !ok {
		return nil, nil
	}
	cp := *s.users[id]
	return &cp, nil
}

// ---- Connections ----

type memConnectionRepo struct{ s *MemoryStore }

func (r *memConnectionRepo) Create(ctx context.Context, c *models.AdAccountConnection) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c.ID = s.allocID()
	c.CreatedAt = now
	c.UpdatedAt = now

	cp := *c
	s.connections[c.ID] = &cp
	return nil
}

func (r *memConnectionRepo) GetByID(ctx context.Context, id int64) (*models.AdAccountConnection, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.connections[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memConnectionRepo) ListByUser(ctx context.Context, userID int64) ([]*models.AdAccountConnection, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.AdAccountConnection, 0)
	for _, c := range s.connections {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memConnectionRepo) UpdateStatus(ctx context.Context, id int64, status models.ConnectionStatus, lastSyncAt *time.Time) (*models.AdAccountConnection, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.connections[id]
	if !ok {
		return nil, nil
	}
	c.Status = status
	if lastSyncAt != nil {
		t := *lastSyncAt
		c.LastSyncAt = &t
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, nil
}

// ---- Campaigns ----

type memCampaignRepo struct{ s *MemoryStore }

func (r *memCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	key := campaignKey{c.ConnectionID, c.PlatformCampaignID}

	if id, ok := s.campaignsByKey[key]; ok {
		existing := s.campaigns[id]
		c.ID = id
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		cp := *c
		s.campaigns[id] = &cp
		return false, nil
	}

	c.ID = s.allocID()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.campaigns[c.ID] = &cp
	s.campaignsByKey[key] = c.ID
	return true, nil
}

func (r *memCampaignRepo) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCampaignRepo) ListByConnection(ctx context.Context, connectionID int64) ([]*models.Campaign, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Campaign, 0)
	for _, c := range s.campaigns {
		if c.ConnectionID == connectionID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ---- Metrics ----

type memMetricsRepo struct{ s *MemoryStore }

func (r *memMetricsRepo) Upsert(ctx context.Context, m *models.CampaignMetrics) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Date = models.Day(m.Date)
	key := metricKey{m.CampaignID, m.Date}

	if id, ok := s.metricsByKey[key]; ok {
		m.ID = id
		cp := *m
		s.metrics[id] = &cp
		return false, nil
	}

	m.ID = s.allocID()
	cp := *m
	s.metrics[m.ID] = &cp
	s.metricsByKey[key] = m.ID
	return true, nil
}

func (r *memMetricsRepo) ListRows(ctx context.Context, filter MetricsFilter) ([]models.MetricRow, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := models.Day(filter.StartDate)
	end := models.Day(filter.EndDate)

	result := make([]models.MetricRow, 0)
	for _, m := range s.metrics {
		campaign, ok := s.campaigns[m.CampaignID]
		if !ok {
			continue
		}
		conn, ok := s.connections[campaign.ConnectionID]
		if !ok || conn.UserID != filter.UserID {
			continue
		}
		if m.Date.Before(start) || m.Date.After(end) {
			continue
		}
		if len(filter.CampaignIDs) > 0 && !containsID(filter.CampaignIDs, m.CampaignID) {
			continue
		}
		if filter.Platform != nil && conn.Platform != *filter.Platform {
			continue
		}
		if filter.Objective != nil && campaign.Objective != *filter.Objective {
			continue
		}
		result = append(result, models.MetricRow{
			CampaignMetrics: *m,
			Platform:        conn.Platform,
			Objective:       campaign.Objective,
		})
	}
	return result, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ---- Insights ----

type memInsightRepo struct{ s *MemoryStore }

func (r *memInsightRepo) Create(ctx context.Context, ins *models.AiInsight) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ins.ID = s.allocID()
	if ins.CreatedAt.IsZero() {
		ins.CreatedAt = time.Now().UTC()
	}
	cp := *ins
	s.insights[ins.ID] = &cp
	return nil
}

func (r *memInsightRepo) ListRecent(ctx context.Context, userID int64, platform *models.Platform, objective *models.Objective, limit int) ([]*models.AiInsight, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.AiInsight, 0)
	for _, ins := range s.insights {
		if ins.UserID != userID {
			continue
		}
		if platform != nil && ins.Platform != *platform {
			continue
		}
		if objective != nil && (ins.Objective == nil || *ins.Objective != *objective) {
			continue
		}
		cp := *ins
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
