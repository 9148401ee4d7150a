package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies a supported external advertising network.
type Platform string

const (
	PlatformMetaAds      Platform = "meta_ads"
	PlatformGoogleAds    Platform = "google_ads"
	PlatformTikTokAds    Platform = "tiktok_ads"
	PlatformLinkedInAds  Platform = "linkedin_ads"
	PlatformTwitterAds   Platform = "twitter_ads"
	PlatformSnapchatAds  Platform = "snapchat_ads"
	PlatformPinterestAds Platform = "pinterest_ads"
)

// Platforms lists every supported network.
var Platforms = []Platform{
	PlatformMetaAds,
	PlatformGoogleAds,
	PlatformTikTokAds,
	PlatformLinkedInAds,
	PlatformTwitterAds,
	PlatformSnapchatAds,
	PlatformPinterestAds,
}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable network name used in insight text.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformMetaAds:
		return "Meta Ads"
	case PlatformGoogleAds:
		return "Google Ads"
	case PlatformTikTokAds:
		return "TikTok Ads"
	case PlatformLinkedInAds:
		return "LinkedIn Ads"
	case PlatformTwitterAds:
		return "Twitter Ads"
	case PlatformSnapchatAds:
		return "Snapchat Ads"
	case PlatformPinterestAds:
		return "Pinterest Ads"
	default:
		return string(p)
	}
}

// ParsePlatform validates a raw platform value from the transport layer.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Objective is a campaign's declared marketing goal.
type Objective string

const (
	ObjectiveAwareness  Objective = "awareness"
	ObjectiveEngagement Objective = "engagement"
	ObjectiveTraffic    Objective = "traffic"
	ObjectiveConversion Objective = "conversion"
)

var Objectives = []Objective{
	ObjectiveAwareness,
	ObjectiveEngagement,
	ObjectiveTraffic,
	ObjectiveConversion,
}

func (o Objective) Valid() bool {
	for _, known := range Objectives {
		if o == known {
			return true
		}
	}
	return false
}

// ParseObjective validates a raw objective value from the transport layer.
func ParseObjective(s string) (Objective, error) {
	o := Objective(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown objective %q", s)
	}
	return o, nil
}

// ConnectionStatus tracks the lifecycle of a linked ad account.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
	ConnectionStatusPending      ConnectionStatus = "pending"
)

func (s ConnectionStatus) Valid() bool {
	switch s {
	case ConnectionStatusConnected, ConnectionStatusDisconnected,
		ConnectionStatusError, ConnectionStatusPending:
		return true
	}
	return false
}

// InsightType categorizes a generated insight.
type InsightType string

const (
	InsightBudgetOptimization    InsightType = "budget_optimization"
	InsightAudienceExpansion     InsightType = "audience_expansion"
	InsightCreativeFatigue       InsightType = "creative_fatigue"
	InsightBidAdjustment         InsightType = "bid_adjustment"
	InsightPerformanceTrend      InsightType = "performance_trend"
	InsightConversionOpportunity InsightType = "conversion_opportunity"
	InsightSeasonality           InsightType = "seasonality"
	InsightPlacementOptimization InsightType = "placement_optimization"
	InsightAnomalyDetection      InsightType = "anomaly_detection"
)

// User owns ad account connections and insights.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// AdAccountConnection links a user to an account on an external network.
type AdAccountConnection struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	Platform     Platform         `json:"platform"`
	AccountID    string           `json:"account_id"`
	AccountName  string           `json:"account_name"`
	AccessToken  string           `json:"-"`
	RefreshToken string           `json:"-"`
	Status       ConnectionStatus `json:"status"`
	LastSyncAt   *time.Time       `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (c *AdAccountConnection) Validate() error {
	if c.UserID == 0 {
		return errors.New("user_id is required")
	}
	if !c.Platform.Valid() {
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	if c.AccountID == "" {
		return errors.New("account_id is required")
	}
	if c.AccessToken == "" {
		return errors.New("access_token is required")
	}
	return nil
}

// Campaign mirrors a campaign synchronized from an external network.
// (connection_id, platform_campaign_id) is the sync upsert key.
type Campaign struct {
	ID                 int64            `json:"id"`
	ConnectionID       int64            `json:"connection_id"`
	PlatformCampaignID string           `json:"platform_campaign_id"`
	Name               string           `json:"name"`
	Objective          Objective        `json:"objective"`
	Status             string           `json:"status"`
	DailyBudget        *decimal.Decimal `json:"daily_budget,omitempty"`
	LifetimeBudget     *decimal.Decimal `json:"lifetime_budget,omitempty"`
	StartDate          *time.Time       `json:"start_date,omitempty"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CampaignMetrics is one campaign's performance for one calendar day.
// (campaign_id, date) is the sync upsert key.
type CampaignMetrics struct {
	ID              int64           `json:"id"`
	CampaignID      int64           `json:"campaign_id"`
	Date            time.Time       `json:"date"`
	Impressions     int64           `json:"impressions"`
	Clicks          int64           `json:"clicks"`
	Spend           decimal.Decimal `json:"spend"`
	Conversions     int64           `json:"conversions"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
	CTR             float64         `json:"ctr"`
	CPC             decimal.Decimal `json:"cpc"`
	CPM             decimal.Decimal `json:"cpm"`
	ROAS            float64         `json:"roas"`
	Frequency       *float64        `json:"frequency,omitempty"`
	Reach           *int64          `json:"reach,omitempty"`
	VideoViews      *int64          `json:"video_views,omitempty"`
	EngagementRate  *float64        `json:"engagement_rate,omitempty"`
}

// MetricRow is a metrics row joined with the dimensions the dashboard
// groups by: the owning connection's platform and campaign's objective.
type MetricRow struct {
	CampaignMetrics
	Platform  Platform  `json:"platform"`
	Objective Objective `json:"objective"`
}

// AiInsight is a stored, immutable insight record.
type AiInsight struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	CampaignID      *int64         `json:"campaign_id,omitempty"`
	ConnectionID    *int64         `json:"connection_id,omitempty"`
	InsightType     InsightType    `json:"insight_type"`
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	Recommendations string         `json:"recommendations"`
	ConfidenceScore float64        `json:"confidence_score"`
	Platform        Platform       `json:"platform"`
	Objective       *Objective     `json:"objective,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// InsightSummary is the trimmed feed entry returned by the dashboard.
type InsightSummary struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	InsightType     InsightType `json:"insight_type"`
	ConfidenceScore float64     `json:"confidence_score"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Day truncates t to its UTC calendar day. Metric dates are compared as
// calendar dates, not instants.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
