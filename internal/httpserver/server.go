package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/config"
	"github.com/vantagead/adboard/internal/connections"
	"github.com/vantagead/adboard/internal/dashboard"
	"github.com/vantagead/adboard/internal/database"
	"github.com/vantagead/adboard/internal/insights"
	"github.com/vantagead/adboard/internal/metrics"
	"github.com/vantagead/adboard/internal/middleware"
	"github.com/vantagead/adboard/internal/storage"
	syncsvc "github.com/vantagead/adboard/internal/sync"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB      *database.PostgresDB
	Redis   *database.RedisDB
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server wraps HTTP handlers and the dashboard services.
type Server struct {
	store             *storage.Store
	dashboardService  *dashboard.Service
	connectionService *connections.Service
	insightService    *insights.Service
	syncService       *syncsvc.Service
	logger            *zap.Logger
	config            *config.Config
	metrics           *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	var store *storage.Store
	if deps.DB != nil {
		store = storage.NewPostgresStore(deps.DB.Pool)
	} else {
		store = storage.NewMemoryStore().AsStore()
	}

	var locker syncsvc.Locker
	if deps.Redis != nil {
		locker = syncsvc.NewRedisLocker(deps.Redis.Client, deps.Config.Sync.LockTTL)
	} else {
		locker = syncsvc.NewMemoryLocker()
	}

	s := &Server{
		store:             store,
		dashboardService:  dashboard.NewService(store.Metrics, store.Insights, deps.Logger),
		connectionService: connections.NewService(store, deps.Logger),
		insightService:    insights.NewService(store, deps.Logger),
		syncService:       syncsvc.NewService(store, locker, deps.Config.Sync.WindowDays, deps.Logger),
		logger:            deps.Logger,
		config:            deps.Config,
		metrics:           deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Users
	mux.HandleFunc("/users", s.handleUsers)
	mux.HandleFunc("/users/", s.handleUserByID)

	// Connections
	mux.HandleFunc("/connections", s.handleConnections)
	mux.HandleFunc("/connections/", s.handleConnectionSubroutes)

	// Dashboard and metrics listing
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/campaign-metrics", s.handleCampaignMetrics)

	// Insights
	mux.HandleFunc("/insights", s.handleInsights)

	// Middleware chain, outermost first.
	var handler http.Handler = mux
	handler = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger, deps.Metrics).Handler(handler)
	handler = middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger).Handler(handler)
	handler = middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics).Handler(handler)
	handler = middleware.NewRecoveryMiddleware(deps.Logger).Handler(handler)
	handler = middleware.NewRequestIDMiddleware().Handler(handler)

	return handler
}
