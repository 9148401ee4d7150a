package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vantagead/adboard/internal/connections"
	"github.com/vantagead/adboard/internal/dashboard"
	"github.com/vantagead/adboard/internal/errs"
	"github.com/vantagead/adboard/internal/insights"
	"github.com/vantagead/adboard/internal/models"
)

const dateLayout = "2006-01-02"

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Users ----

type createUserRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}

	user := &models.User{Email: req.Email, Name: req.Name, CompanyName: req.CompanyName}
	if err := user.Validate(); err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Users.Create(r.Context(), user); err != nil {
		s.serviceError(w, "failed to create user", err)
		return
	}
	s.jsonResponse(w, user)
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/users/"), 10, 64)
	if err != nil {
		s.errorResponse(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := s.store.Users.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, "failed to get user", err)
		return
	}
	if user == nil {
		http.NotFound(w, r)
		return
	}
	s.jsonResponse(w, user)
}

// ---- Connections ----

type createConnectionRequest struct {
	UserID       int64  `json:"user_id"`
	Platform     string `json:"platform"`
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			s.errorResponse(w, "user_id required", http.StatusBadRequest)
			return
		}
		list, err := s.connectionService.ListByUser(r.Context(), userID)
		if err != nil {
			s.serviceError(w, "failed to list connections", err)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var req createConnectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		platform, err := models.ParsePlatform(req.Platform)
		if err != nil {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		conn, err := s.connectionService.Create(r.Context(), connections.CreateRequest{
			UserID:       req.UserID,
			Platform:     platform,
			AccountID:    req.AccountID,
			AccountName:  req.AccountName,
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
		})
		if err != nil {
			s.serviceError(w, "failed to create connection", err)
			return
		}
		s.jsonResponse(w, conn)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type updateStatusRequest struct {
	Status     string     `json:"status"`
	LastSyncAt *time.Time `json:"last_sync_at"`
}

// handleConnectionSubroutes dispatches /connections/{id},
// /connections/{id}/status and /connections/{id}/sync.
func (s *Server) handleConnectionSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/connections/")
	idStr, action, _ := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.errorResponse(w, "invalid connection id", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		conn, err := s.connectionService.Get(r.Context(), id)
		if err != nil {
			s.serviceError(w, "failed to get connection", err)
			return
		}
		s.jsonResponse(w, conn)

	case "status":
		if r.Method != http.MethodPut {
			s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		status := models.ConnectionStatus(req.Status)
		if !status.Valid() {
			s.errorResponse(w, "unknown status "+strconv.Quote(req.Status), http.StatusBadRequest)
			return
		}
		conn, err := s.connectionService.UpdateStatus(r.Context(), connections.UpdateStatusRequest{
			ConnectionID: id,
			Status:       status,
			LastSyncAt:   req.LastSyncAt,
		})
		if err != nil {
			s.serviceError(w, "failed to update connection", err)
			return
		}
		s.jsonResponse(w, conn)

	case "sync":
		if r.Method != http.MethodPost {
			s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		force := r.URL.Query().Get("force") == "true"
		result, err := s.syncService.Run(r.Context(), id, force)
		if err != nil {
			s.metrics.RecordSync("error", 0, 0)
			s.serviceError(w, "sync failed", err)
			return
		}
		s.metrics.RecordSync("ok", result.CampaignsSynced, result.MetricsSynced)
		s.jsonResponse(w, result)

	default:
		http.NotFound(w, r)
	}
}

// ---- Dashboard ----

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseMetricsRequest(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.dashboardService.Dashboard(r.Context(), *req)
	if err != nil {
		s.metrics.RecordDashboard("error", 0)
		s.serviceError(w, "failed to build dashboard", err)
		return
	}
	s.metrics.RecordDashboard("ok", result.Rows)
	s.jsonResponse(w, result)
}

// ---- Campaign metrics listing ----

func (s *Server) handleCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseMetricsRequest(r)
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	groupBy, err := dashboard.ParseGroupBy(r.URL.Query().Get("group_by"))
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if groupBy == dashboard.GroupByDay {
		rows, err := s.dashboardService.ListRows(r.Context(), *req)
		if err != nil {
			s.serviceError(w, "failed to list metrics", err)
			return
		}
		s.jsonResponse(w, rows)
		return
	}

	rows, err := s.dashboardService.ListBucketed(r.Context(), *req, groupBy)
	if err != nil {
		s.serviceError(w, "failed to list metrics", err)
		return
	}
	s.jsonResponse(w, rows)
}

// ---- Insights ----

type generateInsightRequest struct {
	UserID       int64  `json:"user_id"`
	InsightType  string `json:"insight_type"`
	Platform     string `json:"platform"`
	CampaignID   *int64 `json:"campaign_id"`
	ConnectionID *int64 `json:"connection_id"`
	Objective    string `json:"objective"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			s.errorResponse(w, "user_id required", http.StatusBadRequest)
			return
		}
		platform, objective, err := parseOptionalDimensions(r)
		if err != nil {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		list, err := s.insightService.Recent(r.Context(), userID, platform, objective, 5)
		if err != nil {
			s.serviceError(w, "failed to list insights", err)
			return
		}
		s.jsonResponse(w, list)

	case http.MethodPost:
		var req generateInsightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, "invalid json", http.StatusBadRequest)
			return
		}
		platform, err := models.ParsePlatform(req.Platform)
		if err != nil {
			s.errorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		var objective *models.Objective
		if req.Objective != "" {
			o, err := models.ParseObjective(req.Objective)
			if err != nil {
				s.errorResponse(w, err.Error(), http.StatusBadRequest)
				return
			}
			objective = &o
		}
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			s.errorResponse(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			s.errorResponse(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		ins, err := s.insightService.Generate(r.Context(), insights.GenerateRequest{
			UserID:       req.UserID,
			InsightType:  models.InsightType(req.InsightType),
			Platform:     platform,
			CampaignID:   req.CampaignID,
			ConnectionID: req.ConnectionID,
			Objective:    objective,
			StartDate:    start,
			EndDate:      end,
		})
		if err != nil {
			s.serviceError(w, "failed to generate insight", err)
			return
		}
		s.metrics.RecordInsight(string(ins.InsightType))
		s.jsonResponse(w, ins)

	default:
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ---- Request parsing ----

// parseMetricsRequest reads the shared dashboard/listing filter from
// query parameters: user_id, start_date, end_date (required),
// campaign_ids (CSV), platform and objective (optional).
func parseMetricsRequest(r *http.Request) (*dashboard.Request, error) {
	q := r.URL.Query()

	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil {
		return nil, errInvalidParam("user_id is required")
	}
	start, err := time.Parse(dateLayout, q.Get("start_date"))
	if err != nil {
		return nil, errInvalidParam("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, q.Get("end_date"))
	if err != nil {
		return nil, errInvalidParam("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, errInvalidParam("end_date must not precede start_date")
	}

	req := &dashboard.Request{
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
	}

	if raw := q.Get("campaign_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, errInvalidParam("campaign_ids must be a comma-separated list of ids")
			}
			req.CampaignIDs = append(req.CampaignIDs, id)
		}
	}

	platform, objective, err := parseOptionalDimensions(r)
	if err != nil {
		return nil, err
	}
	req.Platform = platform
	req.Objective = objective
	return req, nil
}

func parseOptionalDimensions(r *http.Request) (*models.Platform, *models.Objective, error) {
	q := r.URL.Query()

	var platform *models.Platform
	if raw := q.Get("platform"); raw != "" {
		p, err := models.ParsePlatform(raw)
		if err != nil {
			return nil, nil, err
		}
		platform = &p
	}

	var objective *models.Objective
	if raw := q.Get("objective"); raw != "" {
		o, err := models.ParseObjective(raw)
		if err != nil {
			return nil, nil, err
		}
		objective = &o
	}
	return platform, objective, nil
}

type paramError string

func (e paramError) Error() string { return string(e) }

func errInvalidParam(msg string) error { return paramError(msg) }

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// serviceError maps the error taxonomy onto HTTP statuses: validation
// to 400, not-found to 404, state-conflict to 409, anything else is a
// store failure.
func (s *Server) serviceError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errs.IsValidation(err):
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
	case errs.IsNotFound(err):
		s.errorResponse(w, err.Error(), http.StatusNotFound)
	case errs.IsStateConflict(err):
		s.errorResponse(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error(logMsg, zap.Error(err))
		s.metrics.RecordStoreError(logMsg)
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
	}
}
