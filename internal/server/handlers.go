package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/dashql/internal/executor"
	"github.com/leapstack-labs/dashql/internal/history"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question        string                `json:"question"`
	Feasible        bool                  `json:"feasible"`
	Reason          string                `json:"reason,omitempty"`
	Plan            string                `json:"plan,omitempty"`
	Attempts        int                   `json:"attempts,omitempty"`
	ValidationError string                `json:"validation_error,omitempty"`
	Result          *executor.QueryResult `json:"result,omitempty"`
	DashboardURL    string                `json:"dashboard_url,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.compiler == nil {
		s.writeError(w, http.StatusServiceUnavailable, "compiler not configured: set ANTHROPIC_API_KEY")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	res, err := s.compiler.Compile(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "compilation failed: "+err.Error())
		return
	}

	resp := askResponse{
		Question:        req.Question,
		Feasible:        res.Plan.Feasible,
		Plan:            res.Notation,
		Attempts:        res.Attempts,
		ValidationError: res.ValidationError,
	}

	if !res.Plan.Feasible {
		resp.Reason = res.Plan.Reason
		if resp.Reason == "" {
			resp.Reason = "Cannot answer this question"
		}
		s.recordHistory(r, req.Question, res.Notation, false, 0, resp.Reason)
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	result := s.executor.ExecutePlan(r.Context(), res.Plan)
	resp.Result = result
	s.recordHistory(r, req.Question, res.Notation, result.Success, result.RowCount, result.Error)

	if result.Success && s.grafana != nil && s.generator != nil && s.grafana.Health(r.Context()) {
		dash := s.generator.GenerateDashboard(res.Plan, "")
		if push := s.grafana.CreateDashboard(r.Context(), dash); push.Success {
			resp.DashboardURL = push.URL
		} else {
			s.logger.Warn("dashboard push failed", "error", push.Error)
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

type queryRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		s.writeError(w, http.StatusBadRequest, "sql is required")
		return
	}

	// Policy violations and driver errors come back inside the result.
	s.writeJSON(w, http.StatusOK, s.executor.Execute(r.Context(), req.SQL))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.db.ListTables(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tables == nil {
		tables = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTableSample(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, s.executor.TableSample(r.Context(), name, limit))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"entries": []*history.Entry{}})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	grafanaOK := false
	if s.grafana != nil {
		grafanaOK = s.grafana.Health(r.Context())
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"compiler_ready":    s.compiler != nil,
		"grafana_connected": grafanaOK,
	})
}

func (s *Server) recordHistory(r *http.Request, question, planText string, success bool, rowCount int, errMsg string) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(question, planText, success, rowCount, errMsg); err != nil {
		s.logger.Warn("failed to record history", "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
