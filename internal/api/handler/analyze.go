package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kyrieos/intelligence-engine/internal/api/response"
	"github.com/kyrieos/intelligence-engine/internal/cfo"
	"github.com/kyrieos/intelligence-engine/internal/worker"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// Analyzer defines the orchestrator operations the CFO handlers depend on.
// *cfo.Service satisfies it.
type Analyzer interface {
	TriggerAnalysis(ctx context.Context, workspaceID string) (*models.Job, error)
	LatestReport(ctx context.Context, workspaceID string) (*models.Job, error)
}

type analyzeRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

type analyzeResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /ai/cfo/analyze.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
			return
		}
		if strings.TrimSpace(req.WorkspaceID) == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "workspace_id is required",
				map[string]string{"field": "workspace_id"})
			return
		}

		job, err := svc.TriggerAnalysis(r.Context(), req.WorkspaceID)
		if err != nil {
			switch {
			case errors.Is(err, cfo.ErrWorkspaceRequired):
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "workspace_id is required",
					map[string]string{"field": "workspace_id"})
			case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrPoolStopped):
				response.Error(w, http.StatusServiceUnavailable, "SERVICE_BUSY",
					"Analysis queue is full, retry later", nil)
			default:
				slog.Error("failed to start analysis", "workspace_id", req.WorkspaceID, "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to start analysis", nil)
			}
			return
		}

		response.Accepted(w, analyzeResponse{
			JobID: job.ID.String(),
			Message: fmt.Sprintf("CFO analysis started for workspace %s. Check /jobs/%s for status.",
				job.WorkspaceID, job.ID),
		})
	}
}

// NewLatestReportHandler returns an http.HandlerFunc for
// GET /ai/cfo/workspaces/{workspaceID}/latest.
func NewLatestReportHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workspaceID := chi.URLParam(r, "workspaceID")

		job, err := svc.LatestReport(r.Context(), workspaceID)
		if errors.Is(err, cfo.ErrNoReport) {
			response.Error(w, http.StatusNotFound, "REPORT_NOT_FOUND",
				"No completed analysis for this workspace", nil)
			return
		}
		if err != nil {
			slog.Error("failed to load latest report", "workspace_id", workspaceID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load latest report", nil)
			return
		}

		response.JSON(w, job)
	}
}
