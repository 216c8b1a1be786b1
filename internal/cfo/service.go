// Package cfo drives budget analysis jobs from creation to a terminal status.
package cfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kyrieos/intelligence-engine/internal/ai"
	"github.com/kyrieos/intelligence-engine/internal/budget"
	"github.com/kyrieos/intelligence-engine/internal/cache"
	"github.com/kyrieos/intelligence-engine/internal/metrics"
	"github.com/kyrieos/intelligence-engine/internal/store"
	"github.com/kyrieos/intelligence-engine/internal/worker"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// AgentName is recorded on every audit row this service writes.
const AgentName = "CFOAgent"

var (
	ErrWorkspaceRequired = errors.New("workspace_id is required")
	ErrNoReport          = errors.New("no completed analysis for workspace")
)

// Dispatcher accepts tasks for background execution. *worker.Pool satisfies it.
type Dispatcher interface {
	Submit(task worker.Task) error
}

// Service orchestrates budget analysis jobs.
type Service struct {
	store    store.Store
	cache    cache.Cache
	provider models.AIProvider
	pool     Dispatcher
	timeout  time.Duration
}

// NewService creates a Service. provider may be nil, which disables narratives.
func NewService(st store.Store, ca cache.Cache, provider models.AIProvider, pool Dispatcher, timeout time.Duration) *Service {
	return &Service{
		store:    st,
		cache:    ca,
		provider: provider,
		pool:     pool,
		timeout:  timeout,
	}
}

// TriggerAnalysis creates a pending job and hands the analysis to the worker pool.
// Returns the job immediately without waiting for analysis to complete.
func (s *Service) TriggerAnalysis(ctx context.Context, workspaceID string) (*models.Job, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return nil, ErrWorkspaceRequired
	}

	job, err := s.store.CreateJob(ctx, models.JobTypeBudgetAnalysis, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	metrics.RecordJobStatus(string(models.JobStatusPending))

	jobID := job.ID
	err = s.pool.Submit(func(ctx context.Context) {
		s.runAnalysis(ctx, jobID, workspaceID)
	})
	if err != nil {
		msg := fmt.Sprintf("dispatching job: %v", err)
		if uerr := s.store.UpdateJob(context.WithoutCancel(ctx), jobID, models.JobStatusFailed, store.WithError(msg)); uerr != nil {
			slog.Error("failed to mark undispatched job failed", "job_id", jobID, "error", uerr)
		} else {
			metrics.RecordJobStatus(string(models.JobStatusFailed))
		}
		return nil, fmt.Errorf("dispatching job: %w", err)
	}

	return job, nil
}

// LatestReport returns the most recent completed analysis job for a workspace.
func (s *Service) LatestReport(ctx context.Context, workspaceID string) (*models.Job, error) {
	jobID, found, err := s.cache.GetLatestJob(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("reading latest report pointer: %w", err)
	}
	if !found {
		return nil, ErrNoReport
	}

	job, err := s.store.GetJob(ctx, jobID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// jobRun tracks a single execution. Only the worker goroutine running the job touches it.
type jobRun struct {
	store       store.Store
	jobID       uuid.UUID
	workspaceID string
	finished    bool
}

func (r *jobRun) markRunning(ctx context.Context) {
	if err := r.store.UpdateJob(ctx, r.jobID, models.JobStatusRunning); err != nil {
		// Pending may still move straight to a terminal status, so keep going.
		slog.Error("failed to mark job running", "job_id", r.jobID, "error", err)
		return
	}
	metrics.RecordJobStatus(string(models.JobStatusRunning))
}

// finish applies the one terminal transition this run is allowed.
func (r *jobRun) finish(ctx context.Context, status models.JobStatus, opts ...store.JobUpdateOption) bool {
	if r.finished {
		slog.Warn("ignoring second terminal update", "job_id", r.jobID, "status", status)
		return false
	}
	r.finished = true

	if err := r.store.UpdateJob(ctx, r.jobID, status, opts...); err != nil {
		slog.Error("failed to record job outcome; job may remain running",
			"job_id", r.jobID, "status", status, "error", err)
		return false
	}
	metrics.RecordJobStatus(string(status))
	return true
}

func (r *jobRun) fail(ctx context.Context, msg string) {
	slog.Error("budget analysis failed", "job_id", r.jobID, "workspace_id", r.workspaceID, "error", msg)
	r.finish(ctx, models.JobStatusFailed, store.WithError(msg))
}

func (r *jobRun) complete(ctx context.Context, result any) bool {
	data, err := json.Marshal(result)
	if err != nil {
		r.fail(ctx, fmt.Sprintf("encoding result: %v", err))
		return false
	}
	return r.finish(ctx, models.JobStatusCompleted, store.WithResult(data))
}

// runAnalysis executes on a worker goroutine. It recovers from panics and
// always attempts to leave the job completed or failed.
func (s *Service) runAnalysis(ctx context.Context, jobID uuid.UUID, workspaceID string) {
	run := &jobRun{store: s.store, jobID: jobID, workspaceID: workspaceID}
	started := time.Now()
	// Job records must be written even when the pool cancels ctx on shutdown.
	persistCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPanic(metrics.PanicSourceWorker)
			slog.Error("panic in runAnalysis", "error", r, "job_id", jobID)
			run.fail(persistCtx, fmt.Sprintf("panic: %v", r))
		}
		metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	}()

	run.markRunning(persistCtx)

	contracts, err := s.store.ListActiveContracts(ctx, workspaceID)
	if err != nil {
		run.fail(persistCtx, err.Error())
		return
	}
	if len(contracts) == 0 {
		run.complete(persistCtx, EmptyReport{Finding: findingNoContracts, Alerts: []models.BudgetFinding{}})
		return
	}

	worklogs, err := s.store.GetWorklogSummary(ctx, workspaceID)
	if err != nil {
		run.fail(persistCtx, err.Error())
		return
	}

	result := budget.Analyze(contracts, budget.HoursByClient(worklogs))
	report := &Report{
		WorkspaceID:         workspaceID,
		TotalMonthlyRevenue: result.TotalRevenue,
		TotalHoursLogged:    result.TotalHours,
		Findings:            result.Findings,
		Alerts:              result.Alerts,
		Summary:             budget.Summarize(result),
	}
	metrics.BudgetAlertsTotal.Add(float64(len(result.Alerts)))

	s.narrate(ctx, report, result)
	s.audit(persistCtx, jobID, report)

	if !run.complete(persistCtx, report) {
		return
	}

	if err := s.cache.SetLatestJob(persistCtx, workspaceID, jobID); err != nil {
		slog.Warn("failed to update latest report pointer", "workspace_id", workspaceID, "job_id", jobID, "error", err)
	}
	slog.Info("budget analysis completed",
		"job_id", jobID,
		"workspace_id", workspaceID,
		"alerts", len(report.Alerts),
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

// narrate attaches the provider's commentary to report. Failures are recorded
// on the report and never fail the job.
func (s *Service) narrate(ctx context.Context, report *Report, result models.AnalysisResult) {
	if s.provider == nil {
		metrics.RecordNarrative(metrics.NarrativeDisabled)
		return
	}
	report.NarrativeProvider = s.provider.Name()

	// A provider panic costs the narrative, not the finished numbers.
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordPanic(metrics.PanicSourceWorker)
			metrics.RecordNarrative(metrics.NarrativeError)
			slog.Error("panic in narrative provider", "workspace_id", report.WorkspaceID, "provider", report.NarrativeProvider, "error", r)
			report.Narrative = nil
			report.FullReport = ""
			report.NarrativeError = fmt.Sprintf("panic: %v", r)
		}
	}()

	narrateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.provider.Narrate(narrateCtx, models.NarrativeRequest{
		WorkspaceID: report.WorkspaceID,
		Analysis:    result,
	})
	if err != nil {
		slog.Warn("narrative generation failed", "workspace_id", report.WorkspaceID, "provider", s.provider.Name(), "error", err)
		report.NarrativeError = err.Error()
		metrics.RecordNarrative(metrics.NarrativeError)
		return
	}

	n := ai.ParseNarrative(text)
	report.FullReport = n.Raw
	if n.IsStructured() {
		report.Narrative = n.Data
		metrics.RecordNarrative(metrics.NarrativeStructured)
		return
	}
	metrics.RecordNarrative(metrics.NarrativeRaw)
}

// audit writes one budget_alert row per alert and one row for the run itself.
func (s *Service) audit(ctx context.Context, jobID uuid.UUID, report *Report) {
	now := time.Now().UTC()

	for _, alert := range report.Alerts {
		meta, _ := json.Marshal(alert)
		s.recordAction(ctx, &models.AIAction{
			ID:          uuid.New(),
			WorkspaceID: report.WorkspaceID,
			JobID:       &jobID,
			AgentName:   AgentName,
			Action:      models.AIActionBudgetAlert,
			Reasoning:   alert.AlertMessage,
			Metadata:    meta,
			Status:      models.AIActionStatusPending,
			CreatedAt:   now,
		})
	}

	meta, _ := json.Marshal(map[string]any{
		"alert_count":           len(report.Alerts),
		"total_monthly_revenue": report.TotalMonthlyRevenue,
		"total_hours_logged":    report.TotalHoursLogged,
		"narrative_provider":    report.NarrativeProvider,
	})
	s.recordAction(ctx, &models.AIAction{
		ID:          uuid.New(),
		WorkspaceID: report.WorkspaceID,
		JobID:       &jobID,
		AgentName:   AgentName,
		Action:      models.AIActionAnalysisRun,
		Reasoning:   report.Summary,
		Metadata:    meta,
		Status:      models.AIActionStatusCompleted,
		CreatedAt:   now,
	})
}

func (s *Service) recordAction(ctx context.Context, action *models.AIAction) {
	if err := s.store.CreateAIAction(ctx, action); err != nil {
		slog.Warn("failed to record ai action", "workspace_id", action.WorkspaceID, "action", action.Action, "error", err)
	}
}
