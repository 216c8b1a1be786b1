package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrInvalidTransition = errors.New("invalid job status transition")
var ErrInvalidWorkspace = errors.New("invalid workspace id")

// Store is the data access interface. All database operations go through here.
// Implementations must be safe for concurrent use.
type Store interface {
	Ping(ctx context.Context) error

	JobStore
	WorkspaceReader

	CreateAIAction(ctx context.Context, action *models.AIAction) error
	ListAIActions(ctx context.Context, workspaceID string, limit int) ([]*models.AIAction, error)
}

// JobStore persists job records. Each job has a single writer, so updates to
// different jobs never conflict.
type JobStore interface {
	CreateJob(ctx context.Context, jobType, workspaceID string) (*models.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJob(ctx context.Context, id uuid.UUID, status models.JobStatus, opts ...JobUpdateOption) error
	ListRecentJobs(ctx context.Context, limit int) ([]*models.Job, error)
}

// WorkspaceReader reads the externally owned contract and worklog data for a workspace.
type WorkspaceReader interface {
	ListActiveContracts(ctx context.Context, workspaceID string) ([]models.Contract, error)
	GetWorklogSummary(ctx context.Context, workspaceID string) ([]models.WorklogSummary, error)
}

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// normalizeLimit clamps list limits to [1, 100], defaulting to 10.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

type jobUpdateParams struct {
	Result json.RawMessage
	Error  *string
}

type JobUpdateOption func(*jobUpdateParams)

// WithResult sets the job's result payload.
func WithResult(result json.RawMessage) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Result = result
	}
}

// WithError sets the job's error text.
func WithError(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Error = &msg
	}
}

func applyOptions(opts []JobUpdateOption) *jobUpdateParams {
	params := &jobUpdateParams{}
	for _, opt := range opts {
		opt(params)
	}
	return params
}
