package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Jobs ---

const jobColumns = `id, type, workspace_id, status, result, error, started_at, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.Type, &j.WorkspaceID, &j.Status, &j.Result, &j.Error,
		&j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, jobType, workspaceID string) (*models.Job, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	job := &models.Job{
		ID:          uuid.New(),
		Type:        jobType,
		WorkspaceID: workspaceID,
		Status:      models.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, type, workspace_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.Type, job.WorkspaceID, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// UpdateJob applies a guarded transition in a single statement: the row is only
// touched when its current status is a legal source for status.
func (s *PostgresStore) UpdateJob(ctx context.Context, id uuid.UUID, status models.JobStatus, opts ...JobUpdateOption) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}
	params := applyOptions(opts)

	sources := models.SourcesFor(status)
	from := make([]string, len(sources))
	for i, st := range sources {
		from[i] = string(st)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $3, updated_at = $4`
	args := []any{id, from, status, now}
	argIdx := 5

	if status == models.JobStatusRunning {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status.IsTerminal() {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.Result != nil {
		query += fmt.Sprintf(", result = $%d", argIdx)
		args = append(args, params.Result)
		argIdx++
	}
	if params.Error != nil {
		query += fmt.Sprintf(", error = $%d", argIdx)
		args = append(args, *params.Error)
		argIdx++
	}

	query += " WHERE id = $1 AND status = ANY($2)"

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing matched: either the job is unknown or it is in a state that cannot move to status.
	var current models.JobStatus
	err = s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
}

func (s *PostgresStore) ListRecentJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// --- Workspace data ---

func (s *PostgresStore) ListActiveContracts(ctx context.Context, workspaceID string) ([]models.Contract, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, workspace_id::text, client_name, monthly_value::float8, hourly_cost::float8, is_active
		 FROM contracts WHERE workspace_id = $1 AND is_active ORDER BY client_name, id`, workspaceID)
	if err != nil {
		return nil, workspaceQueryError("list active contracts", workspaceID, err)
	}
	defer rows.Close()

	contracts := []models.Contract{}
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.WorkspaceID, &c.ClientName, &c.MonthlyValue, &c.HourlyCost, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, workspaceQueryError("list active contracts", workspaceID, err)
	}
	return contracts, nil
}

func (s *PostgresStore) GetWorklogSummary(ctx context.Context, workspaceID string) ([]models.WorklogSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT client_name, COALESCE(total_hours, 0)::float8 FROM get_worklog_summary($1)`, workspaceID)
	if err != nil {
		return nil, workspaceQueryError("get worklog summary", workspaceID, err)
	}
	defer rows.Close()

	summaries := []models.WorklogSummary{}
	for rows.Next() {
		w := models.WorklogSummary{WorkspaceID: workspaceID}
		if err := rows.Scan(&w.ClientName, &w.TotalHours); err != nil {
			return nil, fmt.Errorf("scan worklog summary: %w", err)
		}
		summaries = append(summaries, w)
	}
	if err := rows.Err(); err != nil {
		return nil, workspaceQueryError("get worklog summary", workspaceID, err)
	}
	return summaries, nil
}

// workspaceQueryError maps Postgres rejecting the workspace id as a uuid to ErrInvalidWorkspace.
func workspaceQueryError(op, workspaceID string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return fmt.Errorf("%s: %w: %q", op, ErrInvalidWorkspace, workspaceID)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// --- AI Actions ---

func (s *PostgresStore) CreateAIAction(ctx context.Context, action *models.AIAction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ai_actions (id, workspace_id, job_id, agent_name, action, reasoning, metadata, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		action.ID, action.WorkspaceID, action.JobID, action.AgentName, action.Action,
		action.Reasoning, action.Metadata, action.Status, action.CreatedAt)
	if err != nil {
		return fmt.Errorf("create ai action: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAIActions(ctx context.Context, workspaceID string, limit int) ([]*models.AIAction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, workspace_id, job_id, agent_name, action, reasoning, metadata, status, created_at
		 FROM ai_actions WHERE workspace_id = $1 ORDER BY created_at DESC LIMIT $2`,
		workspaceID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list ai actions: %w", err)
	}
	defer rows.Close()

	actions := []*models.AIAction{}
	for rows.Next() {
		var a models.AIAction
		if err := rows.Scan(&a.ID, &a.WorkspaceID, &a.JobID, &a.AgentName, &a.Action,
			&a.Reasoning, &a.Metadata, &a.Status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ai action: %w", err)
		}
		actions = append(actions, &a)
	}
	return actions, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
