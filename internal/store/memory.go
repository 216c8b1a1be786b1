package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// MemoryStore is an in-process Store for local development and tests.
// Records are lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	jobs     map[uuid.UUID]*models.Job
	jobOrder []uuid.UUID

	contracts map[string][]models.Contract
	worklogs  map[string][]models.WorklogSummary
	actions   []*models.AIAction
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:      make(map[uuid.UUID]*models.Job),
		contracts: make(map[string][]models.Contract),
		worklogs:  make(map[string][]models.WorklogSummary),
	}
}

// SeedWorkspace replaces the contracts and worklog summary for a workspace.
func (m *MemoryStore) SeedWorkspace(workspaceID string, contracts []models.Contract, worklogs []models.WorklogSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs := make([]models.Contract, len(contracts))
	copy(cs, contracts)
	for i := range cs {
		cs[i].WorkspaceID = workspaceID
	}
	ws := make([]models.WorklogSummary, len(worklogs))
	copy(ws, worklogs)
	for i := range ws {
		ws[i].WorkspaceID = workspaceID
	}
	m.contracts[workspaceID] = cs
	m.worklogs[workspaceID] = ws
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

// --- Jobs ---

func (m *MemoryStore) CreateJob(_ context.Context, jobType, workspaceID string) (*models.Job, error) {
	now := time.Now().UTC()
	job := &models.Job{
		ID:          uuid.New(),
		Type:        jobType,
		WorkspaceID: workspaceID,
		Status:      models.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.jobOrder = append(m.jobOrder, job.ID)
	m.mu.Unlock()

	return job.Clone(), nil
}

func (m *MemoryStore) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

func (m *MemoryStore) UpdateJob(_ context.Context, id uuid.UUID, status models.JobStatus, opts ...JobUpdateOption) error {
	params := applyOptions(opts)

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if !models.CanTransition(job.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, status)
	}

	now := time.Now().UTC()
	job.Status = status
	job.UpdatedAt = now
	if status == models.JobStatusRunning {
		job.StartedAt = &now
	}
	if status.IsTerminal() {
		job.CompletedAt = &now
	}
	if params.Result != nil {
		job.Result = append([]byte(nil), params.Result...)
	}
	if params.Error != nil {
		msg := *params.Error
		job.Error = &msg
	}
	return nil
}

func (m *MemoryStore) ListRecentJobs(_ context.Context, limit int) ([]*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first; jobs created in the same instant keep reverse insertion order.
	jobs := make([]*models.Job, 0, len(m.jobOrder))
	for i := len(m.jobOrder) - 1; i >= 0; i-- {
		jobs = append(jobs, m.jobs[m.jobOrder[i]].Clone())
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if n := normalizeLimit(limit); len(jobs) > n {
		jobs = jobs[:n]
	}
	return jobs, nil
}

// --- Workspace data ---

func (m *MemoryStore) ListActiveContracts(_ context.Context, workspaceID string) ([]models.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := []models.Contract{}
	for _, c := range m.contracts[workspaceID] {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *MemoryStore) GetWorklogSummary(_ context.Context, workspaceID string) ([]models.WorklogSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.WorklogSummary, len(m.worklogs[workspaceID]))
	copy(out, m.worklogs[workspaceID])
	return out, nil
}

// --- AI Actions ---

func (m *MemoryStore) CreateAIAction(_ context.Context, action *models.AIAction) error {
	cp := *action
	if action.JobID != nil {
		id := *action.JobID
		cp.JobID = &id
	}
	cp.Metadata = append([]byte(nil), action.Metadata...)

	m.mu.Lock()
	m.actions = append(m.actions, &cp)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListAIActions(_ context.Context, workspaceID string, limit int) ([]*models.AIAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := normalizeLimit(limit)
	actions := []*models.AIAction{}
	for i := len(m.actions) - 1; i >= 0 && len(actions) < n; i-- {
		if m.actions[i].WorkspaceID == workspaceID {
			cp := *m.actions[i]
			actions = append(actions, &cp)
		}
	}
	return actions, nil
}

var _ Store = (*MemoryStore)(nil)
