package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobTypeBudgetAnalysis tags jobs created by POST /ai/cfo/analyze.
const JobTypeBudgetAnalysis = "budget_analysis"

// IsTerminal reports whether no further transitions are allowed from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Valid reports whether s is one of the four known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusRunning, JobStatusCompleted, JobStatusFailed},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed},
}

// CanTransition reports whether a job in status from may move to status to.
func CanTransition(from, to JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SourcesFor returns every status from which a job may move to status to.
func SourcesFor(to JobStatus) []JobStatus {
	var from []JobStatus
	for _, s := range []JobStatus{JobStatusPending, JobStatusRunning} {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

// Job tracks one asynchronous analysis. The API returns its id on POST /ai/cfo/analyze;
// clients poll GET /jobs/{job_id} until status is completed or failed.
// Result is set only on entering completed, Error only on entering failed.
type Job struct {
	ID          uuid.UUID       `db:"id"           json:"id"`
	Type        string          `db:"type"         json:"type"`
	WorkspaceID string          `db:"workspace_id" json:"workspace_id,omitempty"`
	Status      JobStatus       `db:"status"       json:"status"`
	Result      json.RawMessage `db:"result"       json:"result"`
	Error       *string         `db:"error"        json:"error"`
	StartedAt   *time.Time      `db:"started_at"   json:"started_at,omitempty"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time       `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"   json:"updated_at"`
}

// Clone returns a deep copy so callers never share result bytes or pointers.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Result != nil {
		cp.Result = append(json.RawMessage(nil), j.Result...)
	}
	if j.Error != nil {
		msg := *j.Error
		cp.Error = &msg
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
