package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	AIActionBudgetAlert = "budget_alert"
	AIActionAnalysisRun = "budget_analysis_run"

	AIActionStatusPending   = "pending"
	AIActionStatusCompleted = "completed"
)

// AIAction is an audit record of something an agent concluded. The dashboard
// surfaces pending budget_alert rows as warnings.
type AIAction struct {
	ID          uuid.UUID       `db:"id"           json:"id"`
	WorkspaceID string          `db:"workspace_id" json:"workspace_id"`
	JobID       *uuid.UUID      `db:"job_id"       json:"job_id,omitempty"`
	AgentName   string          `db:"agent_name"   json:"agent_name"`
	Action      string          `db:"action"       json:"action"`
	Reasoning   string          `db:"reasoning"    json:"reasoning"`
	Metadata    json.RawMessage `db:"metadata"     json:"metadata,omitempty"`
	Status      string          `db:"status"       json:"status"`
	CreatedAt   time.Time       `db:"created_at"   json:"created_at"`
}
