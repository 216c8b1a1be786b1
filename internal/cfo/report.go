package cfo

import "github.com/kyrieos/intelligence-engine/pkg/models"

// Report is the result stored on a completed budget analysis job.
type Report struct {
	WorkspaceID         string                 `json:"workspace_id"`
	TotalMonthlyRevenue float64                `json:"total_monthly_revenue"`
	TotalHoursLogged    float64                `json:"total_hours_logged"`
	Findings            []models.BudgetFinding `json:"findings"`
	Alerts              []models.BudgetFinding `json:"alerts"`
	Summary             string                 `json:"summary"`

	// Set only when a narrative provider is configured.
	NarrativeProvider string         `json:"narrative_provider,omitempty"`
	Narrative         map[string]any `json:"narrative,omitempty"`
	FullReport        string         `json:"full_report,omitempty"`
	NarrativeError    string         `json:"narrative_error,omitempty"`
}

// EmptyReport is the result for a workspace without active contracts.
type EmptyReport struct {
	Finding string                 `json:"finding"`
	Alerts  []models.BudgetFinding `json:"alerts"`
}

const findingNoContracts = "no active contracts"
