package models

// Contract is an agreement with a client: monthly revenue and the hourly cost of serving it.
// Owned by the product database; this service only reads it.
type Contract struct {
	ID           string  `db:"id"            json:"id"`
	WorkspaceID  string  `db:"workspace_id"  json:"workspace_id"`
	ClientName   string  `db:"client_name"   json:"client_name"`
	MonthlyValue float64 `db:"monthly_value" json:"monthly_value"`
	HourlyCost   float64 `db:"hourly_cost"   json:"hourly_cost"`
	IsActive     bool    `db:"is_active"     json:"is_active"`
}

// WorklogSummary is the total hours logged for one client in the analysis period.
type WorklogSummary struct {
	WorkspaceID string  `db:"workspace_id" json:"workspace_id"`
	ClientName  string  `db:"client_name"  json:"client_name"`
	TotalHours  float64 `db:"total_hours"  json:"total_hours"`
}
