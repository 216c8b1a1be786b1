package models

// BudgetFinding compares one client's contracted revenue against the labor cost of the hours logged for it.
type BudgetFinding struct {
	ClientName     string  `json:"client_name"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	RevenuePct     float64 `json:"revenue_percentage"`
	HoursLogged    float64 `json:"total_hours"`
	HoursPct       float64 `json:"hours_percentage"`
	HourlyCost     float64 `json:"hourly_rate"`
	ExpectedCost   float64 `json:"expected_cost"`
	Variance       float64 `json:"budget_variance"` // positive = over budget
	VariancePct    float64 `json:"variance_percentage"`
	Alert          bool    `json:"alert"`
	AlertMessage   string  `json:"alert_message,omitempty"`
}

// AnalysisResult is the numeric output of a workspace budget analysis.
type AnalysisResult struct {
	TotalRevenue float64         `json:"total_monthly_revenue"`
	TotalHours   float64         `json:"total_hours_logged"`
	Findings     []BudgetFinding `json:"findings"`
	Alerts       []BudgetFinding `json:"alerts"`
}
