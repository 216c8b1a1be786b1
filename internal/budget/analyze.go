// Package budget compares contracted revenue with the labor cost of logged hours.
package budget

import (
	"fmt"
	"sort"

	"github.com/kyrieos/intelligence-engine/pkg/models"
)

// AlertThresholdPct is the variance percentage a finding must strictly exceed to be an alert.
const AlertThresholdPct = 10.0

// Analyze computes per-client variance for the given contracts and hours-by-client.
// Callers pass only active contracts; Analyze does not filter. A contract whose client
// has no worklog entry is analyzed with zero hours. Output order follows contracts.
// Returns empty slices (never nil) for empty input.
func Analyze(contracts []models.Contract, hours map[string]float64) models.AnalysisResult {
	result := models.AnalysisResult{
		Findings: make([]models.BudgetFinding, 0, len(contracts)),
		Alerts:   []models.BudgetFinding{},
	}

	for _, c := range contracts {
		result.TotalRevenue += c.MonthlyValue
	}
	result.TotalHours = sumHours(hours)

	for _, c := range contracts {
		f := finding(c, hours[c.ClientName], result.TotalRevenue, result.TotalHours)
		result.Findings = append(result.Findings, f)
		if f.Alert {
			result.Alerts = append(result.Alerts, f)
		}
	}

	return result
}

func finding(c models.Contract, hoursLogged, totalRevenue, totalHours float64) models.BudgetFinding {
	f := models.BudgetFinding{
		ClientName:     c.ClientName,
		MonthlyRevenue: c.MonthlyValue,
		RevenuePct:     percent(c.MonthlyValue, totalRevenue),
		HoursLogged:    hoursLogged,
		HoursPct:       percent(hoursLogged, totalHours),
		HourlyCost:     c.HourlyCost,
		ExpectedCost:   hoursLogged * c.HourlyCost,
	}
	f.Variance = f.ExpectedCost - f.MonthlyRevenue

	// A zero-revenue contract has no meaningful ratio; it reports 0% and never alerts.
	f.VariancePct = percent(f.Variance, f.MonthlyRevenue)

	if f.VariancePct > AlertThresholdPct {
		f.Alert = true
		f.AlertMessage = alertMessage(f)
	}
	return f
}

// sumHours adds hours in key order so float rounding does not depend on map iteration.
func sumHours(hours map[string]float64) float64 {
	clients := make([]string, 0, len(hours))
	for c := range hours {
		clients = append(clients, c)
	}
	sort.Strings(clients)

	var total float64
	for _, c := range clients {
		total += hours[c]
	}
	return total
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func alertMessage(f models.BudgetFinding) string {
	return fmt.Sprintf(
		"OVER BUDGET: %s - monthly revenue is %.2f but team cost is %.2f. "+
			"Variance of %+.1f%% (%.2f over budget). "+
			"Client represents %.1f%% of revenue but consumes %.1f%% of hours.",
		f.ClientName, f.MonthlyRevenue, f.ExpectedCost,
		f.VariancePct, f.Variance,
		f.RevenuePct, f.HoursPct,
	)
}

// HoursByClient folds worklog summary rows into a client → hours map,
// summing rows that repeat a client.
func HoursByClient(summaries []models.WorklogSummary) map[string]float64 {
	hours := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		hours[s.ClientName] += s.TotalHours
	}
	return hours
}

// Summarize renders the one-line headline stored with every completed analysis.
func Summarize(r models.AnalysisResult) string {
	if len(r.Alerts) > 0 {
		return fmt.Sprintf("[ALERT] %d budget alert(s) found. Total Revenue: %.2f, Total Hours: %.1fh.",
			len(r.Alerts), r.TotalRevenue, r.TotalHours)
	}
	return fmt.Sprintf("[OK] Budget healthy. Total Revenue: %.2f, Total Hours: %.1fh. All clients within margin.",
		r.TotalRevenue, r.TotalHours)
}
