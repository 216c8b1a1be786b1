package budget

import (
	"math"
	"testing"

	"github.com/kyrieos/intelligence-engine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contract(client string, monthly, hourly float64) models.Contract {
	return models.Contract{ClientName: client, MonthlyValue: monthly, HourlyCost: hourly, IsActive: true}
}

func TestAnalyze_OverBudgetScenario(t *testing.T) {
	r := Analyze([]models.Contract{contract("A", 1000, 50)}, map[string]float64{"A": 25})

	require.Len(t, r.Findings, 1)
	f := r.Findings[0]
	assert.InDelta(t, 1250.0, f.ExpectedCost, 1e-9)
	assert.InDelta(t, 250.0, f.Variance, 1e-9)
	assert.InDelta(t, 25.0, f.VariancePct, 1e-9)
	assert.True(t, f.Alert)
	assert.Contains(t, f.AlertMessage, "OVER BUDGET: A")
	require.Len(t, r.Alerts, 1)
	assert.Equal(t, "A", r.Alerts[0].ClientName)
}

func TestAnalyze_UnderBudgetScenario(t *testing.T) {
	r := Analyze([]models.Contract{contract("B", 1000, 50)}, map[string]float64{"B": 18})

	require.Len(t, r.Findings, 1)
	f := r.Findings[0]
	assert.InDelta(t, 900.0, f.ExpectedCost, 1e-9)
	assert.InDelta(t, -100.0, f.Variance, 1e-9)
	assert.InDelta(t, -10.0, f.VariancePct, 1e-9)
	assert.False(t, f.Alert)
	assert.Empty(t, f.AlertMessage)
	assert.Empty(t, r.Alerts)
}

func TestAnalyze_AlertThresholdIsStrict(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		alert bool
	}{
		{"exactly 10 percent", 22, false},      // 1100 vs 1000
		{"just above 10 percent", 22.02, true}, // 1101 vs 1000
		{"below threshold", 21, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze([]models.Contract{contract("C", 1000, 50)}, map[string]float64{"C": tt.hours})
			require.Len(t, r.Findings, 1)
			assert.Equal(t, tt.alert, r.Findings[0].Alert, "variance_pct=%v", r.Findings[0].VariancePct)
			assert.Equal(t, tt.alert, r.Findings[0].VariancePct > AlertThresholdPct)
		})
	}
}

func TestAnalyze_ZeroRevenueContract(t *testing.T) {
	r := Analyze([]models.Contract{contract("Free", 0, 80)}, map[string]float64{"Free": 10})

	f := r.Findings[0]
	assert.Equal(t, 0.0, f.VariancePct)
	assert.InDelta(t, 800.0, f.ExpectedCost, 1e-9)
	assert.InDelta(t, 800.0, f.Variance, 1e-9)
	assert.False(t, f.Alert)
	assert.Equal(t, 0.0, f.RevenuePct)
}

func TestAnalyze_MissingWorklogMeansZeroHours(t *testing.T) {
	r := Analyze(
		[]models.Contract{contract("A", 1000, 50), contract("Idle", 500, 40)},
		map[string]float64{"A": 10},
	)

	require.Len(t, r.Findings, 2)
	idle := r.Findings[1]
	assert.Equal(t, "Idle", idle.ClientName)
	assert.Equal(t, 0.0, idle.HoursLogged)
	assert.Equal(t, 0.0, idle.ExpectedCost)
	assert.Equal(t, 0.0, idle.HoursPct)
	assert.InDelta(t, -500.0, idle.Variance, 1e-9)
	assert.InDelta(t, -100.0, idle.VariancePct, 1e-9)
}

func TestAnalyze_RevenueSharesSumTo100(t *testing.T) {
	contracts := []models.Contract{
		contract("A", 1234.56, 50),
		contract("B", 3000, 150),
		contract("C", 0.01, 10),
		contract("D", 777.77, 90),
	}
	r := Analyze(contracts, map[string]float64{"A": 3, "B": 60, "D": 1.5})

	var revenueSum, hoursSum float64
	for _, f := range r.Findings {
		revenueSum += f.RevenuePct
		hoursSum += f.HoursPct
	}
	assert.InDelta(t, 100.0, revenueSum, 1e-9)
	assert.InDelta(t, 100.0, hoursSum, 1e-9)
	assert.InDelta(t, 5012.34, r.TotalRevenue, 1e-9)
	assert.InDelta(t, 64.5, r.TotalHours, 1e-9)
}

func TestAnalyze_TotalHoursIncludeClientsWithoutContract(t *testing.T) {
	r := Analyze([]models.Contract{contract("A", 1000, 50)}, map[string]float64{"A": 10, "Internal": 30})

	assert.InDelta(t, 40.0, r.TotalHours, 1e-9)
	assert.InDelta(t, 25.0, r.Findings[0].HoursPct, 1e-9)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	r := Analyze(nil, nil)

	assert.Equal(t, 0.0, r.TotalRevenue)
	assert.Equal(t, 0.0, r.TotalHours)
	assert.NotNil(t, r.Findings)
	assert.NotNil(t, r.Alerts)
	assert.Empty(t, r.Findings)
	assert.Empty(t, r.Alerts)
}

func TestAnalyze_ZeroTotalHours(t *testing.T) {
	r := Analyze([]models.Contract{contract("A", 1000, 50)}, map[string]float64{})

	assert.Equal(t, 0.0, r.Findings[0].HoursPct)
	assert.False(t, math.IsNaN(r.Findings[0].HoursPct))
}

func TestAnalyze_Deterministic(t *testing.T) {
	contracts := []models.Contract{contract("A", 1000, 50), contract("B", 2000, 70), contract("C", 300, 20)}
	hours := map[string]float64{"A": 0.1, "B": 0.2, "C": 0.3, "X": 1e-17, "Y": 123.456}

	first := Analyze(contracts, hours)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Analyze(contracts, hours))
	}
}

func TestAnalyze_AlertsPreserveContractOrder(t *testing.T) {
	contracts := []models.Contract{contract("Z", 100, 50), contract("M", 1000, 50), contract("A", 100, 50)}
	r := Analyze(contracts, map[string]float64{"Z": 10, "M": 1, "A": 10})

	require.Len(t, r.Alerts, 2)
	assert.Equal(t, "Z", r.Alerts[0].ClientName)
	assert.Equal(t, "A", r.Alerts[1].ClientName)
}

func TestHoursByClient_SumsDuplicates(t *testing.T) {
	hours := HoursByClient([]models.WorklogSummary{
		{ClientName: "A", TotalHours: 10},
		{ClientName: "B", TotalHours: 2.5},
		{ClientName: "A", TotalHours: 5},
	})

	assert.Equal(t, map[string]float64{"A": 15, "B": 2.5}, hours)
	assert.Empty(t, HoursByClient(nil))
}

func TestSummarize(t *testing.T) {
	alerting := Analyze([]models.Contract{contract("A", 1000, 50)}, map[string]float64{"A": 25})
	assert.Equal(t, "[ALERT] 1 budget alert(s) found. Total Revenue: 1000.00, Total Hours: 25.0h.", Summarize(alerting))

	healthy := Analyze([]models.Contract{contract("B", 1000, 50)}, map[string]float64{"B": 18})
	assert.Equal(t, "[OK] Budget healthy. Total Revenue: 1000.00, Total Hours: 18.0h. All clients within margin.", Summarize(healthy))
}
