package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyops/irops/pkg/models"
)

func solutionFixture(id string, composite float64) models.RecoverySolution {
	return models.RecoverySolution{
		SolutionID:       id,
		Title:            "Swap to spare aircraft " + id,
		SafetyScore:      100,
		CostScore:        80,
		PassengerScore:   70,
		NetworkScore:     60,
		CompositeScore:   composite,
		SafetyCompliance: "compliant with significant margin",
		FinancialImpact:  models.FinancialImpact{TotalCost: 42_000},
		PassengerImpact: models.PassengerImpact{
			Affected:            120,
			DelayHours:          2,
			ReprotectionOptions: []string{"rebook on SK412"},
		},
		NetworkImpact: models.NetworkImpact{DownstreamFlights: 2, ConnectionMisses: 1},
	}
}

func arbitrationFixture() *models.ArbitratorOutput {
	top := solutionFixture("SOL-1", 82.0)
	runnerUp := solutionFixture("SOL-2", 71.5)
	runnerUp.SafetyScore = 80
	runnerUp.CostScore = 100
	id := "SOL-1"
	return &models.ArbitratorOutput{
		RecommendedSolutionID: &id,
		SolutionOptions:       []models.RecoverySolution{top, runnerUp},
		ConflictResolutions: []models.ConflictResolution{
			{ConflictType: "timing_mismatch", Resolution: "adopt the most conservative timeline", Rationale: "safety assessments bound the schedule"},
			{ConflictType: "timing_mismatch", Resolution: "adopt the most conservative timeline", Rationale: "safety assessments bound the schedule"},
			{ConflictType: "resource_contention", Resolution: "assign the contested aircraft to the recommended solution", Rationale: "one tail cannot serve two plans"},
		},
		FinalDecision:   "Proceed with SOL-1.",
		Recommendations: []string{"notify crew scheduling", "pre-position ground staff"},
		Justification:   "Highest composite among eligible candidates.",
		Confidence:      0.86,
	}
}

func flightFixture() *models.FlightInfo {
	return &models.FlightInfo{
		FlightNumber:    "SK123",
		Date:            "2026-01-20",
		DisruptionEvent: "hydraulic fault found during pre-departure checks",
	}
}

func TestBuildPopulatesAllSections(t *testing.T) {
	r := Build("d-42", flightFixture(), arbitrationFixture())

	assert.Equal(t, "RPT-d-42", r.ReportID)
	assert.Contains(t, r.ExecutiveSummary, "SK123")
	assert.Contains(t, r.ExecutiveSummary, "maintenance disruption")
	assert.Contains(t, r.ExecutiveSummary, `"Swap to spare aircraft SOL-1"`)
	assert.Contains(t, r.ExecutiveSummary, "82.0")
	assert.Contains(t, r.ExecutiveSummary, "0.86")

	require.Len(t, r.ImpactAssessments, 4)
	assert.Len(t, r.SolutionComparison.Table, 2)
	assert.Equal(t, 2, r.ConflictAnalysis.CountsByType["timing_mismatch"])
	assert.Equal(t, 1, r.ConflictAnalysis.CountsByType["resource_contention"])
	assert.Contains(t, r.RecommendationsSummary, "Proceed with SOL-1.")
	assert.Contains(t, r.RecommendationsSummary, "notify crew scheduling; pre-position ground staff")

	c := Validate(r)
	assert.True(t, c.Complete())
}

func TestExecutiveSummaryNoRecommendation(t *testing.T) {
	arb := arbitrationFixture()
	arb.RecommendedSolutionID = nil
	arb.Confidence = 0

	r := Build("d-43", flightFixture(), arb)
	assert.Contains(t, r.ExecutiveSummary, "manual review")
	assert.Empty(t, r.ImpactAssessments)

	c := Validate(r)
	assert.False(t, c.ImpactAssessments)
	assert.False(t, c.Complete())
}

func TestClassifyDisruption(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"first officer exceeded duty limits", DisruptionCrew},
		{"engine oil pressure warning", DisruptionMaintenance},
		{"fog below landing minima at destination", DisruptionWeather},
		{"night curfew at arrival airport", DisruptionRegulatory},
		{"volcanic ash advisory", DisruptionOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyDisruption(tt.text), tt.text)
	}
}

func TestImpactSeverityBands(t *testing.T) {
	assert.Equal(t, models.SeverityLow, safetySeverity(95))
	assert.Equal(t, models.SeverityMedium, safetySeverity(70))
	assert.Equal(t, models.SeverityHigh, safetySeverity(69.9))

	assert.Equal(t, models.SeverityLow, costSeverity(50_000))
	assert.Equal(t, models.SeverityMedium, costSeverity(150_000))
	assert.Equal(t, models.SeverityHigh, costSeverity(150_001))

	assert.Equal(t, models.SeverityHigh, passengerSeverity(models.PassengerImpact{Cancelled: true}))
	assert.Equal(t, models.SeverityMedium, passengerSeverity(models.PassengerImpact{DelayHours: 4.5}))
	assert.Equal(t, models.SeverityLow, passengerSeverity(models.PassengerImpact{DelayHours: 4}))

	assert.Equal(t, models.SeverityHigh, networkSeverity(models.NetworkImpact{DownstreamFlights: 6}))
	assert.Equal(t, models.SeverityMedium, networkSeverity(models.NetworkImpact{DownstreamFlights: 3}))
	assert.Equal(t, models.SeverityLow, networkSeverity(models.NetworkImpact{DownstreamFlights: 2}))
}

func TestImpactAssessmentsFromRecommended(t *testing.T) {
	r := Build("d-44", flightFixture(), arbitrationFixture())

	byCategory := map[models.ImpactCategory]models.ImpactAssessment{}
	for _, a := range r.ImpactAssessments {
		byCategory[a.Category] = a
	}

	assert.Equal(t, models.SeverityLow, byCategory[models.ImpactSafety].Severity)
	assert.Equal(t, models.SeverityLow, byCategory[models.ImpactFinancial].Severity)
	assert.InDelta(t, 42_000, byCategory[models.ImpactFinancial].EstimatedCost, 0.001)
	assert.Equal(t, 120, byCategory[models.ImpactPassenger].AffectedCount)
	assert.Equal(t, []string{"rebook on SK412"}, byCategory[models.ImpactPassenger].MitigationSteps)
	assert.Equal(t, models.SeverityLow, byCategory[models.ImpactNetwork].Severity)
	assert.Contains(t, byCategory[models.ImpactNetwork].Description, "2 downstream flight(s)")
}

func TestTradeOffsComparesTopTwo(t *testing.T) {
	r := Build("d-45", flightFixture(), arbitrationFixture())

	require.NotEmpty(t, r.SolutionComparison.TradeOffs)
	joined := ""
	for _, s := range r.SolutionComparison.TradeOffs {
		joined += s + "\n"
	}
	// Top leads on safety (100 vs 80) and trails on cost (80 vs 100).
	assert.Contains(t, joined, "leads")
	assert.Contains(t, joined, "safety (100.0 vs 80.0)")
	assert.Contains(t, joined, "trails")
	assert.Contains(t, joined, "cost (80.0 vs 100.0)")
}

func TestTradeOffsSingleSolution(t *testing.T) {
	arb := arbitrationFixture()
	arb.SolutionOptions = arb.SolutionOptions[:1]

	r := Build("d-46", flightFixture(), arb)
	assert.Len(t, r.SolutionComparison.Table, 1)
	assert.Empty(t, r.SolutionComparison.TradeOffs)
}
