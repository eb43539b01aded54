// Package report assembles the audit-facing DecisionReport from an
// arbitration outcome. Everything here is a pure derivation; the arbitrator
// output is never modified.
package report

import (
	"fmt"
	"strings"

	"github.com/skyops/irops/pkg/models"
)

// DisruptionType classification buckets for the executive summary.
const (
	DisruptionCrew        = "crew"
	DisruptionMaintenance = "maintenance"
	DisruptionWeather     = "weather"
	DisruptionRegulatory  = "regulatory"
	DisruptionOther       = "other"
)

var disruptionKeywords = []struct {
	class    string
	keywords []string
}{
	{DisruptionCrew, []string{"crew", "duty", "rest", "roster", "pilot", "cabin"}},
	{DisruptionMaintenance, []string{"maintenance", "mechanical", "hydraulic", "engine", "technical", "aog", "work order"}},
	{DisruptionWeather, []string{"weather", "fog", "storm", "wind", "snow", "visibility"}},
	{DisruptionRegulatory, []string{"curfew", "slot", "regulatory", "regulation", "customs"}},
}

// Build composes the full decision report for one disruption.
func Build(disruptionID string, flight *models.FlightInfo, arbitration *models.ArbitratorOutput) *models.DecisionReport {
	report := &models.DecisionReport{
		ReportID:    "RPT-" + disruptionID,
		Arbitration: *arbitration,
	}

	report.ExecutiveSummary = executiveSummary(flight, arbitration)
	report.ImpactAssessments = impactAssessments(arbitration)
	report.SolutionComparison = solutionComparison(arbitration)
	report.ConflictAnalysis = conflictAnalysis(arbitration)
	report.RecommendationsSummary = recommendationsSummary(arbitration)
	return report
}

// Completeness reports which required report sections are populated.
type Completeness struct {
	ExecutiveSummary   bool `json:"executive_summary"`
	ImpactAssessments  bool `json:"impact_assessments"`
	SolutionComparison bool `json:"solution_comparison"`
	ConflictAnalysis   bool `json:"conflict_analysis"`
	Recommendations    bool `json:"recommendations"`
}

// Complete is true when every required section is present.
func (c Completeness) Complete() bool {
	return c.ExecutiveSummary && c.ImpactAssessments && c.SolutionComparison && c.ConflictAnalysis && c.Recommendations
}

// Validate checks a report for the required sections.
func Validate(r *models.DecisionReport) Completeness {
	return Completeness{
		ExecutiveSummary:   r.ExecutiveSummary != "",
		ImpactAssessments:  len(r.ImpactAssessments) > 0,
		SolutionComparison: len(r.SolutionComparison.Table) > 0,
		ConflictAnalysis:   r.ConflictAnalysis.CountsByType != nil,
		Recommendations:    r.RecommendationsSummary != "",
	}
}

// ClassifyDisruption buckets the disruption by keyword over the given texts.
// First bucket with a hit wins; no hit is "other".
func ClassifyDisruption(texts ...string) string {
	joined := strings.ToLower(strings.Join(texts, " "))
	for _, bucket := range disruptionKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(joined, kw) {
				return bucket.class
			}
		}
	}
	return DisruptionOther
}

func executiveSummary(flight *models.FlightInfo, arb *models.ArbitratorOutput) string {
	class := ClassifyDisruption(flight.DisruptionEvent, arb.Reasoning, arb.Justification)

	var b strings.Builder
	fmt.Fprintf(&b, "Flight %s on %s experienced a %s disruption (%s). ",
		flight.FlightNumber, flight.Date, class, flight.DisruptionEvent)
	fmt.Fprintf(&b, "%d recovery solution(s) were evaluated. ", len(arb.SolutionOptions))

	if recommended := arb.RecommendedSolution(); recommended != nil {
		fmt.Fprintf(&b, "Recommended: %q (composite score %.1f). ", recommended.Title, recommended.CompositeScore)
	} else {
		b.WriteString("No solution satisfied every binding constraint; the decision requires manual review. ")
	}
	fmt.Fprintf(&b, "Overall confidence: %.2f.", arb.Confidence)
	return b.String()
}

// impactAssessments derives one assessment per category from the recommended
// solution's dimension data. Severity is a banding of that data, not an
// alternative score.
func impactAssessments(arb *models.ArbitratorOutput) []models.ImpactAssessment {
	recommended := arb.RecommendedSolution()
	if recommended == nil {
		return nil
	}

	safety := models.ImpactAssessment{
		Category:    models.ImpactSafety,
		Severity:    safetySeverity(recommended.SafetyScore),
		Description: recommended.SafetyCompliance,
	}

	cost := recommended.FinancialImpact.TotalCost
	financial := models.ImpactAssessment{
		Category:      models.ImpactFinancial,
		Severity:      costSeverity(cost),
		Description:   fmt.Sprintf("estimated total cost USD %.0f", cost),
		EstimatedCost: cost,
	}

	pi := recommended.PassengerImpact
	passenger := models.ImpactAssessment{
		Category:        models.ImpactPassenger,
		Severity:        passengerSeverity(pi),
		Description:     passengerDescription(pi),
		AffectedCount:   pi.Affected,
		MitigationSteps: pi.ReprotectionOptions,
	}

	ni := recommended.NetworkImpact
	network := models.ImpactAssessment{
		Category:      models.ImpactNetwork,
		Severity:      networkSeverity(ni),
		Description:   fmt.Sprintf("%d downstream flight(s) affected, %d connection(s) at risk", ni.DownstreamFlights, ni.ConnectionMisses),
		AffectedCount: ni.DownstreamFlights,
	}

	return []models.ImpactAssessment{safety, passenger, financial, network}
}

func safetySeverity(score float64) models.Severity {
	switch {
	case score >= 90:
		return models.SeverityLow
	case score >= 70:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

func costSeverity(cost float64) models.Severity {
	switch {
	case cost > 150_000:
		return models.SeverityHigh
	case cost > 50_000:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func passengerSeverity(pi models.PassengerImpact) models.Severity {
	switch {
	case pi.Cancelled:
		return models.SeverityHigh
	case pi.DelayHours > 4:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func networkSeverity(ni models.NetworkImpact) models.Severity {
	switch {
	case ni.DownstreamFlights > 5:
		return models.SeverityHigh
	case ni.DownstreamFlights > 2:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

func passengerDescription(pi models.PassengerImpact) string {
	if pi.Cancelled {
		return fmt.Sprintf("%d passengers affected by cancellation, %d reprotection option(s)", pi.Affected, len(pi.ReprotectionOptions))
	}
	return fmt.Sprintf("%d passengers affected by a %.1f hour delay", pi.Affected, pi.DelayHours)
}

func solutionComparison(arb *models.ArbitratorOutput) models.SolutionComparison {
	comparison := models.SolutionComparison{}
	for _, s := range arb.SolutionOptions {
		comparison.Table = append(comparison.Table, models.SolutionComparisonRow{
			SolutionID:     s.SolutionID,
			Title:          s.Title,
			SafetyScore:    s.SafetyScore,
			CostScore:      s.CostScore,
			PassengerScore: s.PassengerScore,
			NetworkScore:   s.NetworkScore,
			CompositeScore: s.CompositeScore,
		})
	}
	if len(arb.SolutionOptions) >= 2 {
		comparison.TradeOffs = tradeOffs(&arb.SolutionOptions[0], &arb.SolutionOptions[1])
	}
	return comparison
}

// tradeOffs states the pairwise differences between the top two solutions.
func tradeOffs(top, runnerUp *models.RecoverySolution) []string {
	var sentences []string
	dimension := func(name string, a, b float64) {
		switch {
		case a > b:
			sentences = append(sentences, fmt.Sprintf("%q leads %q on %s (%.1f vs %.1f)", top.Title, runnerUp.Title, name, a, b))
		case b > a:
			sentences = append(sentences, fmt.Sprintf("%q trails %q on %s (%.1f vs %.1f)", top.Title, runnerUp.Title, name, a, b))
		}
	}
	dimension("safety", top.SafetyScore, runnerUp.SafetyScore)
	dimension("cost", top.CostScore, runnerUp.CostScore)
	dimension("passenger impact", top.PassengerScore, runnerUp.PassengerScore)
	dimension("network impact", top.NetworkScore, runnerUp.NetworkScore)
	return sentences
}

func conflictAnalysis(arb *models.ArbitratorOutput) models.ConflictAnalysis {
	analysis := models.ConflictAnalysis{CountsByType: map[string]int{}}
	for _, res := range arb.ConflictResolutions {
		analysis.CountsByType[res.ConflictType]++
		analysis.ResolutionSummaries = append(analysis.ResolutionSummaries,
			fmt.Sprintf("%s: %s (%s)", res.ConflictType, res.Resolution, res.Rationale))
	}
	return analysis
}

func recommendationsSummary(arb *models.ArbitratorOutput) string {
	if len(arb.Recommendations) == 0 {
		return arb.FinalDecision
	}
	return arb.FinalDecision + " Follow-ups: " + strings.Join(arb.Recommendations, "; ") + "."
}
