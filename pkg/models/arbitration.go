package models

import "time"

// ConflictResolution documents how one identified conflict between agent
// recommendations was reconciled.
type ConflictResolution struct {
	ConflictType        string `json:"conflict_type"`
	ConflictDescription string `json:"conflict_description"`
	Resolution          string `json:"resolution"`
	Rationale           string `json:"rationale"`
}

// ImpactCategory classifies an impact assessment dimension.
type ImpactCategory string

const (
	ImpactSafety    ImpactCategory = "safety"
	ImpactPassenger ImpactCategory = "passenger"
	ImpactFinancial ImpactCategory = "financial"
	ImpactNetwork   ImpactCategory = "network"
)

// Severity is the banded severity of an impact assessment.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ImpactAssessment describes the expected impact of the recommended solution
// in one category.
type ImpactAssessment struct {
	Category        ImpactCategory `json:"category"`
	Severity        Severity       `json:"severity"`
	Description     string         `json:"description"`
	AffectedCount   int            `json:"affected_count"`
	EstimatedCost   float64        `json:"estimated_cost"`
	MitigationSteps []string       `json:"mitigation_steps,omitzero"`
}

// SafetyOverride records a binding constraint that removed an otherwise
// competitive candidate solution.
type SafetyOverride struct {
	SafetyAgent       AgentName `json:"safety_agent"`
	BindingConstraint string    `json:"binding_constraint"`
}

// ArbitratorOutput is the final reconciled decision. A nil
// RecommendedSolutionID with confidence zero is a valid outcome meaning no
// candidate satisfied every binding constraint.
type ArbitratorOutput struct {
	RecommendedSolutionID *string              `json:"recommended_solution_id"`
	SolutionOptions       []RecoverySolution   `json:"solution_options"`
	ConflictsIdentified   []string             `json:"conflicts_identified,omitzero"`
	ConflictResolutions   []ConflictResolution `json:"conflict_resolutions,omitzero"`
	SafetyOverrides       []SafetyOverride     `json:"safety_overrides,omitzero"`
	FinalDecision         string               `json:"final_decision"`
	Recommendations       []string             `json:"recommendations,omitzero"`
	Justification         string               `json:"justification"`
	Reasoning             string               `json:"reasoning"`
	Confidence            float64              `json:"confidence"`
	Timestamp             time.Time            `json:"timestamp"`
}

// RecommendedSolution returns the recommended solution, or nil when the
// arbitrator declared an impasse.
func (o *ArbitratorOutput) RecommendedSolution() *RecoverySolution {
	if o.RecommendedSolutionID == nil {
		return nil
	}
	for i := range o.SolutionOptions {
		if o.SolutionOptions[i].SolutionID == *o.RecommendedSolutionID {
			return &o.SolutionOptions[i]
		}
	}
	return nil
}

// SolutionComparisonRow is one line of the report's side-by-side table.
type SolutionComparisonRow struct {
	SolutionID     string  `json:"solution_id"`
	Title          string  `json:"title"`
	SafetyScore    float64 `json:"safety_score"`
	CostScore      float64 `json:"cost_score"`
	PassengerScore float64 `json:"passenger_score"`
	NetworkScore   float64 `json:"network_score"`
	CompositeScore float64 `json:"composite_score"`
}

// SolutionComparison is the pairwise comparison section of the report.
type SolutionComparison struct {
	Table     []SolutionComparisonRow `json:"table"`
	TradeOffs []string                `json:"trade_offs,omitzero"`
}

// ConflictAnalysis summarizes identified conflicts for the report.
type ConflictAnalysis struct {
	CountsByType        map[string]int `json:"counts_by_type"`
	ResolutionSummaries []string       `json:"resolution_summaries,omitzero"`
}

// DecisionReport is the complete audit record: the arbitrator output plus the
// derived report sections. ReportID is "RPT-" + disruption ID.
type DecisionReport struct {
	ReportID               string             `json:"report_id"`
	Arbitration            ArbitratorOutput   `json:"arbitration"`
	ExecutiveSummary       string             `json:"executive_summary"`
	ImpactAssessments      []ImpactAssessment `json:"impact_assessments"`
	SolutionComparison     SolutionComparison `json:"solution_comparison"`
	ConflictAnalysis       ConflictAnalysis   `json:"conflict_analysis"`
	RecommendationsSummary string             `json:"recommendations_summary"`
}

// Assessment statuses.
const (
	AssessmentComplete   = "complete"
	AssessmentSafetyHalt = "safety_halt"
)

// DisruptionAssessment is the full orchestration result handed back to the
// async surface: both collations, the arbitration, and the audit report.
type DisruptionAssessment struct {
	DisruptionID     string            `json:"disruption_id"`
	FlightInfo       FlightInfo        `json:"flight_info"`
	InitialCollation *Collation        `json:"initial_collation"`
	RevisedCollation *Collation        `json:"revised_collation"`
	Arbitration      *ArbitratorOutput `json:"arbitration"`
	Report           *DecisionReport   `json:"report"`
	Status           string            `json:"status"`
	DurationSeconds  float64           `json:"duration_seconds"`
}
