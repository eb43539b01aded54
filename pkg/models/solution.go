package models

// FinancialImpact quantifies the direct cost of a recovery solution.
type FinancialImpact struct {
	TotalCost float64 `json:"total_cost"` // USD
}

// PassengerImpact quantifies passenger disruption for a recovery solution.
type PassengerImpact struct {
	Affected            int      `json:"affected"`
	DelayHours          float64  `json:"delay_hours"`
	Cancelled           bool     `json:"cancelled"`
	ReprotectionOptions []string `json:"reprotection_options,omitzero"`
}

// NetworkImpact quantifies downstream schedule disruption.
type NetworkImpact struct {
	DownstreamFlights int `json:"downstream_flights"`
	ConnectionMisses  int `json:"connection_misses"`
}

// RecoverySolution is a scored candidate resolution for the disruption.
// Dimension scores are on a 0-100 scale; the composite is the weighted sum
// 0.4*safety + 0.2*cost + 0.2*passenger + 0.2*network rounded to one decimal.
type RecoverySolution struct {
	SolutionID        string  `json:"solution_id"`
	Title             string  `json:"title"`
	SafetyScore       float64 `json:"safety_score"`
	CostScore         float64 `json:"cost_score"`
	PassengerScore    float64 `json:"passenger_score"`
	NetworkScore      float64 `json:"network_score"`
	CompositeScore    float64 `json:"composite_score"`
	Confidence        float64 `json:"confidence"`
	EstimatedDuration string  `json:"estimated_duration"`
	SafetyCompliance  string  `json:"safety_compliance"`

	FinancialImpact FinancialImpact `json:"financial_impact"`
	PassengerImpact PassengerImpact `json:"passenger_impact"`
	NetworkImpact   NetworkImpact   `json:"network_impact"`
}
