// Package models defines the shared domain types for IROPS disruption
// orchestration: agent responses, collations, recovery solutions, the
// arbitrator output, and the persisted request/session records.
package models

import "time"

// AgentName identifies one of the seven specialist agents.
type AgentName string

const (
	AgentCrewCompliance  AgentName = "crew_compliance"
	AgentMaintenance     AgentName = "maintenance"
	AgentRegulatory      AgentName = "regulatory"
	AgentNetwork         AgentName = "network"
	AgentGuestExperience AgentName = "guest_experience"
	AgentCargo           AgentName = "cargo"
	AgentFinance         AgentName = "finance"
)

// SafetyAgents are the agents whose binding constraints gate arbitration
// eligibility. Order matters for deterministic constraint aggregation.
var SafetyAgents = []AgentName{AgentCrewCompliance, AgentMaintenance, AgentRegulatory}

// BusinessAgents influence scoring but never gate eligibility.
var BusinessAgents = []AgentName{AgentNetwork, AgentGuestExperience, AgentCargo, AgentFinance}

// AllAgents lists every canonical agent, safety agents first.
var AllAgents = []AgentName{
	AgentCrewCompliance, AgentMaintenance, AgentRegulatory,
	AgentNetwork, AgentGuestExperience, AgentCargo, AgentFinance,
}

// IsSafety reports whether the agent belongs to the safety partition.
func (n AgentName) IsSafety() bool {
	switch n {
	case AgentCrewCompliance, AgentMaintenance, AgentRegulatory:
		return true
	}
	return false
}

// IsValid reports whether the name is one of the seven canonical agents.
func (n AgentName) IsValid() bool {
	for _, a := range AllAgents {
		if n == a {
			return true
		}
	}
	return false
}

// ResponseStatus is the outcome classification of a single agent invocation.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusTimeout ResponseStatus = "timeout"
	StatusError   ResponseStatus = "error"
)

// AgentResponse is the immutable record of one agent invocation in one phase.
// Created once by the agent runtime (or the safe-run wrapper on failure) and
// never mutated afterwards.
type AgentResponse struct {
	AgentName      AgentName      `json:"agent_name"`
	Recommendation string         `json:"recommendation"`
	Confidence     float64        `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	// BindingConstraints is present (possibly empty) for safety agents and
	// absent for business agents. omitzero keeps a non-nil empty slice in the
	// wire form while dropping nil.
	BindingConstraints []string       `json:"binding_constraints,omitzero"`
	DataSources        []string       `json:"data_sources,omitempty"`
	Timestamp          time.Time      `json:"timestamp"`
	Status             ResponseStatus `json:"status"`
	DurationSeconds    float64        `json:"duration_seconds"`
	Error              string         `json:"error,omitempty"`
	ErrorType          string         `json:"error_type,omitempty"`

	// TimeoutThreshold records the enforced deadline in seconds when the
	// invocation timed out.
	TimeoutThreshold float64 `json:"timeout_threshold,omitempty"`
	// IsSafetyCritical marks timeout/error responses from safety agents.
	IsSafetyCritical bool `json:"is_safety_critical,omitempty"`

	// ExtractedFlightInfo carries forward the extractor output.
	ExtractedFlightInfo *FlightInfo `json:"extracted_flight_info,omitempty"`
}

// Succeeded reports whether the invocation completed normally.
func (r *AgentResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}
