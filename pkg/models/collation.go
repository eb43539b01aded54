package models

import "time"

// Phase identifies which orchestration round produced a collation.
type Phase string

const (
	PhaseInitial  Phase = "initial"
	PhaseRevision Phase = "revision"
)

// Collation is the complete set of seven agent responses from one phase.
// The key set always equals the seven canonical agent names; a failed or
// timed-out agent is represented by a non-success response, never by absence.
type Collation struct {
	Phase           Phase                         `json:"phase"`
	Responses       map[AgentName]*AgentResponse  `json:"responses"`
	Timestamp       time.Time                     `json:"timestamp"`
	DurationSeconds float64                       `json:"duration_seconds"`
}

// NewCollation creates an empty collation for the given phase.
func NewCollation(phase Phase) *Collation {
	return &Collation{
		Phase:     phase,
		Responses: make(map[AgentName]*AgentResponse, len(AllAgents)),
		Timestamp: time.Now().UTC(),
	}
}

// Complete reports whether every one of the seven agents is present.
func (c *Collation) Complete() bool {
	if len(c.Responses) != len(AllAgents) {
		return false
	}
	for _, name := range AllAgents {
		if c.Responses[name] == nil {
			return false
		}
	}
	return true
}

// Successful returns the responses with status=success, keyed by agent name.
func (c *Collation) Successful() map[AgentName]*AgentResponse {
	out := make(map[AgentName]*AgentResponse)
	for name, resp := range c.Responses {
		if resp.Succeeded() {
			out[name] = resp
		}
	}
	return out
}

// Failed returns the responses with status other than success.
func (c *Collation) Failed() map[AgentName]*AgentResponse {
	out := make(map[AgentName]*AgentResponse)
	for name, resp := range c.Responses {
		if !resp.Succeeded() {
			out[name] = resp
		}
	}
	return out
}

// CountByStatus tallies responses per status.
func (c *Collation) CountByStatus() map[ResponseStatus]int {
	out := make(map[ResponseStatus]int)
	for _, resp := range c.Responses {
		out[resp.Status]++
	}
	return out
}

// FailedSafetyAgents returns the safety agents whose response is not a
// success, in canonical order. Drives the Phase 1 safety halt.
func (c *Collation) FailedSafetyAgents() []AgentName {
	var failed []AgentName
	for _, name := range SafetyAgents {
		if resp, ok := c.Responses[name]; !ok || !resp.Succeeded() {
			failed = append(failed, name)
		}
	}
	return failed
}
