package agent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/skyops/irops/pkg/models"
)

// Recommendations are truncated before entering a peer view so revision
// prompts stay bounded regardless of how verbose a peer was.
const maxPeerRecommendation = 400

// PeerView is the compact snapshot of one peer's Phase 1 output given to an
// agent during revision.
type PeerView struct {
	AgentName          models.AgentName `json:"agent_name"`
	Role               string           `json:"role"`
	Recommendation     string           `json:"recommendation"`
	Confidence         float64          `json:"confidence"`
	BindingConstraints []string         `json:"binding_constraints,omitempty"`

	// Signal is the advisory keyword classification of the peer's output.
	// The LLM weighs it; it never overrides the agent's own judgement.
	Signal string `json:"signal"`
}

// BuildPeerViews distills a Phase 1 collation for one agent's revision turn.
// The agent's own response and non-success peers are excluded.
func BuildPeerViews(collation *models.Collation, self models.AgentName) []PeerView {
	views := make([]PeerView, 0, len(models.AllAgents)-1)
	for _, name := range models.AllAgents {
		if name == self {
			continue
		}
		resp, ok := collation.Responses[name]
		if !ok || !resp.Succeeded() {
			continue
		}
		spec := specs[name]
		views = append(views, PeerView{
			AgentName:          name,
			Role:               spec.Role,
			Recommendation:     truncate(resp.Recommendation, maxPeerRecommendation),
			Confidence:         resp.Confidence,
			BindingConstraints: resp.BindingConstraints,
			Signal:             classifyPeerSignal(resp),
		})
	}
	return views
}

// Peer signal buckets.
const (
	SignalTimingChange   = "timing_change"
	SignalNewConstraints = "new_constraints"
	SignalSafetyConcern  = "safety_concern"
	SignalReinforcing    = "reinforcing_agreement"
	SignalIrrelevant     = "domain_irrelevant"
)

var signalKeywords = []struct {
	signal   string
	keywords []string
}{
	{SignalSafetyConcern, []string{"safety", "unairworthy", "airworthiness", "violation", "hazard", "not legal", "illegal"}},
	{SignalNewConstraints, []string{"must not", "cannot", "prohibited", "constraint", "required before", "mandatory"}},
	{SignalTimingChange, []string{"delay", "postpone", "reschedule", "push back", "earlier departure", "later departure", "hours later"}},
	{SignalReinforcing, []string{"agree", "consistent with", "aligns", "supports", "same conclusion"}},
}

// classifyPeerSignal buckets a peer response by keyword. First match wins in
// severity order; binding constraints short-circuit to new_constraints.
func classifyPeerSignal(resp *models.AgentResponse) string {
	if len(resp.BindingConstraints) > 0 {
		return SignalNewConstraints
	}
	text := strings.ToLower(resp.Recommendation + " " + resp.Reasoning)
	for _, bucket := range signalKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				return bucket.signal
			}
		}
	}
	return SignalIrrelevant
}

// truncate cuts s to at most limit bytes, backing up so the cut never
// lands inside a multi-byte rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "..."
}

func formatPeerViews(views []PeerView) string {
	var b strings.Builder
	for _, v := range views {
		fmt.Fprintf(&b, "- %s (%s), confidence %.2f, signal %s:\n  %s\n", v.Role, v.AgentName, v.Confidence, v.Signal, v.Recommendation)
		for _, c := range v.BindingConstraints {
			fmt.Fprintf(&b, "  binding constraint: %s\n", c)
		}
	}
	if b.Len() == 0 {
		return "(no peer responses available)\n"
	}
	return b.String()
}
