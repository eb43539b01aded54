package arbitrator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/skyops/irops/pkg/models"
)

// Conflict taxonomy.
const (
	ConflictTimingMismatch       = "timing_mismatch"
	ConflictResourceContention   = "resource_contention"
	ConflictConstraintPreference = "constraint_vs_preference"
)

var (
	// delayHoursRe captures a duration an agent asked for, e.g. "6-hour
	// delay" or "delay of 3 hours".
	delayHoursRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)[\s-]*(?:hour|hr)s?\b`)

	// registrationRe matches aircraft registrations, e.g. A6-EYA.
	registrationRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]?-[A-Z]{2,4}\b`)
)

// preferenceKeywords mark a business recommendation that pushes for speed
// over constraint headroom.
var preferenceKeywords = []string{"proceed", "depart on schedule", "on time", "no delay", "immediately", "minimize the delay"}

// Conflict is one identified disagreement between agent recommendations.
type Conflict struct {
	Type        string
	Description string
	Agents      []models.AgentName
}

// DetectConflicts walks the successful responses of a collation and applies
// the deterministic taxonomy. Output order is stable.
func DetectConflicts(collation *models.Collation, constraints []models.SafetyOverride) []Conflict {
	var conflicts []Conflict

	if c := detectTimingMismatch(collation); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := detectResourceContention(collation); c != nil {
		conflicts = append(conflicts, *c)
	}
	if c := detectConstraintVsPreference(collation, constraints); c != nil {
		conflicts = append(conflicts, *c)
	}
	return conflicts
}

func detectTimingMismatch(collation *models.Collation) *Conflict {
	type claim struct {
		agent models.AgentName
		hours string
	}
	var claims []claim
	seen := map[string]bool{}

	for _, name := range models.AllAgents {
		resp := collation.Responses[name]
		if !resp.Succeeded() {
			continue
		}
		if m := delayHoursRe.FindStringSubmatch(resp.Recommendation); m != nil {
			claims = append(claims, claim{agent: name, hours: m[1]})
			seen[m[1]] = true
		}
	}
	if len(seen) < 2 {
		return nil
	}

	parts := make([]string, len(claims))
	agents := make([]models.AgentName, len(claims))
	for i, c := range claims {
		parts[i] = fmt.Sprintf("%s asks for %s hours", c.agent, c.hours)
		agents[i] = c.agent
	}
	return &Conflict{
		Type:        ConflictTimingMismatch,
		Description: "agents disagree on delay duration: " + strings.Join(parts, "; "),
		Agents:      agents,
	}
}

func detectResourceContention(collation *models.Collation) *Conflict {
	claimants := map[string][]models.AgentName{}
	for _, name := range models.AllAgents {
		resp := collation.Responses[name]
		if !resp.Succeeded() {
			continue
		}
		regs := registrationRe.FindAllString(resp.Recommendation, -1)
		dedup := map[string]bool{}
		for _, reg := range regs {
			if !dedup[reg] {
				dedup[reg] = true
				claimants[reg] = append(claimants[reg], name)
			}
		}
	}

	var contested []string
	for reg, agents := range claimants {
		if len(agents) >= 2 {
			contested = append(contested, reg)
		}
	}
	if len(contested) == 0 {
		return nil
	}
	sort.Strings(contested)

	reg := contested[0]
	return &Conflict{
		Type:        ConflictResourceContention,
		Description: fmt.Sprintf("aircraft %s is claimed by multiple recommendations (%s)", reg, joinAgents(claimants[reg])),
		Agents:      claimants[reg],
	}
}

func detectConstraintVsPreference(collation *models.Collation, constraints []models.SafetyOverride) *Conflict {
	if len(constraints) == 0 {
		return nil
	}
	for _, name := range models.BusinessAgents {
		resp := collation.Responses[name]
		if !resp.Succeeded() {
			continue
		}
		text := strings.ToLower(resp.Recommendation)
		for _, kw := range preferenceKeywords {
			if strings.Contains(text, kw) {
				return &Conflict{
					Type: ConflictConstraintPreference,
					Description: fmt.Sprintf("%s prefers %q while safety constraint %q is in force",
						name, resp.Recommendation, constraints[0].BindingConstraint),
					Agents: []models.AgentName{name, constraints[0].SafetyAgent},
				}
			}
		}
	}
	return nil
}

// resolutionFor maps each conflict type to its resolution strategy.
func resolutionFor(c Conflict) models.ConflictResolution {
	res := models.ConflictResolution{
		ConflictType:        c.Type,
		ConflictDescription: c.Description,
	}
	switch c.Type {
	case ConflictTimingMismatch:
		res.Resolution = "adopt the most conservative timing that satisfies all binding constraints"
		res.Rationale = "the longest requested window subsumes the shorter ones, so no agent's requirement is violated"
	case ConflictResourceContention:
		res.Resolution = "allocate the contested resource to the safety-critical use and reflow the rest"
		res.Rationale = "safety-critical allocation gates arbitration eligibility; business uses can be reprotected"
	case ConflictConstraintPreference:
		res.Resolution = "the binding safety constraint prevails over the business preference"
		res.Rationale = "binding constraints are non-negotiable; preferences only influence scoring"
	default:
		res.Resolution = "defer to the recommended solution"
		res.Rationale = "no specific strategy registered for this conflict type"
	}
	return res
}

func joinAgents(agents []models.AgentName) string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}
