// Package arbitrator reconciles the revised agent collation into a single
// auditable decision: candidate solutions scored deterministically, binding
// constraints enforced, conflicts resolved.
package arbitrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/kb"
	"github.com/skyops/irops/pkg/llm"
	"github.com/skyops/irops/pkg/models"
)

const proposeTool = "propose_solutions"

const maxSolutionOptions = 4

const proposeSchema = `{
	"type": "object",
	"properties": {
		"solutions": {
			"type": "array",
			"maxItems": 4,
			"items": {
				"type": "object",
				"properties": {
					"solution_id": {"type": "string", "description": "Short stable identifier, e.g. SOL-1"},
					"title": {"type": "string"},
					"estimated_duration": {"type": "string"},
					"safety_compliance": {"type": "string", "description": "How the solution sits against the binding constraints, stating the safety margin"},
					"confidence": {"type": "number", "minimum": 0, "maximum": 1},
					"violated_constraints": {"type": "array", "items": {"type": "string"}, "description": "Binding constraints this solution breaches; empty when fully compliant"},
					"financial_impact": {
						"type": "object",
						"properties": {"total_cost": {"type": "number", "description": "Total cost in USD"}},
						"required": ["total_cost"]
					},
					"passenger_impact": {
						"type": "object",
						"properties": {
							"affected": {"type": "integer"},
							"delay_hours": {"type": "number"},
							"cancelled": {"type": "boolean"},
							"reprotection_options": {"type": "array", "items": {"type": "string"}}
						},
						"required": ["affected", "delay_hours", "cancelled"]
					},
					"network_impact": {
						"type": "object",
						"properties": {
							"downstream_flights": {"type": "integer"},
							"connection_misses": {"type": "integer"}
						},
						"required": ["downstream_flights", "connection_misses"]
					}
				},
				"required": ["solution_id", "title", "safety_compliance", "financial_impact", "passenger_impact", "network_impact"]
			}
		},
		"final_decision": {"type": "string"},
		"justification": {"type": "string"},
		"reasoning": {"type": "string"},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	},
	"required": ["solutions", "final_decision", "justification", "reasoning", "confidence"]
}`

const systemPrompt = `You are the arbitrator of an airline operations decision board.
Seven specialists have assessed a disrupted flight. Synthesize their revised
assessments into a small set of concrete recovery solutions with quantified
impact figures, then state which solution you would execute and why.
Binding constraints from safety specialists are non-negotiable: any solution
that breaches one must list it under violated_constraints. Base every impact
number on figures the specialists reported; do not invent data.`

// Arbitrator is the Phase 3 decision stage.
type Arbitrator struct {
	client    llm.Client
	retriever kb.Retriever
	cfg       *config.Config
	logger    *slog.Logger
}

// New builds the arbitrator. retriever may be nil when the knowledge base is
// disabled.
func New(client llm.Client, retriever kb.Retriever, cfg *config.Config, logger *slog.Logger) *Arbitrator {
	return &Arbitrator{
		client:    client,
		retriever: retriever,
		cfg:       cfg,
		logger:    logger.With("component", "arbitrator"),
	}
}

// Arbitrate produces the final decision from the revised collation. The
// initial collation feeds the evolution summary only.
func (a *Arbitrator) Arbitrate(ctx context.Context, flight *models.FlightInfo, initial, revised *models.Collation) (*models.ArbitratorOutput, error) {
	constraints := AggregateConstraints(revised)
	conflicts := DetectConflicts(revised, constraints)
	excerpts := a.groundingExcerpts(ctx, flight)

	proposal, err := a.synthesize(ctx, flight, initial, revised, constraints, conflicts, excerpts)
	if err != nil {
		return nil, err
	}

	output := a.score(proposal, constraints)
	output.ConflictsIdentified = make([]string, len(conflicts))
	output.ConflictResolutions = make([]models.ConflictResolution, len(conflicts))
	for i, c := range conflicts {
		output.ConflictsIdentified[i] = c.Description
		output.ConflictResolutions[i] = resolutionFor(c)
	}
	output.Timestamp = time.Now().UTC()

	if summary := evolutionSummary(initial, revised); summary != "" {
		output.Reasoning = output.Reasoning + "\n\n" + summary
	}
	return output, nil
}

// AggregateConstraints collects every binding constraint from successful
// safety responses, in canonical agent order, with provenance.
func AggregateConstraints(collation *models.Collation) []models.SafetyOverride {
	var constraints []models.SafetyOverride
	for _, name := range models.SafetyAgents {
		resp := collation.Responses[name]
		if !resp.Succeeded() {
			continue
		}
		for _, c := range resp.BindingConstraints {
			constraints = append(constraints, models.SafetyOverride{
				SafetyAgent:       name,
				BindingConstraint: c,
			})
		}
	}
	return constraints
}

// proposal is the wire shape of the synthesis call.
type proposal struct {
	Solutions []struct {
		SolutionID          string                 `json:"solution_id"`
		Title               string                 `json:"title"`
		EstimatedDuration   string                 `json:"estimated_duration"`
		SafetyCompliance    string                 `json:"safety_compliance"`
		Confidence          float64                `json:"confidence"`
		ViolatedConstraints []string               `json:"violated_constraints"`
		FinancialImpact     models.FinancialImpact `json:"financial_impact"`
		PassengerImpact     models.PassengerImpact `json:"passenger_impact"`
		NetworkImpact       models.NetworkImpact   `json:"network_impact"`
	} `json:"solutions"`
	FinalDecision   string   `json:"final_decision"`
	Justification   string   `json:"justification"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
}

func (a *Arbitrator) synthesize(ctx context.Context, flight *models.FlightInfo, initial, revised *models.Collation, constraints []models.SafetyOverride, conflicts []Conflict, excerpts []kb.Excerpt) (*proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.LLMCall)
	defer cancel()

	resp, err := a.client.Complete(ctx, &llm.Request{
		Model:  a.cfg.Models.Arbitrator,
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildArbitrationPrompt(flight, revised, constraints, conflicts, excerpts)},
		},
		Tools: []llm.ToolDefinition{{
			Name:        proposeTool,
			Description: "Propose and justify candidate recovery solutions.",
			InputSchema: json.RawMessage(proposeSchema),
		}},
		ForceTool: proposeTool,
	})
	if err != nil {
		return nil, fmt.Errorf("arbitration synthesis: %w", err)
	}
	args, err := resp.StructuredArguments(proposeTool)
	if err != nil {
		return nil, fmt.Errorf("arbitration synthesis: %w", err)
	}

	var p proposal
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, fmt.Errorf("arbitration synthesis returned malformed proposal: %w", err)
	}
	if len(p.Solutions) > maxSolutionOptions {
		p.Solutions = p.Solutions[:maxSolutionOptions]
	}
	return &p, nil
}

// score applies the deterministic scoring rules, filters by eligibility and
// selects the recommendation with the documented tie-break.
func (a *Arbitrator) score(p *proposal, constraints []models.SafetyOverride) *models.ArbitratorOutput {
	type candidate struct {
		solution models.RecoverySolution
		violated []string
		// butFor is the composite the candidate would have scored had it
		// not violated any constraint. Competitiveness of a removed
		// candidate is judged on this, not on the zeroed safety score.
		butFor float64
	}

	candidates := make([]candidate, 0, len(p.Solutions))
	for _, s := range p.Solutions {
		margin := SafetyMargin(s.SafetyCompliance)
		violates := len(s.ViolatedConstraints) > 0

		solution := models.RecoverySolution{
			SolutionID:        s.SolutionID,
			Title:             s.Title,
			Confidence:        s.Confidence,
			EstimatedDuration: s.EstimatedDuration,
			SafetyCompliance:  s.SafetyCompliance,
			FinancialImpact:   s.FinancialImpact,
			PassengerImpact:   s.PassengerImpact,
			NetworkImpact:     s.NetworkImpact,
			SafetyScore:       SafetyScore(violates, margin),
			CostScore:         CostScore(s.FinancialImpact.TotalCost),
			PassengerScore:    PassengerScore(s.PassengerImpact),
			NetworkScore:      NetworkScore(s.NetworkImpact),
		}
		solution.CompositeScore = CompositeScore(solution.SafetyScore, solution.CostScore, solution.PassengerScore, solution.NetworkScore)
		butFor := solution.CompositeScore
		if violates {
			butFor = CompositeScore(SafetyScore(false, margin), solution.CostScore, solution.PassengerScore, solution.NetworkScore)
		}
		candidates = append(candidates, candidate{solution: solution, violated: s.ViolatedConstraints, butFor: butFor})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return Less(&candidates[i].solution, &candidates[j].solution)
	})

	output := &models.ArbitratorOutput{
		FinalDecision:   p.FinalDecision,
		Justification:   p.Justification,
		Reasoning:       p.Reasoning,
		Recommendations: p.Recommendations,
		Confidence:      clamp01(p.Confidence),
	}

	var recommended *candidate
	for i := range candidates {
		output.SolutionOptions = append(output.SolutionOptions, candidates[i].solution)
		if recommended == nil && len(candidates[i].violated) == 0 {
			recommended = &candidates[i]
		}
	}

	if recommended == nil {
		// No candidate satisfies every binding constraint.
		output.Confidence = 0
		for i := range candidates {
			output.SafetyOverrides = append(output.SafetyOverrides, overridesFor(candidates[i].violated, constraints)...)
		}
		a.logger.Warn("no eligible solution after constraint filtering", "candidates", len(candidates))
		return output
	}

	id := recommended.solution.SolutionID
	output.RecommendedSolutionID = &id

	// Record the constraints that removed candidates which would have
	// outscored the pick absent the violation.
	for i := range candidates {
		c := &candidates[i]
		if len(c.violated) == 0 {
			continue
		}
		if c.butFor >= recommended.solution.CompositeScore {
			output.SafetyOverrides = append(output.SafetyOverrides, overridesFor(c.violated, constraints)...)
		}
	}
	return output
}

// overridesFor attributes violated constraint texts back to the safety agent
// that emitted them. Unattributable texts fall back to the first constraint
// source so provenance is never silently dropped.
func overridesFor(violated []string, constraints []models.SafetyOverride) []models.SafetyOverride {
	byText := make(map[string]models.AgentName, len(constraints))
	for _, c := range constraints {
		byText[c.BindingConstraint] = c.SafetyAgent
	}

	overrides := make([]models.SafetyOverride, 0, len(violated))
	for _, text := range violated {
		agent, ok := byText[text]
		if !ok {
			if len(constraints) == 0 {
				continue
			}
			agent = constraints[0].SafetyAgent
		}
		overrides = append(overrides, models.SafetyOverride{SafetyAgent: agent, BindingConstraint: text})
	}
	return overrides
}

func (a *Arbitrator) groundingExcerpts(ctx context.Context, flight *models.FlightInfo) []kb.Excerpt {
	if a.retriever == nil || !a.cfg.KB.Enabled {
		return nil
	}
	query := fmt.Sprintf("recovery policy for %s", flight.DisruptionEvent)
	excerpts, err := a.retriever.Retrieve(ctx, query, a.cfg.KB.MaxRetrievals)
	if err != nil {
		// Retrieval is best-effort grounding; the decision proceeds without it.
		a.logger.Warn("knowledge base retrieval failed, continuing without grounding", "error", err)
		return nil
	}
	return excerpts
}

func buildArbitrationPrompt(flight *models.FlightInfo, revised *models.Collation, constraints []models.SafetyOverride, conflicts []Conflict, excerpts []kb.Excerpt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disrupted flight %s on %s: %s\n\n", flight.FlightNumber, flight.Date, flight.DisruptionEvent)

	b.WriteString("Revised specialist assessments:\n")
	for _, name := range models.AllAgents {
		resp := revised.Responses[name]
		if !resp.Succeeded() {
			fmt.Fprintf(&b, "- %s: unavailable (%s)\n", name, resp.Status)
			continue
		}
		fmt.Fprintf(&b, "- %s (confidence %.2f): %s\n", name, resp.Confidence, resp.Recommendation)
	}

	b.WriteString("\nBinding constraints (non-negotiable):\n")
	if len(constraints) == 0 {
		b.WriteString("- none\n")
	}
	for _, c := range constraints {
		fmt.Fprintf(&b, "- [%s] %s\n", c.SafetyAgent, c.BindingConstraint)
	}

	if len(conflicts) > 0 {
		b.WriteString("\nIdentified conflicts to address:\n")
		for _, c := range conflicts {
			fmt.Fprintf(&b, "- %s: %s\n", c.Type, c.Description)
		}
	}

	if len(excerpts) > 0 {
		b.WriteString("\nRelevant policy excerpts:\n")
		for _, e := range excerpts {
			fmt.Fprintf(&b, "- %s (%s)\n", e.Text, e.SourceURI)
		}
	}

	b.WriteString("\nPropose up to four recovery solutions with quantified impacts, list violated_constraints honestly per solution, and state your final decision.\n")
	return b.String()
}

// evolutionSummary describes how agent positions moved between phases.
func evolutionSummary(initial, revised *models.Collation) string {
	if initial == nil || revised == nil {
		return ""
	}
	var parts []string
	for _, name := range models.AllAgents {
		before := initial.Responses[name]
		after := revised.Responses[name]
		if !before.Succeeded() || !after.Succeeded() {
			continue
		}
		delta := after.Confidence - before.Confidence
		switch {
		case delta > 0.05:
			parts = append(parts, fmt.Sprintf("%s strengthened (%.2f to %.2f)", name, before.Confidence, after.Confidence))
		case delta < -0.05:
			parts = append(parts, fmt.Sprintf("%s softened (%.2f to %.2f)", name, before.Confidence, after.Confidence))
		}
	}
	if len(parts) == 0 {
		return "Position evolution: all agents held their positions between rounds."
	}
	return "Position evolution: " + strings.Join(parts, "; ") + "."
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
