package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/llm"
	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/tools"
)

const submitTool = "submit_assessment"

const submitSchemaSafety = `{
	"type": "object",
	"properties": {
		"recommendation": {"type": "string", "description": "Your recovery recommendation for this disruption"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reasoning": {"type": "string", "description": "How the data led to the recommendation"},
		"binding_constraints": {"type": "array", "items": {"type": "string"}, "description": "Non-negotiable constraints any recovery plan must satisfy; empty if none"},
		"data_sources": {"type": "array", "items": {"type": "string"}, "description": "Tools consulted"},
		"revision_decision": {"type": "string", "enum": ["REVISE", "CONFIRM", "STRENGTHEN"], "description": "Revision phase only: how peer input changed your position"}
	},
	"required": ["recommendation", "confidence", "reasoning", "binding_constraints"]
}`

const submitSchemaBusiness = `{
	"type": "object",
	"properties": {
		"recommendation": {"type": "string", "description": "Your recovery recommendation for this disruption"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"reasoning": {"type": "string", "description": "How the data led to the recommendation"},
		"data_sources": {"type": "array", "items": {"type": "string"}, "description": "Tools consulted"},
		"revision_decision": {"type": "string", "enum": ["REVISE", "CONFIRM", "STRENGTHEN"], "description": "Revision phase only: how peer input changed your position"}
	},
	"required": ["recommendation", "confidence", "reasoning"]
}`

// Invocation is one agent run in one phase.
type Invocation struct {
	Agent      models.AgentName
	Phase      models.Phase
	Prompt     string
	FlightInfo *models.FlightInfo

	// PeerViews is set for revision runs only.
	PeerViews []PeerView
	// Own is the agent's Phase 1 response, set for revision runs only.
	Own *models.AgentResponse
}

// Runner executes one agent's reasoning loop against the LLM and the agent's
// authorized tool set.
type Runner struct {
	client   llm.Client
	registry *tools.Registry
	cfg      *config.Config
	logger   *slog.Logger
}

func NewRunner(client llm.Client, registry *tools.Registry, cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		client:   client,
		registry: registry,
		cfg:      cfg,
		logger:   logger.With("component", "agent_runner"),
	}
}

// Run drives the tool loop to completion and returns the agent's structured
// response. Timeout enforcement and failure isolation live in SafeRunner.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*models.AgentResponse, error) {
	spec, err := SpecFor(inv.Agent)
	if err != nil {
		return nil, err
	}
	toolSet, err := r.registry.ForAgent(inv.Agent)
	if err != nil {
		return nil, err
	}

	defs := make([]llm.ToolDefinition, 0, len(toolSet))
	byName := make(map[string]*tools.Tool, len(toolSet))
	for _, t := range toolSet {
		defs = append(defs, t.Definition())
		byName[t.Name] = t
	}

	logger := r.logger.With("agent", inv.Agent, "phase", inv.Phase)
	messages := []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(spec, inv)}}

	var lastText string
	for iteration := 1; iteration <= r.cfg.MaxIterations; iteration++ {
		resp, err := r.complete(ctx, &llm.Request{
			Model:    r.cfg.Models.Agent,
			System:   spec.SystemPrompt,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s iteration %d: %w", inv.Agent, iteration, err)
		}

		if len(resp.ToolCalls) == 0 {
			lastText = resp.Text
			break
		}

		logger.Debug("executing tool calls", "iteration", iteration, "count", len(resp.ToolCalls))
		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    string(r.executeTool(ctx, byName, call)),
			})
		}
	}

	return r.conclude(ctx, spec, inv, messages, lastText)
}

func (r *Runner) executeTool(ctx context.Context, byName map[string]*tools.Tool, call llm.ToolCall) json.RawMessage {
	tool, ok := byName[call.Name]
	if !ok {
		// The model asked for a tool outside the agent's authorization.
		payload, _ := json.Marshal(map[string]any{
			"error_kind": "unauthorized_tool",
			"message":    fmt.Sprintf("tool %q is not available to this agent", call.Name),
		})
		return payload
	}
	return tool.Execute(ctx, call.Arguments)
}

// conclude forces the structured final response after the reasoning loop.
func (r *Runner) conclude(ctx context.Context, spec Spec, inv Invocation, messages []llm.Message, lastText string) (*models.AgentResponse, error) {
	schema := submitSchemaBusiness
	if spec.Safety {
		schema = submitSchemaSafety
	}

	instruction := "Submit your final assessment now using the submit_assessment tool."
	if lastText != "" {
		instruction = "Based on your analysis above, submit your final assessment now using the submit_assessment tool."
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: instruction})

	resp, err := r.complete(ctx, &llm.Request{
		Model:    r.cfg.Models.Agent,
		System:   spec.SystemPrompt,
		Messages: messages,
		Tools: []llm.ToolDefinition{{
			Name:        submitTool,
			Description: "Submit the final structured assessment.",
			InputSchema: json.RawMessage(schema),
		}},
		ForceTool: submitTool,
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s conclusion: %w", inv.Agent, err)
	}
	args, err := resp.StructuredArguments(submitTool)
	if err != nil {
		return nil, fmt.Errorf("agent %s conclusion: %w", inv.Agent, err)
	}

	var submitted struct {
		AgentName          string   `json:"agent_name"`
		Recommendation     string   `json:"recommendation"`
		Confidence         float64  `json:"confidence"`
		Reasoning          string   `json:"reasoning"`
		BindingConstraints []string `json:"binding_constraints"`
		DataSources        []string `json:"data_sources"`
		RevisionDecision   string   `json:"revision_decision"`
	}
	if err := json.Unmarshal(args, &submitted); err != nil {
		return nil, fmt.Errorf("agent %s returned malformed assessment: %w", inv.Agent, err)
	}

	response := &models.AgentResponse{
		// Canonical name always wins over whatever the LLM echoed back.
		AgentName:          inv.Agent,
		Recommendation:     submitted.Recommendation,
		Confidence:         clampConfidence(submitted.Confidence),
		Reasoning:          submitted.Reasoning,
		BindingConstraints: submitted.BindingConstraints,
		DataSources:        submitted.DataSources,
		Status:             models.StatusSuccess,
		Timestamp:          time.Now().UTC(),
		ExtractedFlightInfo: inv.FlightInfo,
	}
	if inv.Phase == models.PhaseRevision && submitted.RevisionDecision != "" {
		response.Reasoning = submitted.RevisionDecision + ": " + response.Reasoning
	}
	// Safety agents always carry the field, empty when no constraints apply.
	if spec.Safety && response.BindingConstraints == nil {
		response.BindingConstraints = []string{}
	}
	if !spec.Safety {
		response.BindingConstraints = nil
	}
	return response, nil
}

func (r *Runner) complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeouts.LLMCall)
	defer cancel()
	return r.client.Complete(callCtx, req)
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func buildUserMessage(spec Spec, inv Invocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Disruption report:\n%s\n\n", inv.Prompt)
	if inv.FlightInfo != nil {
		fmt.Fprintf(&b, "Flight: %s on %s\nEvent: %s\n\n",
			inv.FlightInfo.FlightNumber, inv.FlightInfo.Date, inv.FlightInfo.DisruptionEvent)
	}

	switch inv.Phase {
	case models.PhaseRevision:
		b.WriteString("This is the revision round. Your initial assessment was:\n")
		if inv.Own != nil {
			fmt.Fprintf(&b, "%s (confidence %.2f)\n\n", inv.Own.Recommendation, inv.Own.Confidence)
		} else {
			b.WriteString("(unavailable)\n\n")
		}
		b.WriteString("Your peers assessed the same disruption:\n")
		b.WriteString(formatPeerViews(inv.PeerViews))
		b.WriteString("\nDecide whether to REVISE, CONFIRM or STRENGTHEN your assessment in light of the peer input, justify the decision, and submit the result. Peer signals are advisory; your own analysis of the data is authoritative.\n")
	default:
		b.WriteString("Investigate the disruption with your tools and produce your assessment.\n")
	}

	if spec.Safety {
		b.WriteString("\nYou are a safety-critical assessor: list every binding constraint, or an empty list if none apply.\n")
	}
	return b.String()
}
