package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/llm"
	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/store"
	"github.com/skyops/irops/pkg/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct{}

func (fakeDynamo) GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{}, nil
}

func (fakeDynamo) Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{
			"flight_id": &types.AttributeValueMemberS{Value: "FL-9001"},
		}},
	}, nil
}

func (fakeDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (fakeDynamo) UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

// scriptedLLM returns canned responses in order.
type scriptedLLM struct {
	responses []*llm.Response
	requests  []*llm.Request
	err       error
}

func (s *scriptedLLM) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return nil, errors.New("scripted llm exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedLLM) Close() error { return nil }

func submitResponse(t *testing.T, fields map[string]any) *llm.Response {
	t.Helper()
	args, err := json.Marshal(fields)
	require.NoError(t, err)
	return &llm.Response{
		ToolCalls:  []llm.ToolCall{{ID: "tu-final", Name: submitTool, Arguments: args}},
		StopReason: "tool_use",
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Models:        config.Models{Agent: "agent-model"},
		MaxIterations: 4,
		Timeouts: config.Timeouts{
			SafetyAgent:   60 * time.Second,
			BusinessAgent: 45 * time.Second,
			LLMCall:       30 * time.Second,
		},
	}
}

func newTestRunner(t *testing.T, client llm.Client) *Runner {
	t.Helper()
	s := store.New(fakeDynamo{}, config.Tables{Flights: "flights", CrewRoster: "crew_roster"}, slog.New(slog.DiscardHandler))
	registry, err := tools.NewRegistry(s)
	require.NoError(t, err)
	return NewRunner(client, registry, testConfig(), slog.New(slog.DiscardHandler))
}

func testInvocation(agent models.AgentName) Invocation {
	return Invocation{
		Agent:  agent,
		Phase:  models.PhaseInitial,
		Prompt: "Flight EY123 on 2026-01-20 had a hydraulic fault",
		FlightInfo: &models.FlightInfo{
			FlightNumber:    "EY123",
			Date:            "2026-01-20",
			DisruptionEvent: "hydraulic fault",
		},
	}
}

func TestRunnerToolLoop(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{
		{
			ToolCalls: []llm.ToolCall{{
				ID:        "tu-1",
				Name:      "get_crew_roster",
				Arguments: json.RawMessage(`{"flight_id":"FL-9001"}`),
			}},
			StopReason: "tool_use",
		},
		{Text: "crew is within limits", StopReason: "end_turn"},
		submitResponse(t, map[string]any{
			"agent_name":          "something_else",
			"recommendation":      "proceed with a 2 hour delay",
			"confidence":          0.85,
			"reasoning":           "duty limits hold with significant margin",
			"binding_constraints": []string{"crew duty ends 22:00Z"},
		}),
	}}

	resp, err := newTestRunner(t, client).Run(context.Background(), testInvocation(models.AgentCrewCompliance))
	require.NoError(t, err)

	assert.Equal(t, models.AgentCrewCompliance, resp.AgentName, "canonical name overrides the LLM's echo")
	assert.Equal(t, models.StatusSuccess, resp.Status)
	assert.Equal(t, 0.85, resp.Confidence)
	assert.Equal(t, []string{"crew duty ends 22:00Z"}, resp.BindingConstraints)

	// Loop call carried the agent's tool set; conclusion forced the submit tool.
	require.Len(t, client.requests, 3)
	assert.Empty(t, client.requests[0].ForceTool)
	assert.Equal(t, submitTool, client.requests[2].ForceTool)

	// Tool result was fed back into the conversation.
	var sawToolResult bool
	for _, m := range client.requests[1].Messages {
		if m.Role == llm.RoleTool && m.ToolName == "get_crew_roster" {
			sawToolResult = true
		}
	}
	assert.True(t, sawToolResult)
}

func TestRunnerNormalization(t *testing.T) {
	t.Run("safety agent without constraints gets an empty list", func(t *testing.T) {
		client := &scriptedLLM{responses: []*llm.Response{
			{Text: "no issues", StopReason: "end_turn"},
			submitResponse(t, map[string]any{
				"recommendation": "no crew impact",
				"confidence":     0.9,
				"reasoning":      "all legal",
			}),
		}}

		resp, err := newTestRunner(t, client).Run(context.Background(), testInvocation(models.AgentCrewCompliance))
		require.NoError(t, err)
		require.NotNil(t, resp.BindingConstraints)
		assert.Empty(t, resp.BindingConstraints)

		wire, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(wire), `"binding_constraints":[]`)
	})

	t.Run("business agent never carries the field", func(t *testing.T) {
		client := &scriptedLLM{responses: []*llm.Response{
			{Text: "costed", StopReason: "end_turn"},
			submitResponse(t, map[string]any{
				"recommendation":      "delay is cheapest",
				"confidence":          0.7,
				"reasoning":           "compensation stays under threshold",
				"binding_constraints": []string{"should not appear"},
			}),
		}}

		resp, err := newTestRunner(t, client).Run(context.Background(), testInvocation(models.AgentFinance))
		require.NoError(t, err)
		assert.Nil(t, resp.BindingConstraints)

		wire, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(wire), "binding_constraints")
	})

	t.Run("confidence is clamped", func(t *testing.T) {
		client := &scriptedLLM{responses: []*llm.Response{
			{Text: "done", StopReason: "end_turn"},
			submitResponse(t, map[string]any{
				"recommendation": "cancel",
				"confidence":     1.8,
				"reasoning":      "overconfident model",
			}),
		}}

		resp, err := newTestRunner(t, client).Run(context.Background(), testInvocation(models.AgentNetwork))
		require.NoError(t, err)
		assert.Equal(t, 1.0, resp.Confidence)
	})

	t.Run("revision decision is folded into reasoning", func(t *testing.T) {
		client := &scriptedLLM{responses: []*llm.Response{
			{Text: "peers agree", StopReason: "end_turn"},
			submitResponse(t, map[string]any{
				"recommendation":    "keep the delay plan",
				"confidence":        0.9,
				"reasoning":         "peer input reinforces the assessment",
				"revision_decision": "CONFIRM",
			}),
		}}

		inv := testInvocation(models.AgentNetwork)
		inv.Phase = models.PhaseRevision
		inv.Own = &models.AgentResponse{Recommendation: "delay", Confidence: 0.8}

		resp, err := newTestRunner(t, client).Run(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRM: peer input reinforces the assessment", resp.Reasoning)
	})
}

func TestRunnerUnauthorizedToolCall(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{
		{
			ToolCalls: []llm.ToolCall{{
				ID:        "tu-1",
				Name:      "get_bookings_for_flight", // not in crew_compliance's set
				Arguments: json.RawMessage(`{"flight_id":"FL-9001"}`),
			}},
			StopReason: "tool_use",
		},
		{Text: "understood", StopReason: "end_turn"},
		submitResponse(t, map[string]any{
			"recommendation": "crew legal",
			"confidence":     0.8,
			"reasoning":      "roster reviewed",
		}),
	}}

	_, err := newTestRunner(t, client).Run(context.Background(), testInvocation(models.AgentCrewCompliance))
	require.NoError(t, err)

	var result string
	for _, m := range client.requests[1].Messages {
		if m.Role == llm.RoleTool {
			result = m.Content
		}
	}
	assert.Contains(t, result, "unauthorized_tool")
}

func TestRunnerUnknownAgent(t *testing.T) {
	_, err := newTestRunner(t, &scriptedLLM{}).Run(context.Background(), testInvocation(models.AgentName("catering")))
	assert.Error(t, err)
}
