package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	calls  int
	inputs []*bedrockruntime.ConverseInput
	fn     func(call int, in *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error)
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.calls++
	f.inputs = append(f.inputs, in)
	return f.fn(f.calls, in)
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
			},
		},
		StopReason: types.StopReasonEndTurn,
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(100),
			OutputTokens: aws.Int32(20),
			TotalTokens:  aws.Int32(120),
		},
	}
}

func newTestClient(api ConverseAPI) *BedrockClient {
	return NewBedrockClient(api, slog.New(slog.DiscardHandler))
}

func TestCompleteBuildsConverseInput(t *testing.T) {
	api := &fakeConverse{fn: func(int, *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		return textOutput("ok"), nil
	}}

	resp, err := newTestClient(api).Complete(context.Background(), &Request{
		Model:  "model-id",
		System: "you are a dispatcher",
		Messages: []Message{
			{Role: RoleUser, Content: "assess EY123"},
		},
		Tools: []ToolDefinition{{
			Name:        "get_flight_details",
			Description: "look up a flight",
			InputSchema: json.RawMessage(`{"type":"object"}`),
		}},
		ForceTool: "get_flight_details",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 120, resp.Usage.TotalTokens)

	in := api.inputs[0]
	assert.Equal(t, "model-id", aws.ToString(in.ModelId))
	require.Len(t, in.System, 1)
	require.NotNil(t, in.ToolConfig)
	require.Len(t, in.ToolConfig.Tools, 1)
	forced, ok := in.ToolConfig.ToolChoice.(*types.ToolChoiceMemberTool)
	require.True(t, ok)
	assert.Equal(t, "get_flight_details", aws.ToString(forced.Value.Name))
}

func TestCompleteParsesToolCalls(t *testing.T) {
	api := &fakeConverse{fn: func(int, *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		return &bedrockruntime.ConverseOutput{
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{
					Role: types.ConversationRoleAssistant,
					Content: []types.ContentBlock{
						&types.ContentBlockMemberText{Value: "checking the roster"},
						&types.ContentBlockMemberToolUse{
							Value: types.ToolUseBlock{
								ToolUseId: aws.String("tu-1"),
								Name:      aws.String("get_crew_roster"),
								Input:     document.NewLazyDocument(map[string]any{"flight_id": "FL-9001"}),
							},
						},
					},
				},
			},
			StopReason: types.StopReasonToolUse,
		}, nil
	}}

	resp, err := newTestClient(api).Complete(context.Background(), &Request{
		Model:    "model-id",
		Messages: []Message{{Role: RoleUser, Content: "check crew"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "checking the roster", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_crew_roster", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"flight_id":"FL-9001"}`, string(resp.ToolCalls[0].Arguments))
}

type throttleErr struct{}

func (throttleErr) Error() string                 { return "throttled" }
func (throttleErr) ErrorCode() string             { return "ThrottlingException" }
func (throttleErr) ErrorMessage() string          { return "rate exceeded" }
func (throttleErr) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

var _ smithy.APIError = throttleErr{}

func TestCompleteRetriesThrottling(t *testing.T) {
	api := &fakeConverse{fn: func(call int, _ *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		if call == 1 {
			return nil, throttleErr{}
		}
		return textOutput("recovered"), nil
	}}

	resp, err := newTestClient(api).Complete(context.Background(), &Request{
		Model:    "model-id",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, 2, api.calls)
}

type validationErr struct{}

func (validationErr) Error() string                 { return "validation" }
func (validationErr) ErrorCode() string             { return "ValidationException" }
func (validationErr) ErrorMessage() string          { return "bad input" }
func (validationErr) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var _ smithy.APIError = validationErr{}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	api := &fakeConverse{fn: func(int, *bedrockruntime.ConverseInput) (*bedrockruntime.ConverseOutput, error) {
		return nil, validationErr{}
	}}

	_, err := newTestClient(api).Complete(context.Background(), &Request{
		Model:    "model-id",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)
	assert.Equal(t, 1, api.calls)
	assert.False(t, IsRetryable(err))
}

func TestStructuredArguments(t *testing.T) {
	resp := &Response{
		ToolCalls:  []ToolCall{{Name: "record_flight_info", Arguments: json.RawMessage(`{"flight_number":"EY123"}`)}},
		StopReason: "tool_use",
	}

	args, err := resp.StructuredArguments("record_flight_info")
	require.NoError(t, err)
	assert.JSONEq(t, `{"flight_number":"EY123"}`, string(args))

	_, err = resp.StructuredArguments("other_tool")
	assert.Error(t, err)
}
