package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
)

// ConverseAPI is the subset of the Bedrock runtime client used here.
// Narrowed for test fakes.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient implements Client on the Bedrock Converse API.
type BedrockClient struct {
	api        ConverseAPI
	logger     *slog.Logger
	maxRetries uint64
}

// NewBedrockClient wraps a Bedrock runtime client. Throttled and transient
// calls are retried with exponential backoff before surfacing an error.
func NewBedrockClient(api ConverseAPI, logger *slog.Logger) *BedrockClient {
	return &BedrockClient{
		api:        api,
		logger:     logger.With("component", "bedrock_client"),
		maxRetries: 3,
	}
}

func (c *BedrockClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	input, err := c.buildInput(req)
	if err != nil {
		return nil, err
	}

	var out *bedrockruntime.ConverseOutput
	operation := func() error {
		var callErr error
		out, callErr = c.api.Converse(ctx, input)
		if callErr == nil {
			return nil
		}
		classified := classifyError("converse", callErr)
		if IsRetryable(classified) {
			c.logger.Warn("retrying converse call", "model", req.Model, "error", classified)
			return classified
		}
		return backoff.Permanent(classified)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newConverseBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return parseOutput(out)
}

func (c *BedrockClient) Close() error { return nil }

func newConverseBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 45 * time.Second
	return b
}

func (c *BedrockClient) buildInput(req *Request) (*bedrockruntime.ConverseInput, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.Model),
	}

	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	input.InferenceConfig = &types.InferenceConfiguration{
		MaxTokens:   aws.Int32(int32(maxTokens)),
		Temperature: aws.Float32(req.Temperature),
	}

	for _, m := range req.Messages {
		block, err := encodeMessage(m)
		if err != nil {
			return nil, err
		}
		input.Messages = append(input.Messages, block)
	}

	if len(req.Tools) > 0 {
		cfg, err := encodeToolConfig(req.Tools, req.ForceTool)
		if err != nil {
			return nil, err
		}
		input.ToolConfig = cfg
	}

	return input, nil
}

func encodeMessage(m Message) (types.Message, error) {
	switch m.Role {
	case RoleUser:
		return types.Message{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		}, nil

	case RoleAssistant:
		var content []types.ContentBlock
		if m.Content != "" {
			content = append(content, &types.ContentBlockMemberText{Value: m.Content})
		}
		for _, tc := range m.ToolCalls {
			var args any
			if len(tc.Arguments) > 0 {
				if err := json.Unmarshal(tc.Arguments, &args); err != nil {
					return types.Message{}, fmt.Errorf("llm: invalid tool call arguments for %s: %w", tc.Name, err)
				}
			}
			content = append(content, &types.ContentBlockMemberToolUse{
				Value: types.ToolUseBlock{
					ToolUseId: aws.String(tc.ID),
					Name:      aws.String(tc.Name),
					Input:     document.NewLazyDocument(args),
				},
			})
		}
		return types.Message{Role: types.ConversationRoleAssistant, Content: content}, nil

	case RoleTool:
		// Tool results travel as user-role content blocks on the wire.
		return types.Message{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberToolResult{
					Value: types.ToolResultBlock{
						ToolUseId: aws.String(m.ToolCallID),
						Content: []types.ToolResultContentBlock{
							&types.ToolResultContentBlockMemberText{Value: m.Content},
						},
					},
				},
			},
		}, nil

	default:
		return types.Message{}, fmt.Errorf("llm: unsupported message role %q", m.Role)
	}
}

func encodeToolConfig(tools []ToolDefinition, forceTool string) (*types.ToolConfiguration, error) {
	cfg := &types.ToolConfiguration{}
	for _, t := range tools {
		var schema any
		if err := json.Unmarshal(t.InputSchema, &schema); err != nil {
			return nil, fmt.Errorf("llm: tool %s has invalid input schema: %w", t.Name, err)
		}
		cfg.Tools = append(cfg.Tools, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			},
		})
	}
	if forceTool != "" {
		cfg.ToolChoice = &types.ToolChoiceMemberTool{
			Value: types.SpecificToolChoice{Name: aws.String(forceTool)},
		}
	} else {
		cfg.ToolChoice = &types.ToolChoiceMemberAuto{Value: types.AutoToolChoice{}}
	}
	return cfg, nil
}

func parseOutput(out *bedrockruntime.ConverseOutput) (*Response, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("llm: unexpected converse output type %T", out.Output)
	}

	resp := &Response{StopReason: string(out.StopReason)}
	if out.Usage != nil {
		resp.Usage = Usage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	var text strings.Builder
	for _, block := range msg.Value.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberText:
			text.WriteString(b.Value)
		case *types.ContentBlockMemberToolUse:
			args, err := b.Value.Input.MarshalSmithyDocument()
			if err != nil {
				return nil, fmt.Errorf("llm: decoding tool use input for %s: %w", aws.ToString(b.Value.Name), err)
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:        aws.ToString(b.Value.ToolUseId),
				Name:      aws.ToString(b.Value.Name),
				Arguments: json.RawMessage(args),
			})
		}
	}
	resp.Text = text.String()
	return resp, nil
}

// classifyError maps provider failures onto ProviderError, flagging the
// transient classes as retryable.
func classifyError(operation string, err error) error {
	pe := &ProviderError{Operation: operation, Message: err.Error(), Cause: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		pe.StatusCode = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		pe.Code = apiErr.ErrorCode()
		pe.Message = apiErr.ErrorMessage()
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			pe.Retryable = true
			return fmt.Errorf("%w: %s", ErrRateLimited, pe.Message)
		case "ServiceUnavailableException", "InternalServerException", "ModelTimeoutException", "ModelNotReadyException":
			pe.Retryable = true
		}
	}

	if pe.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, pe.Message)
	}
	if pe.StatusCode >= 500 {
		pe.Retryable = true
	}
	return pe
}
