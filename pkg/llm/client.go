// Package llm abstracts the model provider behind a small completion
// interface. Two call shapes are supported: a tool-using loop (tools bound,
// auto choice) and schema-constrained structured output (a single forced
// tool whose arguments are the structured result).
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that requested tool execution.
	ToolCalls []ToolCall

	// ToolCallID and ToolName are set on tool-result messages.
	ToolCallID string
	ToolName   string
}

// ToolDefinition describes a tool offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema json.RawMessage // JSON Schema
}

// ToolCall is the model's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Request is one completion call.
type Request struct {
	Model    string
	System   string
	Messages []Message

	// Tools, when non-empty, are bound for native tool calling.
	Tools []ToolDefinition
	// ForceTool names a tool the model must call. Used for structured
	// output: the forced tool's arguments are the typed result.
	ForceTool string

	MaxTokens   int
	Temperature float32
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is the provider's reply.
type Response struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
}

// Client is the provider interface. Implementations must be safe for
// concurrent use across orchestrations.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// ErrRateLimited marks provider throttling; callers may retry.
var ErrRateLimited = errors.New("llm: rate limited")

// ProviderError carries the classified provider failure.
type ProviderError struct {
	Operation  string
	StatusCode int
	Code       string
	Message    string
	Retryable  bool
	Cause      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm %s failed (status=%d code=%s): %s", e.Operation, e.StatusCode, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err represents a transient provider condition.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// StructuredArguments returns the forced-tool arguments from a structured
// output response. The provider contract is that a forced call yields exactly
// one tool call carrying the schema-constrained result.
func (r *Response) StructuredArguments(toolName string) (json.RawMessage, error) {
	for _, tc := range r.ToolCalls {
		if tc.Name == toolName {
			if len(tc.Arguments) == 0 {
				return nil, fmt.Errorf("llm: forced tool %q returned empty arguments", toolName)
			}
			return tc.Arguments, nil
		}
	}
	return nil, fmt.Errorf("llm: response has no call to forced tool %q (stop_reason=%s)", toolName, r.StopReason)
}
