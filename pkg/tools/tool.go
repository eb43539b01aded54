// Package tools exposes the operational store to agent LLM loops as named,
// side-effect-free tools. A tool never throws into the loop: argument
// validation failures and store errors come back as values the model is
// expected to read and reason about.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/skyops/irops/pkg/llm"
)

const errKindInvalidArguments = "invalid_arguments"

// Handler implements one tool. The returned value is serialized for the
// model; structured errors are returned as values, never as faults.
type Handler func(ctx context.Context, args map[string]any) any

// Tool is one callable unit of the contract surface visible to the LLM.
type Tool struct {
	Name        string
	Description string

	rawSchema json.RawMessage
	schema    *jsonschema.Schema
	run       Handler
}

// New compiles the tool's input schema and binds its handler.
func New(name, description, schemaJSON string, run Handler) (*Tool, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("tool %s: parsing schema: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".schema.json"
	if err := compiler.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("tool %s: adding schema resource: %w", name, err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("tool %s: compiling schema: %w", name, err)
	}
	return &Tool{
		Name:        name,
		Description: description,
		rawSchema:   json.RawMessage(schemaJSON),
		schema:      schema,
		run:         run,
	}, nil
}

// Definition is the provider-facing contract surface.
func (t *Tool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.rawSchema,
	}
}

// Execute validates the arguments against the compiled schema, runs the
// handler, and serializes the result. All failure modes serialize to a
// structured error value.
func (t *Tool) Execute(ctx context.Context, rawArgs json.RawMessage) json.RawMessage {
	var args map[string]any
	if len(rawArgs) > 0 {
		decoded, err := jsonschema.UnmarshalJSON(strings.NewReader(string(rawArgs)))
		if err != nil {
			return errorValue(errKindInvalidArguments, fmt.Sprintf("arguments are not valid JSON: %v", err), nil)
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return errorValue(errKindInvalidArguments, "arguments must be a JSON object", nil)
		}
		args = m
	} else {
		args = map[string]any{}
	}

	if err := t.schema.Validate(args); err != nil {
		return errorValue(errKindInvalidArguments, fmt.Sprintf("arguments do not match the %s schema: %v", t.Name, err), args)
	}

	result := t.run(ctx, args)
	payload, err := json.Marshal(result)
	if err != nil {
		return errorValue("query_failed", fmt.Sprintf("serializing %s result: %v", t.Name, err), args)
	}
	return payload
}

func errorValue(kind, message string, params map[string]any) json.RawMessage {
	payload, _ := json.Marshal(map[string]any{
		"error_kind": kind,
		"message":    message,
		"parameters": params,
	})
	return payload
}

func stringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}
