package store

import "fmt"

// Error kinds surfaced to tool consumers. They are values, not faults:
// the agent loop reads them and decides how to proceed.
const (
	ErrKindNotFound    = "not_found"
	ErrKindQueryFailed = "query_failed"
)

// QueryError is the structured failure shape every accessor returns instead
// of raising. Parameters echoes the lookup keys so the LLM can see what was
// asked for; Suggestion tells it what to try instead.
type QueryError struct {
	Kind       string         `json:"error_kind"`
	Message    string         `json:"message"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func notFound(entity string, params map[string]any, suggestion string) *QueryError {
	return &QueryError{
		Kind:       ErrKindNotFound,
		Message:    fmt.Sprintf("no %s matched the given parameters", entity),
		Parameters: params,
		Suggestion: suggestion,
	}
}

func queryFailed(entity string, params map[string]any, cause error) *QueryError {
	return &QueryError{
		Kind:       ErrKindQueryFailed,
		Message:    fmt.Sprintf("querying %s failed: %v", entity, cause),
		Parameters: params,
		Suggestion: "retry the lookup or proceed with reduced data and note lower confidence",
	}
}
