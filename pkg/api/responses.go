package api

import (
	"encoding/json"

	"github.com/skyops/irops/pkg/models"
)

// InvokeResponse is returned by POST /invoke.
type InvokeResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	PollURL   string `json:"poll_url"`
}

// StatusResponse is returned by GET /status/:request_id. Assessment is the
// raw serialized document; it is echoed without re-parsing.
type StatusResponse struct {
	RequestID string               `json:"request_id"`
	Status    models.RequestStatus `json:"status"`
	SessionID string               `json:"session_id,omitempty"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`

	Assessment      json.RawMessage `json:"assessment,omitempty"`
	ExecutionTimeMS int64           `json:"execution_time_ms,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// SessionHistoryResponse is returned by GET /sessions/:session_id/history.
type SessionHistoryResponse struct {
	SessionID    string                      `json:"session_id"`
	Interactions []models.SessionInteraction `json:"interactions"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	ErrorCode    string            `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	RequestID    string            `json:"request_id,omitempty"`
	StatusCode   int               `json:"status_code"`
	Details      map[string]string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one component's health state.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
