package models

import "time"

// RequestStatus tracks the async request lifecycle. Transitions are monotonic:
// processing -> complete or processing -> error, never backwards.
type RequestStatus string

const (
	RequestProcessing RequestStatus = "processing"
	RequestComplete   RequestStatus = "complete"
	RequestError      RequestStatus = "error"
)

// Error codes recorded on failed requests.
const (
	ErrorCodeTimeout         = "TIMEOUT"
	ErrorCodeProcessingError = "PROCESSING_ERROR"
	ErrorCodeInvalidRequest  = "INVALID_REQUEST"
	ErrorCodeInternalError   = "INTERNAL_ERROR"
	ErrorCodeExtractionFail  = "EXTRACTION_FAILED"
	ErrorCodeSafetyHalt      = "SAFETY_HALT"
)

// RequestRecord is the persisted row for one orchestration request.
// Assessment is stored as a serialized JSON document so the store never holds
// floating-point attributes; the only numeric attributes are integral
// (execution time in milliseconds and the TTL epoch).
type RequestRecord struct {
	RequestID string        `json:"request_id" dynamodbav:"request_id"`
	Status    RequestStatus `json:"status" dynamodbav:"status"`
	Prompt    string        `json:"prompt" dynamodbav:"prompt"`
	SessionID string        `json:"session_id,omitempty" dynamodbav:"session_id,omitempty"`
	CreatedAt time.Time     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" dynamodbav:"updated_at"`
	// TTL is the epoch second after which the store expires the row
	// (created_at + one hour).
	TTL int64 `json:"ttl" dynamodbav:"ttl"`

	// Set on complete.
	Assessment      string `json:"assessment,omitempty" dynamodbav:"assessment,omitempty"` // JSON DisruptionAssessment
	ExecutionTimeMS int64  `json:"execution_time_ms,omitempty" dynamodbav:"execution_time_ms,omitempty"`

	// Set on error.
	Error     string `json:"error,omitempty" dynamodbav:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty" dynamodbav:"error_code,omitempty"`
}

// SessionInteraction is one append-only entry of a conversation session.
// Partition key session_id, sort key timestamp (milliseconds since epoch).
type SessionInteraction struct {
	SessionID       string `json:"session_id" dynamodbav:"session_id"`
	Timestamp       int64  `json:"timestamp" dynamodbav:"timestamp"` // ms since epoch
	RequestID       string `json:"request_id" dynamodbav:"request_id"`
	Prompt          string `json:"prompt" dynamodbav:"prompt"`
	Response        string `json:"response,omitempty" dynamodbav:"response,omitempty"`
	Status          string `json:"status" dynamodbav:"status"`
	ExecutionTimeMS int64  `json:"execution_time_ms,omitempty" dynamodbav:"execution_time_ms,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty" dynamodbav:"error_message,omitempty"`
	// TTL is created time + thirty days.
	TTL int64 `json:"ttl" dynamodbav:"ttl"`
}
