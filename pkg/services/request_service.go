package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/skyops/irops/pkg/models"
)

// MaxPromptSize bounds the disruption prompt accepted for processing.
const MaxPromptSize = 32 * 1024

// RequestStore is the persistence surface the request service needs.
type RequestStore interface {
	CreateRequest(ctx context.Context, rec *models.RequestRecord) error
	GetRequest(ctx context.Context, requestID string) (*models.RequestRecord, error)
}

// SubmitInput contains the domain-level data needed to accept a request.
// Transformed from the HTTP request body by the handler.
type SubmitInput struct {
	Prompt    string
	SessionID string // optional conversation session
}

// RequestService handles request acceptance and status lookups.
type RequestService struct {
	store RequestStore
}

// NewRequestService creates a new RequestService.
func NewRequestService(store RequestStore) *RequestService {
	if store == nil {
		panic("NewRequestService: store must not be nil")
	}
	return &RequestService{store: store}
}

// Submit accepts a disruption prompt and persists a request row in
// "processing" status. The caller dispatches the background job.
func (s *RequestService) Submit(ctx context.Context, input SubmitInput) (*models.RequestRecord, error) {
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return nil, NewValidationError("prompt", "prompt is required")
	}
	if len(prompt) > MaxPromptSize {
		return nil, NewValidationError("prompt", fmt.Sprintf("prompt exceeds maximum size of %d bytes", MaxPromptSize))
	}
	if input.SessionID != "" {
		if _, err := uuid.Parse(input.SessionID); err != nil {
			return nil, NewValidationError("session_id", "session_id must be a UUID")
		}
	}

	rec := &models.RequestRecord{
		RequestID: uuid.New().String(),
		Status:    models.RequestProcessing,
		Prompt:    prompt,
		SessionID: input.SessionID,
	}
	if err := s.store.CreateRequest(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return rec, nil
}

// Status loads the current state of a request. Returns ErrNotFound for
// unknown or expired request IDs.
func (s *RequestService) Status(ctx context.Context, requestID string) (*models.RequestRecord, error) {
	if requestID == "" {
		return nil, NewValidationError("request_id", "request_id is required")
	}
	rec, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}
