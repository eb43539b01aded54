package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyops/irops/pkg/models"
)

type fakeRequestStore struct {
	created *models.RequestRecord
	get     func(requestID string) (*models.RequestRecord, error)
	fail    error
}

func (f *fakeRequestStore) CreateRequest(_ context.Context, rec *models.RequestRecord) error {
	if f.fail != nil {
		return f.fail
	}
	f.created = rec
	return nil
}

func (f *fakeRequestStore) GetRequest(_ context.Context, requestID string) (*models.RequestRecord, error) {
	if f.get != nil {
		return f.get(requestID)
	}
	return nil, nil
}

func TestSubmitCreatesProcessingRecord(t *testing.T) {
	store := &fakeRequestStore{}
	svc := NewRequestService(store)

	rec, err := svc.Submit(context.Background(), SubmitInput{Prompt: "  EY123 hydraulic fault today  "})
	require.NoError(t, err)

	assert.Equal(t, models.RequestProcessing, rec.Status)
	assert.Equal(t, "EY123 hydraulic fault today", rec.Prompt)
	_, parseErr := uuid.Parse(rec.RequestID)
	assert.NoError(t, parseErr)
	assert.Same(t, rec, store.created)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewRequestService(&fakeRequestStore{})

	_, err := svc.Submit(context.Background(), SubmitInput{Prompt: "   "})
	assert.True(t, IsValidationError(err))

	_, err = svc.Submit(context.Background(), SubmitInput{Prompt: strings.Repeat("x", MaxPromptSize+1)})
	assert.True(t, IsValidationError(err))

	_, err = svc.Submit(context.Background(), SubmitInput{Prompt: "EY123 delayed", SessionID: "not-a-uuid"})
	assert.True(t, IsValidationError(err))
}

func TestSubmitAcceptsSessionID(t *testing.T) {
	store := &fakeRequestStore{}
	svc := NewRequestService(store)
	sessionID := uuid.New().String()

	rec, err := svc.Submit(context.Background(), SubmitInput{Prompt: "EY123 delayed", SessionID: sessionID})
	require.NoError(t, err)
	assert.Equal(t, sessionID, rec.SessionID)
}

func TestStatusNotFound(t *testing.T) {
	svc := NewRequestService(&fakeRequestStore{})

	_, err := svc.Status(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatusReturnsRecord(t *testing.T) {
	want := &models.RequestRecord{RequestID: "r-1", Status: models.RequestComplete}
	svc := NewRequestService(&fakeRequestStore{get: func(string) (*models.RequestRecord, error) {
		return want, nil
	}})

	got, err := svc.Status(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestStatusPropagatesStoreError(t *testing.T) {
	boom := errors.New("table offline")
	svc := NewRequestService(&fakeRequestStore{get: func(string) (*models.RequestRecord, error) {
		return nil, boom
	}})

	_, err := svc.Status(context.Background(), "r-1")
	assert.ErrorIs(t, err, boom)
}
