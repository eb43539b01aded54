package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyops/irops/pkg/models"
)

type fakeSessionStore struct {
	appended []*models.SessionInteraction
	recent   func(sessionID string, limit int) ([]models.SessionInteraction, error)
}

func (f *fakeSessionStore) AppendInteraction(_ context.Context, ia *models.SessionInteraction) error {
	f.appended = append(f.appended, ia)
	return nil
}

func (f *fakeSessionStore) RecentInteractions(_ context.Context, sessionID string, limit int) ([]models.SessionInteraction, error) {
	if f.recent != nil {
		return f.recent(sessionID, limit)
	}
	return nil, nil
}

func TestRecordSkipsEmptySession(t *testing.T) {
	store := &fakeSessionStore{}
	svc := NewSessionService(store, 50)

	err := svc.Record(context.Background(), &models.SessionInteraction{RequestID: "r-1"})
	require.NoError(t, err)
	assert.Empty(t, store.appended)
}

func TestRecordAppends(t *testing.T) {
	store := &fakeSessionStore{}
	svc := NewSessionService(store, 50)

	err := svc.Record(context.Background(), &models.SessionInteraction{SessionID: "s-1", RequestID: "r-1"})
	require.NoError(t, err)
	require.Len(t, store.appended, 1)
	assert.Equal(t, "r-1", store.appended[0].RequestID)
}

func TestHistoryAppliesLimit(t *testing.T) {
	var gotLimit int
	store := &fakeSessionStore{recent: func(_ string, limit int) ([]models.SessionInteraction, error) {
		gotLimit = limit
		return []models.SessionInteraction{{SessionID: "s-1"}}, nil
	}}
	svc := NewSessionService(store, 25)

	history, err := svc.History(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, 25, gotLimit)
}

func TestHistoryRequiresSessionID(t *testing.T) {
	svc := NewSessionService(&fakeSessionStore{}, 50)

	_, err := svc.History(context.Background(), "")
	assert.True(t, IsValidationError(err))
}
