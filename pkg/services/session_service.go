package services

import (
	"context"
	"fmt"

	"github.com/skyops/irops/pkg/models"
)

// SessionStore is the persistence surface the session service needs.
type SessionStore interface {
	AppendInteraction(ctx context.Context, ia *models.SessionInteraction) error
	RecentInteractions(ctx context.Context, sessionID string, limit int) ([]models.SessionInteraction, error)
}

// SessionService handles conversation session history.
type SessionService struct {
	store        SessionStore
	historyLimit int
}

// NewSessionService creates a new SessionService. historyLimit bounds reads;
// zero means no bound.
func NewSessionService(store SessionStore, historyLimit int) *SessionService {
	if store == nil {
		panic("NewSessionService: store must not be nil")
	}
	return &SessionService{store: store, historyLimit: historyLimit}
}

// Record appends one interaction. A missing session ID is not an error; the
// caller may process requests without a session.
func (s *SessionService) Record(ctx context.Context, ia *models.SessionInteraction) error {
	if ia.SessionID == "" {
		return nil
	}
	if err := s.store.AppendInteraction(ctx, ia); err != nil {
		return fmt.Errorf("recording interaction: %w", err)
	}
	return nil
}

// History returns a session's interactions, newest first.
func (s *SessionService) History(ctx context.Context, sessionID string) ([]models.SessionInteraction, error) {
	if sessionID == "" {
		return nil, NewValidationError("session_id", "session_id is required")
	}
	return s.store.RecentInteractions(ctx, sessionID, s.historyLimit)
}
