package advisory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

var ErrStaleEvaluation = errors.New("advisory result is for a superseded evaluation")

// Store keeps the single latest advisory slot per session.
type Store interface {
	// Begin makes evaluationID the current identity and marks it pending.
	Begin(ctx context.Context, sessionID, evaluationID int64) error
	// Complete writes a finished advisory only if a.EvaluationID is still the
	// current identity of a.SessionID. It returns ErrStaleEvaluation otherwise.
	Complete(ctx context.Context, a model.Advisory) error
	// Get returns status none when the session has no advisory.
	Get(ctx context.Context, sessionID int64) (model.Advisory, error)
	Clear(ctx context.Context, sessionID int64) error
}

type memoryStore struct {
	mu    sync.RWMutex
	slots map[int64]model.Advisory
	now   func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{slots: make(map[int64]model.Advisory), now: time.Now}
}

func (s *memoryStore) Begin(_ context.Context, sessionID, evaluationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[sessionID] = pending(sessionID, evaluationID, s.now())
	return nil
}

func (s *memoryStore) Complete(_ context.Context, a model.Advisory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[a.SessionID]
	if !ok || cur.EvaluationID != a.EvaluationID {
		return ErrStaleEvaluation
	}
	a.UpdatedAt = s.now()
	s.slots[a.SessionID] = a
	return nil
}

func (s *memoryStore) Get(_ context.Context, sessionID int64) (model.Advisory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.slots[sessionID]; ok {
		return a, nil
	}
	return none(sessionID), nil
}

func (s *memoryStore) Clear(_ context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, sessionID)
	return nil
}

func pending(sessionID, evaluationID int64, at time.Time) model.Advisory {
	return model.Advisory{
		SessionID:    sessionID,
		EvaluationID: evaluationID,
		Status:       model.AdvisoryStatusPending,
		UpdatedAt:    at,
	}
}

func none(sessionID int64) model.Advisory {
	return model.Advisory{SessionID: sessionID, Status: model.AdvisoryStatusNone}
}
