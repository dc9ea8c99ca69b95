package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]model.Session
	now      func() time.Time
}

// NewMemorySessionStore keeps sessions in process memory. State is copied
// through JSON on the way in and out, as a database would.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[int64]model.Session),
		now:      time.Now,
	}
}

func (m *memorySessionStore) Create(_ context.Context, sess *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sess.ID]; ok {
		return ErrAlreadyExists
	}
	now := m.now()
	sess.CreatedAt, sess.UpdatedAt = now, now

	stored, err := copySession(*sess)
	if err != nil {
		return err
	}
	m.sessions[sess.ID] = stored
	return nil
}

func (m *memorySessionStore) Get(_ context.Context, id int64) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out, err := copySession(stored)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *memorySessionStore) Update(_ context.Context, id int64, fn func(sess *model.Session) error) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	working, err := copySession(stored)
	if err != nil {
		return nil, err
	}
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.UpdatedAt = m.now()

	updated, err := copySession(working)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = updated
	return &working, nil
}

func (m *memorySessionStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

func copySession(s model.Session) (model.Session, error) {
	raw, err := json.Marshal(s.State)
	if err != nil {
		return model.Session{}, fmt.Errorf("encoding session state: %w", err)
	}
	out := s
	out.State = model.SessionState{}
	if err := json.Unmarshal(raw, &out.State); err != nil {
		return model.Session{}, fmt.Errorf("decoding session state: %w", err)
	}
	return out, nil
}
