package store

import (
	"context"
	"errors"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by Create when the ID is taken.
var ErrAlreadyExists = errors.New("already exists")

// SessionStore defines the contract for planning session persistence.
// Sessions are stored as their versioned state envelope.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id int64) (*model.Session, error)
	// Update loads the session, applies fn and saves the result atomically.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, id int64, fn func(s *model.Session) error) (*model.Session, error)
	Delete(ctx context.Context, id int64) error
}
