package store

import (
	"github.com/NadavGB86/event-pragmetizer-oss/core/db"
)

type Stores struct {
	sessions SessionStore
}

// NewStores returns Postgres-backed stores, or in-memory ones when database
// is nil.
func NewStores(database *db.DB) *Stores {
	if database == nil {
		return &Stores{sessions: NewMemorySessionStore()}
	}
	return &Stores{sessions: newSessionStore(database)}
}

func (s *Stores) Sessions() SessionStore {
	return s.sessions
}
