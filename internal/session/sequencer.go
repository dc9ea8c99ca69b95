// Package session orders profile-changing work within a planning session.
//
// A turn takes a Ticket when it starts. Its slow part (the model call) may
// run concurrently with other turns, but its Commit runs only after every
// earlier ticket of the same session has committed or been abandoned, so
// merges apply in conversation order rather than completion order.
package session

import (
	"context"
	"sync"
)

type Ticket struct {
	SessionID int64
	Seq       uint64

	lane *lane
}

type Sequencer struct {
	mu    sync.Mutex
	lanes map[int64]*lane
}

type lane struct {
	issued    uint64
	next      uint64 // seq allowed to commit next
	abandoned map[uint64]struct{}
	wake      chan struct{}
}

func NewSequencer() *Sequencer {
	return &Sequencer{lanes: make(map[int64]*lane)}
}

// Begin issues the next ticket for sessionID.
func (s *Sequencer) Begin(sessionID int64) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lanes[sessionID]
	if !ok {
		l = &lane{next: 1, abandoned: make(map[uint64]struct{}), wake: make(chan struct{})}
		s.lanes[sessionID] = l
	}
	l.issued++
	return Ticket{SessionID: sessionID, Seq: l.issued, lane: l}
}

// Commit waits for t's turn and runs fn. If ctx ends first the ticket is
// abandoned and fn never runs. A ticket must be committed or abandoned
// exactly once.
func (s *Sequencer) Commit(ctx context.Context, t Ticket, fn func() error) error {
	for {
		s.mu.Lock()
		l, ok := s.laneOf(t)
		if !ok || t.Seq < l.next {
			s.mu.Unlock()
			return ErrTicketSpent
		}
		if l.next == t.Seq {
			s.mu.Unlock()
			break
		}
		wake := l.wake
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			s.Abandon(t)
			return ctx.Err()
		case <-wake:
		}
	}

	defer s.release(t)
	return fn()
}

// Abandon gives up a ticket without running anything.
func (s *Sequencer) Abandon(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.laneOf(t)
	if !ok || t.Seq < l.next {
		return
	}
	if t.Seq == l.next {
		s.advanceLocked(t.SessionID, l)
		return
	}
	l.abandoned[t.Seq] = struct{}{}
}

// Pending reports how many tickets of a session are still outstanding.
func (s *Sequencer) Pending(sessionID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lanes[sessionID]
	if !ok {
		return 0
	}
	return int(l.issued - l.next + 1)
}

func (s *Sequencer) release(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.laneOf(t); ok && l.next == t.Seq {
		s.advanceLocked(t.SessionID, l)
	}
}

// laneOf finds the live lane a ticket was issued from. A lane is dropped once
// all its tickets are spent, so tickets from an earlier lane never match.
func (s *Sequencer) laneOf(t Ticket) (*lane, bool) {
	l, ok := s.lanes[t.SessionID]
	if !ok || l != t.lane {
		return nil, false
	}
	return l, true
}

func (s *Sequencer) advanceLocked(sessionID int64, l *lane) {
	l.next++
	for {
		if _, skip := l.abandoned[l.next]; !skip {
			break
		}
		delete(l.abandoned, l.next)
		l.next++
	}

	close(l.wake)
	l.wake = make(chan struct{})

	if l.next > l.issued {
		delete(s.lanes, sessionID)
	}
}
