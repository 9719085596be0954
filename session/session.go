// Package session holds the frame captured when an interactive region
// selection begins, so completing the selection crops that frame instead of
// capturing the desktop again.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mobile-next/qrscan/screen"
)

var (
	// ErrNoActiveSession is returned by operations that need a held session.
	ErrNoActiveSession = errors.New("no active selection session")

	// ErrSessionActive is returned by Begin when a session is already held
	// and the caller did not ask to replace it.
	ErrSessionActive = errors.New("a selection session is already active")

	// ErrLockContention means two writers raced for the slot. A single writer
	// drives the slot, so this points at a caller bug and is not retried.
	ErrLockContention = errors.New("selection session is busy")
)

// Session is one captured frame waiting for the user to pick a region.
type Session struct {
	ID        string
	Display   screen.Display
	Frame     screen.Frame
	Preview   []byte
	StartedAt time.Time
}

func New(display screen.Display, frame screen.Frame, preview []byte) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Display:   display,
		Frame:     frame,
		Preview:   preview,
		StartedAt: time.Now(),
	}
}

// Slot holds at most one session. Store and take share a single critical
// section; readers only wait for a writer to finish.
type Slot struct {
	mu      sync.RWMutex
	current *Session
}

func NewSlot() *Slot {
	return &Slot{}
}

func (s *Slot) lock() error {
	if !s.mu.TryLock() {
		return ErrLockContention
	}
	return nil
}

// Begin stores a new session. If one is already held, Begin fails with
// ErrSessionActive unless replace is set, in which case the old session is
// dropped and returned.
func (s *Slot) Begin(next *Session, replace bool) (*Session, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	previous := s.current
	if previous != nil && !replace {
		return nil, ErrSessionActive
	}

	s.current = next
	return previous, nil
}

// Preview returns the held session's preview without consuming it.
func (s *Slot) Preview() (string, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return "", nil, ErrNoActiveSession
	}
	return s.current.ID, s.current.Preview, nil
}

// Take removes and returns the held session.
func (s *Slot) Take() (*Session, error) {
	if err := s.lock(); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveSession
	}

	taken := s.current
	s.current = nil
	return taken, nil
}

// Cancel drops the held session without handing it to anyone.
func (s *Slot) Cancel() error {
	_, err := s.Take()
	return err
}

// Active reports whether a session is held.
func (s *Slot) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}
