// Package session provides a keyed in-memory store for transient
// per-conversation and per-document state with a shared time-to-live.
//
// Entries are never returned once expired: expiry is re-checked on every
// read, so correctness does not depend on Sweep having run. Sweep only
// reclaims memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Session is a read-only view of one stored entry.
type Session struct {
	ID            string
	Payload       any
	CreatedAt     time.Time
	LastTouchedAt time.Time
}

type entry struct {
	mu          sync.Mutex
	payload     any
	createdAt   time.Time
	lastTouched time.Time
	removed     bool
}

// Store holds session payloads keyed by opaque random ids. All mutation of a
// payload goes through Update, which serializes concurrent writers on the
// same id. Operations on different ids lock only the entry they target.
type Store struct {
	clock Clock
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a Store with the given TTL and the system clock.
func New(ttl time.Duration) *Store {
	return NewWithClock(ttl, realClock{})
}

// NewWithClock creates a Store with a custom clock (for testing).
func NewWithClock(ttl time.Duration, clock Clock) *Store {
	return &Store{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// Create stores payload under a fresh 128-bit random id and returns the id.
func (s *Store) Create(payload any) string {
	id := uuid.NewString()
	now := s.clock.Now()

	s.mu.Lock()
	s.entries[id] = &entry{
		payload:     payload,
		createdAt:   now,
		lastTouched: now,
	}
	s.mu.Unlock()

	return id
}

// lookup fetches the live entry for id, locked. The caller must unlock it.
// Expired or removed entries are reported as ErrNotFound.
func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e := s.entries[id]
	s.mu.RUnlock()
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	if e.removed || s.expired(e, s.clock.Now()) {
		e.mu.Unlock()
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastTouched) > s.ttl
}

// Get returns a read-only view of the session. It does not refresh the TTL
// window; callers that mutate must go through Update (which touches).
func (s *Store) Get(id string) (Session, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Session{}, err
	}
	defer e.mu.Unlock()

	return Session{
		ID:            id,
		Payload:       e.payload,
		CreatedAt:     e.createdAt,
		LastTouchedAt: e.lastTouched,
	}, nil
}

// Touch extends the TTL window by updating the last-touched timestamp.
func (s *Store) Touch(id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	e.lastTouched = s.clock.Now()
	return nil
}

// Update atomically reads the payload, applies fn, writes the result back and
// touches the session. If fn returns an error the payload is left unchanged
// and the session is not touched. This is the only sanctioned way to mutate a
// payload; concurrent Updates on the same id serialize.
func (s *Store) Update(id string, fn func(payload any) (any, error)) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	next, err := fn(e.payload)
	if err != nil {
		return err
	}
	e.payload = next
	e.lastTouched = s.clock.Now()
	return nil
}

// Delete removes the session. Unknown or expired ids are ErrNotFound.
func (s *Store) Delete(id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.removed = true
	e.mu.Unlock()

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Sweep removes every entry whose TTL window has lapsed and returns the
// number removed. It is idempotent and safe to call concurrently with any
// other store operation; a sweep can never remove an entry that is still
// inside its TTL window.
func (s *Store) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		dead := e.removed || s.expired(e, now)
		if dead {
			e.removed = true
		}
		e.mu.Unlock()

		if dead {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
