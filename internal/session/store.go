package session

import (
	"errors"
	"sync"
	"time"

	"pos-storefront/internal/domain"
)

var ErrInvalidSession = errors.New("invalid session id")

type entry struct {
	mu        sync.Mutex
	cart      *domain.Cart
	expiresAt time.Time
}

// Store keeps one cart per session id. Work on a single session is
// serialized; different sessions never share a cart.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// With runs fn with the session's cart while holding the session lock,
// creating an empty cart on first use or after expiry.
func (s *Store) With(id string, fn func(cart *domain.Cart) error) error {
	if id == "" {
		return ErrInvalidSession
	}
	e := s.touch(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.cart)
}

func (s *Store) touch(id string) *entry {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || now.After(e.expiresAt) {
		e = &entry{cart: domain.NewCart()}
		s.entries[id] = e
	}
	e.expiresAt = now.Add(s.ttl)
	return e
}

// Sweep removes expired sessions that are not in use and reports how many
// were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if !now.After(e.expiresAt) {
			continue
		}
		if !e.mu.TryLock() {
			continue
		}
		delete(s.entries, id)
		e.mu.Unlock()
		removed++
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
