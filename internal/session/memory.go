package session

import (
	"context"
	"sync"
	"time"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
)

// MemoryStore is an in-memory session store. A persistent backend can be
// swapped in behind the Store interface without touching either consumer.
//
// The store owns the canonical records: Create and Get hand out private
// copies, and Save writes payload changes back under the store's lock, so
// the HTTP path and socket goroutines never share a mutable Session.
type MemoryStore struct {
	clock clock.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[ID]*Session
}

// NewMemoryStore creates a MemoryStore
func NewMemoryStore(clk clock.Clock, cfg Config) *MemoryStore {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &MemoryStore{
		clock:    clk,
		ttl:      cfg.TTL,
		sessions: make(map[ID]*Session),
	}
}

var _ Store = (*MemoryStore)(nil)

// Create makes a new empty session
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	now := s.clock.Now()
	sess := &Session{
		ID:        newID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	cp := *sess
	return &cp, nil
}

// Get returns a copy of the session with the given id, evicting it if
// expired. Mutations on the returned value are invisible until Save.
func (s *MemoryStore) Get(ctx context.Context, id ID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	var cp Session
	if ok {
		cp = *sess
	}
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	if s.clock.Now().After(cp.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	return &cp, nil
}

// Save persists payload changes to an existing session. Expiry stays owned
// by the store, so a stale copy cannot roll back a keep-alive.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[sess.ID]
	if !ok {
		return ErrNotFound
	}
	cur.User = sess.User
	return nil
}

// Touch refreshes the session's expiry
func (s *MemoryStore) Touch(ctx context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.clock.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return ErrNotFound
	}
	sess.ExpiresAt = s.clock.Now().Add(s.ttl)
	return nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, id ID) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// CleanExpired removes expired sessions (call periodically)
func (s *MemoryStore) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
