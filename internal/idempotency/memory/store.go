package memory

import (
	"context"
	"sync"
	"time"
)

// Store remembers claimed update keys in process memory.
type Store struct {
	mu      sync.Mutex
	claimed map[string]time.Time
	now     func() time.Time
}

// NewStore creates a new in-memory update log.
func NewStore() *Store {
	return &Store{
		claimed: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Claim records key and reports whether it was seen for the first time.
func (s *Store) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimed[key]; ok {
		return false, nil
	}
	s.claimed[key] = s.now()
	return true, nil
}

// Release removes key; releasing an unknown key is a no-op.
func (s *Store) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, key)
	return nil
}

// Forget drops keys claimed before cutoff and returns how many were removed.
func (s *Store) Forget(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, at := range s.claimed {
		if at.Before(cutoff) {
			delete(s.claimed, key)
			removed++
		}
	}
	return removed, nil
}
