package campaign

import "sync"

// Store holds the current campaign content
type Store struct {
	mu       sync.RWMutex
	campaign *Campaign
}

// NewStore creates a store holding c
func NewStore(c *Campaign) *Store {
	return &Store{campaign: c}
}

// Get returns the current content. Callers must not modify it.
func (s *Store) Get() *Campaign {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.campaign
}

// Set replaces the content
func (s *Store) Set(c *Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaign = c
}
