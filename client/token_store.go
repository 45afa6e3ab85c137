package client

import "sync"

// TokenStore holds the single in-memory access token for the process.
// It is constructed and injected explicitly; nothing here survives a
// restart and nothing is ever written to disk.
type TokenStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewTokenStore returns an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set replaces the held token unconditionally. No validation happens here.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
}

// Get returns the current token and whether one is held.
func (s *TokenStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set
}

// Clear drops the held token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
}

// Has reports whether a token is held.
func (s *TokenStore) Has() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}
