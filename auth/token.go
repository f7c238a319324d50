// Package auth holds bearer credentials for outgoing requests and issues
// and verifies the HS256 tokens the workflow service accepts.
package auth

import "sync"

// TokenStore is a credential store shared by everything that talks to the
// workflow service. It is passed explicitly to the clients that need it.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore creates a store holding token, which may be empty.
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token}
}

// Token returns the current token, or "" when none is held.
func (s *TokenStore) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear drops the current token, e.g. after the service rejected it.
func (s *TokenStore) Clear() { s.Set("") }
