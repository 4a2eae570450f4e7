package api

import "sync"

// Tokens is the credential pair issued at login.
type Tokens struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool { return t.Access == "" }

// TokenStore persists the credential pair between runs.
type TokenStore interface {
	Tokens() (Tokens, error)
	SaveTokens(Tokens) error
	Clear() error
}

// MemoryTokenStore keeps tokens for the life of the process.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens Tokens
}

// NewMemoryTokenStore seeds a store with t.
func NewMemoryTokenStore(t Tokens) *MemoryTokenStore {
	return &MemoryTokenStore{tokens: t}
}

func (s *MemoryTokenStore) Tokens() (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, nil
}

func (s *MemoryTokenStore) SaveTokens(t Tokens) error {
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	return s.SaveTokens(Tokens{})
}
