package auth

import (
	"sort"
	"sync"
)

// TokenStore holds named Graph API access tokens for the lifetime of the
// process. At most one name is active; registering the first token activates
// it.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
	active string
}

// TokenList is the public view of a TokenStore. It never carries token values.
type TokenList struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]string),
	}
}

// Register inserts or overwrites a named token. If no token is active the new
// one becomes active.
func (s *TokenStore) Register(name, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = token
	if s.active == "" {
		s.active = name
	}
}

// SetActive makes name the active token. It returns false if name is unknown.
func (s *TokenStore) SetActive(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[name]; !ok {
		return false
	}
	s.active = name
	return true
}

// Remove deletes a named token. When the active token is removed, the first
// remaining name in sorted order becomes active.
func (s *TokenStore) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[name]; !ok {
		return false
	}
	delete(s.tokens, name)
	if s.active == name {
		s.active = ""
		if names := s.namesLocked(); len(names) > 0 {
			s.active = names[0]
		}
	}
	return true
}

// Active returns the active token.
func (s *TokenStore) Active() (name, token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return "", "", false
	}
	token, ok = s.tokens[s.active]
	return s.active, token, ok
}

// Get returns a token by name.
func (s *TokenStore) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[name]
	return token, ok
}

// List returns the active name and all registered names, sorted.
func (s *TokenStore) List() TokenList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TokenList{
		Active:    s.active,
		Available: s.namesLocked(),
	}
}

func (s *TokenStore) namesLocked() []string {
	names := make([]string, 0, len(s.tokens))
	for name := range s.tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
