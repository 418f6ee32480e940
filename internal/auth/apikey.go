package auth

import (
	"sync"
)

// APIKeyStore maps inbound API keys of the HTTP transport to client ids.
type APIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewAPIKeyStore creates a new API key store
func NewAPIKeyStore() *APIKeyStore {
	return &APIKeyStore{
		keys: make(map[string]string),
	}
}

// AddKey adds an API key for a client
func (s *APIKeyStore) AddKey(apiKey, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[apiKey] = clientID
}

// ClientID retrieves the client id for an API key
func (s *APIKeyStore) ClientID(apiKey string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clientID, ok := s.keys[apiKey]
	return clientID, ok
}

// Len reports how many keys are configured.
func (s *APIKeyStore) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
