package gateway

import "sync"

// TokenStore is the persisted session state read on every call.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(token string)
	Clear()
}

// Tokens is the pair issued by the token endpoint.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// MemoryStore keeps tokens in process memory. The worker and CLI use it with
// service credentials.
type MemoryStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

// NewMemoryStore seeds a store with tokens.
func NewMemoryStore(tokens Tokens) *MemoryStore {
	return &MemoryStore{access: tokens.Access, refresh: tokens.Refresh}
}

func (s *MemoryStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *MemoryStore) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
}
