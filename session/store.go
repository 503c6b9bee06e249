package session

import "sync"

// Keys used in the persistence store. Absence of a key is meaningful:
// no token, no refresh capability and unknown expiry respectively.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyTokenExpiration = "token_expiration" // epoch milliseconds as a decimal string
)

// Store is the single-slot key/value persistence behind a session.
// Implementations must treat Delete of a missing key as success.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// MemoryStore keeps the session for the life of the process only.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
