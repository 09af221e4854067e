package auth

import (
	"sync"
	"time"
)

// Sessions tracks revoked token IDs so logout takes effect before the
// token expires. Entries are pruned once the underlying token would
// have expired anyway.
type Sessions struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewSessions() *Sessions {
	return &Sessions{revoked: make(map[string]time.Time)}
}

// Revoke marks a token ID as logged out until its expiry.
func (s *Sessions) Revoke(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = expiresAt
}

func (s *Sessions) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.revoked[jti]
	return ok && exp.After(time.Now())
}
