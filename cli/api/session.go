package api

import (
	"sync"

	"github.com/municrud/municrud/engine/staff"
)

// Session carries the bearer token and viewer identity used by the gateway.
// It is created once per process and may be updated when configuration reloads.
type Session struct {
	mu    sync.RWMutex
	token string
	role  staff.Role
	name  string
}

// NewSession creates a session for the given token and viewer role
func NewSession(token string, role staff.Role) *Session {
	return &Session{token: token, role: role}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the bearer token, e.g. after the config file changed.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Session) Role() staff.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// SetProfile records the viewer's role and display name
func (s *Session) SetProfile(role staff.Role, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.role = role
	s.name = name
}
