// Package session holds the process-scoped authentication state: the bearer
// token and the current-user snapshot. It is created at startup, filled on
// login/register or session restore, and emptied on logout or a 401.
package session

import (
	"sync"

	"github.com/dmitrijs2005/taskly/internal/client/models"
)

// Session is safe for concurrent use; the Remote Client reads the token from
// request goroutines while the REPL mutates it.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *models.User
}

func New() *Session {
	return &Session{}
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Email is the owner key of the current user, or "".
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Email
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Set replaces token and user. An empty token marks an offline session.
func (s *Session) Set(token string, u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &u
}

// SetUser refreshes the snapshot without touching the token.
func (s *Session) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}
