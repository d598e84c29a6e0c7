package spec

import (
	"errors"
	"sync"
)

var (
	// ErrNoRequestSpecification is returned when no request specification is installed
	ErrNoRequestSpecification = errors.New("no request specification installed")

	// ErrNoResponseSpecification is returned when no response specification is installed
	ErrNoResponseSpecification = errors.New("no response specification installed")
)

// Session carries the request and response specifications governing the
// requests of one scenario. Each scenario owns its session, so scenarios
// never observe each other's expectations.
type Session struct {
	mu       sync.RWMutex
	request  RequestSpecification
	response ResponseSpecification
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// InstallRequestSpecification replaces the installed request specification
func (s *Session) InstallRequestSpecification(spec RequestSpecification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = spec
}

// InstallResponseSpecification replaces the installed response specification
func (s *Session) InstallResponseSpecification(spec ResponseSpecification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = spec
}

// RequestSpecification returns the installed request specification
func (s *Session) RequestSpecification() (RequestSpecification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.request.IsZero() {
		return RequestSpecification{}, ErrNoRequestSpecification
	}
	return s.request, nil
}

// Specifications returns the installed pair. Both must be installed.
func (s *Session) Specifications() (RequestSpecification, ResponseSpecification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.request.IsZero() {
		return RequestSpecification{}, ResponseSpecification{}, ErrNoRequestSpecification
	}
	if s.response.IsZero() {
		return RequestSpecification{}, ResponseSpecification{}, ErrNoResponseSpecification
	}
	return s.request, s.response, nil
}

// Fork returns a new session that inherits the request specification only
func (s *Session) Fork() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{request: s.request}
}
