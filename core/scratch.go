package core

import (
	"fmt"
	"sync"
)

// ScratchSessions owns the disposable secondary session used to prove
// ownership of an existing account. Signing in on the scratch session leaves
// the primary session — and any anonymous state it holds — untouched, which
// is what keeps a guest's local data alive while a merge conflict is still
// unresolved.
//
// The session is created lazily on first use and reused afterwards. The
// holder is an explicit dependency of the handler rather than process-global
// state; flows that need the scratch session must be serialized by the
// caller.
type ScratchSessions struct {
	mu      sync.Mutex
	factory func() (AuthClient, error)
	client  AuthClient
}

// NewScratchSessions wraps a factory for the secondary session. The factory
// is invoked at most once, on the first Client call that needs it.
func NewScratchSessions(factory func() (AuthClient, error)) *ScratchSessions {
	return &ScratchSessions{factory: factory}
}

// Client returns the scratch session, creating it on first call.
func (s *ScratchSessions) Client() (AuthClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	if s.factory == nil {
		return nil, ErrNoScratchSession
	}
	client, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("create scratch session: %w", err)
	}
	s.client = client
	return client, nil
}
