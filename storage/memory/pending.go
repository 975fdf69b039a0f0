// Package memorystore holds pending sign-in state in process memory. It is
// only suitable for single-process deployments; use the redis store when
// callback legs can land on different instances.
package memorystore

import (
	"context"
	"sync"
	"time"

	oidckit "github.com/PaulFidika/linkkit/oidc"
)

type pendingItem struct {
	record  oidckit.PendingSignIn
	expires time.Time
}

// PendingSignIns is an in-memory oidckit.PendingStore with TTL support.
type PendingSignIns struct {
	mu    sync.Mutex
	items map[string]pendingItem
}

func NewPendingSignIns() *PendingSignIns {
	return &PendingSignIns{items: make(map[string]pendingItem)}
}

func (s *PendingSignIns) Put(ctx context.Context, state string, p oidckit.PendingSignIn, ttl time.Duration) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.items[state] = pendingItem{record: p, expires: exp}
	return nil
}

// Take returns and removes the record for state. Expired records read as
// absent.
func (s *PendingSignIns) Take(ctx context.Context, state string) (oidckit.PendingSignIn, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[state]
	if !ok {
		return oidckit.PendingSignIn{}, false, nil
	}
	delete(s.items, state)
	if !it.expires.IsZero() && time.Now().After(it.expires) {
		return oidckit.PendingSignIn{}, false, nil
	}
	return it.record, true, nil
}

func (s *PendingSignIns) Delete(ctx context.Context, state string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, state)
	return nil
}
