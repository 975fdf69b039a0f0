package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestScratchSessionsCreatesOnce(t *testing.T) {
	var created atomic.Int32
	client := &fakeClient{session: "scratch", log: &callLog{}}
	s := NewScratchSessions(func() (AuthClient, error) {
		created.Add(1)
		return client, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Client()
			if err != nil || got != client {
				t.Errorf("Client() = %v, %v", got, err)
			}
		}()
	}
	wg.Wait()

	if n := created.Load(); n != 1 {
		t.Fatalf("factory ran %d times, want 1", n)
	}
}

func TestScratchSessionsFactoryError(t *testing.T) {
	factoryErr := errors.New("network down")
	calls := 0
	s := NewScratchSessions(func() (AuthClient, error) {
		calls++
		return nil, factoryErr
	})

	if _, err := s.Client(); !errors.Is(err, factoryErr) {
		t.Fatalf("err = %v, want the factory error", err)
	}
	// A failed creation is not cached; the next call retries.
	if _, err := s.Client(); !errors.Is(err, factoryErr) {
		t.Fatalf("err = %v, want the factory error", err)
	}
	if calls != 2 {
		t.Fatalf("factory ran %d times, want 2", calls)
	}
}

func TestScratchSessionsWithoutFactory(t *testing.T) {
	s := NewScratchSessions(nil)
	if _, err := s.Client(); !errors.Is(err, ErrNoScratchSession) {
		t.Fatalf("err = %v, want ErrNoScratchSession", err)
	}
}
