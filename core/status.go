package core

import "sync"

// State enumerates the progress of a linking flow operation.
type State int

const (
	StatePending State = iota
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Status is a tri-state progress value: pending, success with a value, or
// failure with an error. Pending carries neither value nor error.
type Status[T any] struct {
	state State
	value T
	err   error
}

// Pending returns the in-progress status.
func Pending[T any]() Status[T] {
	return Status[T]{state: StatePending}
}

// Success returns a terminal status carrying v.
func Success[T any](v T) Status[T] {
	return Status[T]{state: StateSuccess, value: v}
}

// Failure returns a terminal status carrying err.
func Failure[T any](err error) Status[T] {
	return Status[T]{state: StateFailure, err: err}
}

func (s Status[T]) State() State { return s.state }

func (s Status[T]) IsPending() bool { return s.state == StatePending }
func (s Status[T]) IsSuccess() bool { return s.state == StateSuccess }
func (s Status[T]) IsFailure() bool { return s.state == StateFailure }

// Value returns the success payload; ok is false unless the status is a
// success.
func (s Status[T]) Value() (v T, ok bool) {
	if s.state != StateSuccess {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the failure error, or nil for pending and success statuses.
func (s Status[T]) Err() error { return s.err }

// Observer receives status values published after it subscribed.
type Observer[T any] func(Status[T])

type subscription[T any] struct {
	id int
	fn Observer[T]
}

// Observable is an ordered-delivery notification channel for Status values.
// Subscribers receive only statuses published after subscription; there is no
// replay. Publication is serialized, so two statuses from the same flow are
// never delivered out of order or interleaved.
type Observable[T any] struct {
	emitMu sync.Mutex // held for the whole delivery of one status

	mu     sync.Mutex // guards the subscriber list
	nextID int
	subs   []subscription[T]
}

func NewObservable[T any]() *Observable[T] {
	return &Observable[T]{}
}

// Subscribe registers fn and returns a cancel function. Cancel is idempotent.
func (o *Observable[T]) Subscribe(fn Observer[T]) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscription[T]{id: id, fn: fn})
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers st to every current subscriber in registration order.
// Observers run outside the subscriber lock, so they may subscribe or cancel
// without deadlocking, but deliveries of distinct statuses never interleave.
func (o *Observable[T]) Publish(st Status[T]) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	subs := make([]subscription[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(st)
	}
}
