// Package loading tracks one asynchronous operation at a time as an explicit
// state machine, Idle -> Pending -> Settled, for views that show a spinner
// while a request is in flight.
package loading

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/bookshelf/internal/result"
)

type State uint8

const (
	Idle State = iota
	Pending
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Settled:
		return "settled"
	}
	return "unknown"
}

var ErrPending = errors.New("operation already pending")

// Tracker holds the state of the latest operation and its result.
type Tracker[T any] struct {
	mu     sync.Mutex
	state  State
	res    result.Result[T, string]
	done   chan struct{}
	subs   map[int]func(State)
	nextID int
}

func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{subs: make(map[int]func(State))}
}

// Start runs fn in a new goroutine and moves to Pending. It fails with
// ErrPending while a previous operation is still running.
func (t *Tracker[T]) Start(ctx context.Context, fn func(ctx context.Context) result.Result[T, string]) error {
	t.mu.Lock()
	if t.state == Pending {
		t.mu.Unlock()
		return ErrPending
	}
	t.state = Pending
	done := make(chan struct{})
	t.done = done
	t.mu.Unlock()
	t.publish(Pending)

	go func() {
		res := fn(ctx)

		t.mu.Lock()
		t.state = Settled
		t.res = res
		t.mu.Unlock()

		t.publish(Settled)
		close(done)
	}()
	return nil
}

// Wait blocks until the current operation settles, and its subscribers have
// been notified, or ctx is done. It returns
// false if there is nothing to wait for or ctx ended first.
func (t *Tracker[T]) Wait(ctx context.Context) (result.Result[T, string], bool) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return result.Result[T, string]{}, false
	}

	select {
	case <-done:
		return t.Result()
	case <-ctx.Done():
		return result.Result[T, string]{}, false
	}
}

// Run is Start followed by Wait.
func (t *Tracker[T]) Run(ctx context.Context, fn func(ctx context.Context) result.Result[T, string]) (result.Result[T, string], error) {
	if err := t.Start(ctx, fn); err != nil {
		return result.Result[T, string]{}, err
	}
	res, ok := t.Wait(ctx)
	if !ok {
		return res, ctx.Err()
	}
	return res, nil
}

func (t *Tracker[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Result returns the settled result; ok is false unless the state is Settled.
func (t *Tracker[T]) Result() (result.Result[T, string], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Settled {
		return result.Result[T, string]{}, false
	}
	return t.res, true
}

// Reset returns a settled tracker to Idle.
func (t *Tracker[T]) Reset() error {
	t.mu.Lock()
	if t.state == Pending {
		t.mu.Unlock()
		return ErrPending
	}
	t.state = Idle
	t.res = result.Result[T, string]{}
	t.done = nil
	t.mu.Unlock()

	t.publish(Idle)
	return nil
}

// Subscribe registers fn for every state change. fn runs on the goroutine
// that caused the change.
func (t *Tracker[T]) Subscribe(fn func(State)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Tracker[T]) publish(s State) {
	t.mu.Lock()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, t.subs[id])
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
