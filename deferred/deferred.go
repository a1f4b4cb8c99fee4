// Package deferred implements a single-assignment future.
//
// A Deferred starts pending and settles exactly once, either fulfilled with a
// value or rejected with a reason. Observers attached before settlement are
// queued and run in registration order when it settles; observers attached
// afterwards run immediately with the stored outcome.
package deferred

import (
	"context"
	"errors"
	"sync"
)

// ErrAlreadySettled is returned when a Deferred is resolved or rejected more
// than once.
var ErrAlreadySettled = errors.New("deferred: already resolved or rejected")

// ErrNoReason is the rejection reason used when Reject is given a nil error.
var ErrNoReason = errors.New("deferred: rejected without a reason")

// State of a Deferred.
type State int

const (
	Pending State = iota
	Fulfilled
	Rejected
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

type observer struct {
	onFulfilled func(interface{})
	onRejected  func(error)
}

func (o observer) notify(state State, value interface{}, reason error) {
	switch state {
	case Fulfilled:
		if o.onFulfilled != nil {
			o.onFulfilled(value)
		}
	case Rejected:
		if o.onRejected != nil {
			o.onRejected(reason)
		}
	}
}

// Deferred is a single-assignment future. The zero value is not usable, use New.
type Deferred struct {
	mu        sync.Mutex
	state     State
	value     interface{}
	reason    error
	observers []observer
	done      chan struct{}
}

// New returns a pending Deferred.
func New() *Deferred {
	return &Deferred{
		done: make(chan struct{}),
	}
}

// Resolved returns a Deferred that is already fulfilled with value.
func Resolved(value interface{}) *Deferred {
	d := New()
	_ = d.Resolve(value)
	return d
}

// RejectedWith returns a Deferred that is already rejected with reason.
func RejectedWith(reason error) *Deferred {
	d := New()
	_ = d.Reject(reason)
	return d
}

// Resolve fulfills the Deferred with value.
func (d *Deferred) Resolve(value interface{}) error {
	return d.settle(Fulfilled, value, nil)
}

// Reject rejects the Deferred with reason.
func (d *Deferred) Reject(reason error) error {
	if reason == nil {
		reason = ErrNoReason
	}
	return d.settle(Rejected, nil, reason)
}

func (d *Deferred) settle(state State, value interface{}, reason error) error {
	d.mu.Lock()
	if d.state != Pending {
		d.mu.Unlock()
		return ErrAlreadySettled
	}
	d.state = state
	d.value = value
	d.reason = reason
	observers := d.observers
	d.observers = nil
	close(d.done)
	d.mu.Unlock()

	// Observers run outside the lock so they can attach more observers.
	for _, o := range observers {
		o.notify(state, value, reason)
	}
	return nil
}

// Then registers observers for the outcome. Either may be nil. If the
// Deferred has already settled, the matching observer runs before Then
// returns.
func (d *Deferred) Then(onFulfilled func(interface{}), onRejected func(error)) {
	o := observer{onFulfilled, onRejected}
	d.mu.Lock()
	if d.state == Pending {
		d.observers = append(d.observers, o)
		d.mu.Unlock()
		return
	}
	state, value, reason := d.state, d.value, d.reason
	d.mu.Unlock()
	o.notify(state, value, reason)
}

// State returns the current state.
func (d *Deferred) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Done returns a channel that is closed once the Deferred settles.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Result returns the outcome and whether the Deferred has settled.
func (d *Deferred) Result() (value interface{}, reason error, settled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.reason, d.state != Pending
}

// Wait blocks until the Deferred settles or ctx is done.
func (d *Deferred) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-d.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	value, reason, _ := d.Result()
	return value, reason
}
