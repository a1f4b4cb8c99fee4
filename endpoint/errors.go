package endpoint

import (
	"errors"
	"fmt"

	"github.com/vipnode/blackbird/envelope"
)

var (
	// ErrCallTimeout rejects calls that outlive WithCallTimeout.
	ErrCallTimeout = errors.New("call timed out waiting for a response")
	// ErrPendingDiscarded rejects the oldest calls evicted by WithPendingLimit.
	ErrPendingDiscarded = errors.New("call discarded from the pending table")
	// ErrClosed rejects calls made on, or outstanding at the time of, Close.
	ErrClosed = errors.New("endpoint closed")
	// ErrDuplicateID is returned when a correlation id is already outstanding.
	ErrDuplicateID = errors.New("duplicate call id")
)

// RemoteError is an error reported by the remote endpoint.
type RemoteError = envelope.RemoteError

// MethodNotFoundError is sent back when a call names a method that is not in
// the receiver's inbound set.
type MethodNotFoundError struct {
	Method string
}

func (err MethodNotFoundError) Error() string {
	return fmt.Sprintf("Function %q not implemented", err.Method)
}

// InvalidParamsError is returned when call arguments do not match a
// registered method's parameters.
type InvalidParamsError struct {
	Method string
	cause  error
}

func (err InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params for %q: %s", err.Method, err.cause)
}

func (err InvalidParamsError) Cause() error {
	return err.cause
}

// UnsupportedCallbackError rejects a call whose trailing argument is a
// function that is not a Callback.
type UnsupportedCallbackError struct {
	Type string
}

func (err UnsupportedCallbackError) Error() string {
	return fmt.Sprintf("unsupported callback signature %s, want func(error, ...json.RawMessage)", err.Type)
}

// PanicError is a recovered panic from an inbound handler.
type PanicError struct {
	Value interface{}
}

func (err PanicError) Error() string {
	if e, ok := err.Value.(error); ok {
		return e.Error()
	}
	return fmt.Sprint(err.Value)
}

// ErrContextMissingValue is returned when a context is missing an expected value.
type ErrContextMissingValue struct {
	Key serviceContext
}

func (err ErrContextMissingValue) Error() string {
	return fmt.Sprintf("context missing value: %s", err.Key)
}
