package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingID is returned when decoding an envelope without a correlation id.
var ErrMissingID = errors.New("envelope: missing id")

// SerializationError is returned when an envelope cannot be encoded, such as
// when an argument contains a cycle or an unsupported value.
type SerializationError struct {
	cause error
}

func (err SerializationError) Error() string {
	return fmt.Sprintf("failed to encode envelope: %s", err.cause)
}

func (err SerializationError) Cause() error {
	return err.cause
}

func (err SerializationError) Unwrap() error {
	return err.cause
}

// DecodeError is returned when inbound text is not a valid envelope.
type DecodeError struct {
	cause error
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("failed to decode envelope: %s", err.cause)
}

func (err DecodeError) Cause() error {
	return err.cause
}

func (err DecodeError) Unwrap() error {
	return err.cause
}

// RemoteError is an error reported by the remote side of a call. Only the
// message crosses the wire.
type RemoteError struct {
	Message string
}

func (err RemoteError) Error() string {
	return err.Message
}

// ErrorArg converts an error into its wire form: nil or the error message.
func ErrorArg(err error) interface{} {
	if err == nil {
		return nil
	}
	return err.Error()
}

// ParseError converts the wire form of an error argument back into an error.
// Falsy JSON values (null, false, 0, "") mean no error. Strings become a
// RemoteError with that message, anything else a RemoteError carrying the raw
// JSON text.
func ParseError(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "0", `""`:
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return RemoteError{Message: msg}
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil && num == 0 {
		return nil
	}
	return RemoteError{Message: string(raw)}
}
