package endpoint

import (
	"time"

	"github.com/google/uuid"
	"github.com/vipnode/blackbird/envelope"
)

type options struct {
	codec          envelope.Codec
	callTimeout    time.Duration
	pendingLimit   int
	pendingDiscard int
	concurrency    int64
	newID          func() string
}

func defaultOptions() *options {
	return &options{
		codec: envelope.JSON,
		newID: newUUID,
	}
}

func newUUID() string {
	return uuid.New().String()
}

// Option configures an Endpoint.
type Option func(*options)

// WithCodec overrides the envelope codec, envelope.JSON by default.
func WithCodec(codec envelope.Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

// WithCallTimeout rejects outbound calls with ErrCallTimeout when no response
// arrives within d. Zero, the default, leaves calls pending until a response
// arrives or the endpoint is closed.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

// WithPendingLimit caps the number of outstanding calls. When limit is
// reached, the discard oldest calls are rejected with ErrPendingDiscarded.
func WithPendingLimit(limit, discard int) Option {
	return func(o *options) {
		o.pendingLimit = limit
		o.pendingDiscard = discard
	}
}

// WithConcurrency runs each inbound call on its own goroutine, with at most n
// running at once. By default calls are dispatched inline in delivery order,
// which means handlers must not block waiting on the remote side.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = int64(n)
	}
}

// WithIDGenerator overrides how the endpoint identity and correlation ids are
// generated. Ids must be unique among outstanding calls.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}
