package endpoint

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vipnode/blackbird/envelope"
	"github.com/vipnode/blackbird/internal/pretty"
	"github.com/vipnode/blackbird/transport"
	"golang.org/x/sync/semaphore"
)

// maxLoggedMessage is how much of an undecodable message gets logged.
const maxLoggedMessage = 128

// Endpoint is one side of a connection. It owns an identity, the inbound
// handlers, the outbound method names and the table of outstanding calls.
type Endpoint struct {
	id        string
	inbound   Inbound
	outbound  []string
	transport transport.Transport
	codec     envelope.Codec
	newID     func() string

	pending pendingTable
	sem     *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	closed int32

	listenOnce sync.Once
}

// New returns an Endpoint that serves inbound, can call the outbound method
// names on the remote side, and is subscribed to t. It does not block.
func New(inbound Inbound, outbound []string, t transport.Transport, opts ...Option) *Endpoint {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	handlers := make(Inbound, len(inbound))
	for name, h := range inbound {
		handlers[name] = h
	}

	e := &Endpoint{
		id:        o.newID(),
		inbound:   handlers,
		outbound:  append([]string(nil), outbound...),
		transport: t,
		codec:     o.codec,
		newID:     o.newID,
		pending: pendingTable{
			Limit:   o.pendingLimit,
			Discard: o.pendingDiscard,
			Timeout: o.callTimeout,
		},
	}
	if o.concurrency > 0 {
		e.sem = semaphore.NewWeighted(o.concurrency)
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.listen()
	return e
}

func (e *Endpoint) listen() {
	e.listenOnce.Do(func() {
		e.transport.Listen(e.Receive)
	})
}

// ID returns the endpoint's identity, used as the origin of every envelope it
// sends.
func (e *Endpoint) ID() string {
	return e.id
}

// Pending returns the number of outstanding outbound calls.
func (e *Endpoint) Pending() int {
	return e.pending.len()
}

// Close rejects all outstanding calls with ErrClosed. Afterwards the endpoint
// ignores inbound messages and new calls are rejected immediately.
func (e *Endpoint) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	e.cancel()
	if n := e.pending.drain(ErrClosed); n > 0 {
		logger.Printf("Endpoint.Close(): Rejected %d pending calls", n)
	}
	return nil
}

func (e *Endpoint) isClosed() bool {
	return atomic.LoadInt32(&e.closed) == 1
}

// Receive decodes and routes one inbound message. Undecodable messages, our
// own echoed envelopes and responses without an outstanding call are dropped.
func (e *Endpoint) Receive(data []byte) {
	if e.isClosed() {
		return
	}
	env, err := e.codec.Decode(data)
	if err != nil {
		logger.Printf("Endpoint.Receive(): Dropping message %q: %s", pretty.Abbrev(string(data), maxLoggedMessage), err)
		return
	}
	if env.Origin == e.id {
		// Echoed by the transport
		return
	}

	if env.Ack {
		e.handleAck(env)
	} else if env.Fn != "" {
		e.dispatch(env)
	} else {
		logger.Printf("Endpoint.Receive(): Dropping invalid envelope: %s", env)
	}
}

func (e *Endpoint) handleAck(env *envelope.Envelope) {
	errArg, err := env.Raw(0)
	if err != nil {
		logger.Printf("Endpoint.handleAck(): Dropping envelope with bad error argument: %s", err)
		return
	}
	results, err := env.RawArgs(1)
	if err != nil {
		logger.Printf("Endpoint.handleAck(): Dropping envelope with bad results: %s", err)
		return
	}
	if !e.pending.resolve(env.ID, envelope.ParseError(errArg), results) {
		logger.Printf("Endpoint.handleAck(): Dropping unrecognized response: %s", env.ID)
	}
}

func (e *Endpoint) dispatch(env *envelope.Envelope) {
	if e.sem == nil {
		e.handleCall(env)
		return
	}
	if err := e.sem.Acquire(e.ctx, 1); err != nil {
		// Closed while waiting
		return
	}
	go func() {
		defer e.sem.Release(1)
		e.handleCall(env)
	}()
}

// sendAck encodes and sends a response. If the results cannot be encoded, an
// error response is sent in their place so the caller still settles.
func (e *Endpoint) sendAck(id string, callErr error, results []interface{}) {
	data, err := e.codec.Encode(envelope.Ack(id, e.id, callErr, results...))
	if err != nil {
		logger.Printf("Endpoint.sendAck(): Replacing unencodable response %s: %s", id, err)
		data, err = e.codec.Encode(envelope.Ack(id, e.id, err))
		if err != nil {
			logger.Printf("Endpoint.sendAck(): Failed to encode response %s: %s", id, err)
			return
		}
	}
	if err := e.transport.Send(data); err != nil {
		logger.Printf("Endpoint.sendAck(): Failed to send response %s: %s", id, err)
	}
}
