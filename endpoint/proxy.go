package endpoint

import (
	"encoding/json"
	"reflect"

	"github.com/vipnode/blackbird/deferred"
	"github.com/vipnode/blackbird/envelope"
)

// Callback is a completion callback for an outbound call. When passed as the
// last argument to a Stub it is notified with the error (nil on success) and
// all results of the call, independently of the returned Deferred.
type Callback func(err error, results ...json.RawMessage)

// Stub calls a remote method. The returned Deferred is fulfilled with the
// first result as json.RawMessage (nil if there is none), or rejected with
// the error. A trailing function argument must be a Callback; any other
// function type rejects the call with UnsupportedCallbackError before
// anything is sent.
type Stub func(args ...interface{}) *deferred.Deferred

// Proxy maps outbound method names to stubs.
type Proxy map[string]Stub

// Proxy returns a fresh mapping of the endpoint's outbound method names to
// stubs.
func (e *Endpoint) Proxy() Proxy {
	p := make(Proxy, len(e.outbound))
	for _, name := range e.outbound {
		p[name] = e.Stub(name)
	}
	return p
}

// Stub returns a stub for a remote method.
func (e *Endpoint) Stub(method string) Stub {
	return func(args ...interface{}) *deferred.Deferred {
		d, _ := e.send(method, args)
		return d
	}
}

// splitCallback removes a trailing callback from args. Any other trailing
// function is an UnsupportedCallbackError.
func splitCallback(args []interface{}) ([]interface{}, Callback, error) {
	n := len(args)
	if n == 0 {
		return args, nil, nil
	}
	switch cb := args[n-1].(type) {
	case Callback:
		return args[:n-1], cb, nil
	case func(error, ...json.RawMessage):
		return args[:n-1], cb, nil
	}
	if t := reflect.TypeOf(args[n-1]); t != nil && t.Kind() == reflect.Func {
		return args[:n-1], nil, UnsupportedCallbackError{t.String()}
	}
	return args, nil, nil
}

// send registers a pending call, sends its envelope and returns the Deferred
// with the call's id. Encoding and transport failures are delivered to the
// pending call locally, so the Deferred never stays pending because of them.
func (e *Endpoint) send(method string, args []interface{}) (*deferred.Deferred, string) {
	args, cb, cbErr := splitCallback(args)
	d := deferred.New()
	complete := func(err error, results []json.RawMessage) {
		if err != nil {
			d.Reject(err)
		} else {
			var result interface{}
			if len(results) > 0 {
				result = results[0]
			}
			d.Resolve(result)
		}
		if cb != nil {
			cb(err, results...)
		}
	}

	if cbErr != nil {
		complete(cbErr, nil)
		return d, ""
	}
	if e.isClosed() {
		complete(ErrClosed, nil)
		return d, ""
	}

	id := e.newID()
	if err := e.pending.register(id, complete); err != nil {
		complete(err, nil)
		return d, id
	}
	if e.isClosed() {
		// Lost a race with Close
		e.pending.resolve(id, ErrClosed, nil)
		return d, id
	}

	data, err := e.codec.Encode(envelope.Call(id, e.id, method, args))
	if err == nil {
		err = e.transport.Send(data)
	}
	if err != nil {
		logger.Printf("Endpoint.send(): Failed to send call %q (%s): %s", method, id, err)
		e.pending.resolve(id, err, nil)
	}
	return d, id
}
