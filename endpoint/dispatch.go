package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"sync/atomic"

	"github.com/vipnode/blackbird/envelope"
)

// errUnspecified is reported when a Future rejects without a reason.
var errUnspecified = errors.New("Error")

// Future is an asynchronous result that an inbound handler can return.
// *deferred.Deferred implements it.
type Future interface {
	Then(onFulfilled func(interface{}), onRejected func(error))
}

type resultKind int

const (
	resultVoid resultKind = iota
	resultValue
	resultFuture
)

// Result is what an inbound handler returns: Value, Later or Void.
type Result struct {
	kind   resultKind
	value  interface{}
	future Future
}

// Void means the handler completes the call itself through Call.Done.
var Void = Result{}

// Value responds with v.
func Value(v interface{}) Result {
	return Result{kind: resultValue, value: v}
}

// Later responds once f settles. A nil f responds with a null result.
func Later(f Future) Result {
	return Result{kind: resultFuture, future: f}
}

// Handler serves inbound calls. A returned error is sent back to the caller as
// its message.
type Handler interface {
	Handle(call *Call) (Result, error)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc func(call *Call) (Result, error)

func (fn HandlerFunc) Handle(call *Call) (Result, error) {
	return fn(call)
}

// Params are the positional arguments of an inbound call.
type Params []json.RawMessage

// Unmarshal decodes the i'th argument into v.
func (p Params) Unmarshal(i int, v interface{}) error {
	if i < 0 || i >= len(p) {
		return fmt.Errorf("missing argument %d", i)
	}
	return json.Unmarshal(p[i], v)
}

// Call is one inbound invocation.
type Call struct {
	Method string
	Params Params

	ctx   context.Context
	reply *reply
}

// Context returns the call's context. It carries the receiving Endpoint as a
// Service, see CtxService, and is cancelled when the endpoint closes.
func (c *Call) Context() context.Context {
	return c.ctx
}

// Done sends the response for this call. Only the first call has any effect;
// it returns false for later ones.
func (c *Call) Done(err error, results ...interface{}) bool {
	return c.reply.send(err, results)
}

// reply sends at most one response for a call id.
type reply struct {
	endpoint *Endpoint
	id       string
	sent     int32
}

func (r *reply) send(err error, results []interface{}) bool {
	if !atomic.CompareAndSwapInt32(&r.sent, 0, 1) {
		logger.Printf("reply.send(): Ignoring duplicate response for %s", r.id)
		return false
	}
	r.endpoint.sendAck(r.id, err, results)
	return true
}

func (e *Endpoint) handleCall(env *envelope.Envelope) {
	rep := &reply{endpoint: e, id: env.ID}
	h, ok := e.inbound[env.Fn]
	if !ok {
		rep.send(MethodNotFoundError{env.Fn}, nil)
		return
	}
	params, err := env.RawArgs(0)
	if err != nil {
		rep.send(InvalidParamsError{env.Fn, err}, nil)
		return
	}

	call := &Call{
		Method: env.Fn,
		Params: params,
		ctx:    context.WithValue(e.ctx, ctxService, e),
		reply:  rep,
	}
	res, err := invoke(h, call)
	if err != nil {
		call.Done(err)
		return
	}
	switch res.kind {
	case resultValue:
		call.Done(nil, res.value)
	case resultFuture:
		if res.future == nil || isNilValue(reflect.ValueOf(res.future)) {
			call.Done(nil)
			return
		}
		attach(call, res.future)
	}
}

// attach responds to call once f settles. A panic while subscribing is sent
// back as a PanicError.
func attach(call *Call, f Future) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("Future for %q panicked: %v\n%s", call.Method, r, debug.Stack())
			call.Done(PanicError{r})
		}
	}()
	f.Then(func(v interface{}) {
		call.Done(nil, v)
	}, func(err error) {
		if err == nil {
			err = errUnspecified
		}
		call.Done(err)
	})
}

// invoke runs the handler, converting a panic into an error.
func invoke(h Handler, call *Call) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("Handler for %q panicked: %v\n%s", call.Method, r, debug.Stack())
			res, err = Void, PanicError{r}
		}
	}()
	return h.Handle(call)
}
