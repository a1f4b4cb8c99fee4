package endpoint

import (
	"context"
	"encoding/json"
)

// Service represents a remote service that can be called.
type Service interface {
	Call(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

var _ Service = &Endpoint{}

type serviceContext string

var ctxService serviceContext = "service"

// CtxService returns the Service that received the current inbound call. This
// is useful for initiating calls back to the caller.
func CtxService(ctx context.Context) (Service, error) {
	s, ok := ctx.Value(ctxService).(Service)
	if !ok {
		return nil, ErrContextMissingValue{ctxService}
	}
	return s, nil
}

// Call sends a call and blocks until its response arrives or ctx is done. The
// first result is unmarshalled into result, if result is non-nil. If ctx is
// done first, the call is abandoned and a late response is dropped.
//
// Call must not be used from an inline-dispatched handler when the response
// is delivered on the same goroutine; see WithConcurrency.
func (e *Endpoint) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	d, id := e.send(method, params)
	select {
	case <-d.Done():
	case <-ctx.Done():
		if e.pending.resolve(id, ctx.Err(), nil) {
			return ctx.Err()
		}
		// Settled concurrently
		<-d.Done()
	}

	v, err, _ := d.Result()
	if err != nil {
		return err
	}
	raw, _ := v.(json.RawMessage)
	if result == nil || len(raw) == 0 || string(raw) == "null" {
		// No result
		return nil
	}
	return json.Unmarshal(raw, result)
}
