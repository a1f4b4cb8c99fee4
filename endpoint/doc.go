/*
	Package endpoint implements symmetric call/response correlation over a
	transport that has no request/response semantics of its own.

	An Endpoint is created once per side of a connection. It is given the
	Inbound handlers that the remote side may call, the names of the outbound
	methods it wants to call on the remote side, and a Transport. There is no
	asymmetry between the two sides: both may call each other concurrently.

	Outbound calls are made through a Stub, which returns a *deferred.Deferred
	immediately. A trailing Callback argument is also notified with the same
	outcome.

		ep := endpoint.New(nil, []string{"add"}, t)
		ep.Stub("add")(1, 2).Then(func(v interface{}) { ... }, func(err error) { ... })

	Inbound handlers return a Result: Value for an immediate result, Later for
	a Future that settles afterwards, or Void when the handler calls
	Call.Done itself. Exactly one response is sent per call.

	Endpoints filter out envelopes that carry their own identity as origin, so
	several endpoints can share a broadcast transport that echoes to its
	sender.
*/
package endpoint
