package endpoint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/vipnode/blackbird/deferred"
	"github.com/vipnode/blackbird/transport"
	"github.com/vipnode/blackbird/transport/bus"
)

type FruitService struct{}

func (f *FruitService) Apple() string {
	return "Apple"
}

func (f *FruitService) Banana() error {
	return nil
}

func (f *FruitService) Cherry() (string, error) {
	return "Cherry", nil
}

func (f *FruitService) Durian() error {
	return errors.New("dummy")
}

func (f *FruitService) Elderberry(n int) int {
	return n * 2
}

// Recorder appends each call to a log, in the order they are dispatched.
type Recorder struct {
	mu  sync.Mutex
	log strings.Builder
}

func (r *Recorder) add(s string) {
	r.mu.Lock()
	r.log.WriteString(s)
	r.mu.Unlock()
}

func (r *Recorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.String()
}

func (r *Recorder) Fn1() { r.add("1") }
func (r *Recorder) Fn2() { r.add("2") }
func (r *Recorder) Fn3() { r.add("3") }

type Ponger struct{}

func (p *Ponger) Pong() string {
	return "pong"
}

// Pinger calls back into whoever called it.
type Pinger struct{}

func (p *Pinger) PingPong(ctx context.Context) (string, error) {
	service, err := CtxService(ctx)
	if err != nil {
		return "", err
	}
	var pong string
	if err := service.Call(ctx, &pong, "pong"); err != nil {
		return "", err
	}
	return "ping" + pong, nil
}

type Fib struct{}

func (f *Fib) Fibonacci(ctx context.Context, a int, b int, steps int) (int, error) {
	service, err := CtxService(ctx)
	if err != nil {
		return 0, err
	}
	a, b = b, a+b
	if steps <= 0 {
		return b, nil
	}
	if err := service.Call(ctx, &b, "fibonacci", a, b, steps-1); err != nil {
		return 0, err
	}
	return b, nil
}

// Multi responds through its Reply argument.
type Multi struct {
	Later *deferred.Deferred
}

func (m *Multi) Pair(reply Reply) {
	reply(nil, "a", "b")
}

func (m *Multi) Twice(reply Reply) {
	reply(nil, "first")
	reply(nil, "second")
}

func (m *Multi) Wait() *deferred.Deferred {
	return m.Later
}

// recordingTransport records sent messages and never responds.
type recordingTransport struct {
	transport.Listeners

	mu   sync.Mutex
	sent [][]byte
	err  error
}

func (t *recordingTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, append([]byte(nil), data...))
	return nil
}

func (t *recordingTransport) Sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent
}

func register(t *testing.T, prefix string, receivers ...interface{}) Inbound {
	t.Helper()
	in := Inbound{}
	for _, r := range receivers {
		if err := in.Register(prefix, r); err != nil {
			t.Fatal(err)
		}
	}
	return in
}

// busPair returns two endpoints sharing a broadcast bus.
func busPair(inboundA, inboundB Inbound, opts ...Option) (a *Endpoint, b *Endpoint, closer func()) {
	bb := bus.New()
	a = New(inboundA, nil, bb, opts...)
	b = New(inboundB, nil, bb, opts...)
	return a, b, func() {
		a.Close()
		b.Close()
		bb.Close()
		<-bb.Done()
	}
}
