// Package transport defines the duplex channel that endpoints exchange
// encoded envelopes over. Implementations live in subpackages.
package transport

import (
	"errors"
	"sync"
)

// ErrClosed is returned when sending on a closed transport.
var ErrClosed = errors.New("transport: closed")

// Handler receives one inbound message.
type Handler func(data []byte)

// Transport is a duplex message channel with no request/response semantics.
// Send is fire-and-forget; Listen may be called more than once and every
// handler sees every inbound message.
type Transport interface {
	Send(data []byte) error
	Listen(handler Handler)
}

// Funcs adapts a pair of functions into a Transport.
type Funcs struct {
	SendFunc   func(data []byte) error
	ListenFunc func(handler Handler)
}

func (f Funcs) Send(data []byte) error {
	return f.SendFunc(data)
}

func (f Funcs) Listen(handler Handler) {
	f.ListenFunc(handler)
}

// Listeners is a goroutine-safe set of handlers. Transport implementations
// embed it to provide Listen and fan out inbound messages.
type Listeners struct {
	mu       sync.RWMutex
	handlers []Handler
}

// Listen adds a handler.
func (l *Listeners) Listen(handler Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, handler)
}

// Emit delivers data to every handler in registration order.
func (l *Listeners) Emit(data []byte) {
	l.mu.RLock()
	handlers := l.handlers
	l.mu.RUnlock()
	for _, h := range handlers {
		h(data)
	}
}

// Len returns the number of registered handlers.
func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers)
}
