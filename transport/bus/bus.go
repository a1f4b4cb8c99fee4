// Package bus implements an in-process broadcast transport. Every message
// sent on the bus is delivered to every listener, including the sender's own.
package bus

import (
	"github.com/vipnode/blackbird/internal/queue"
	"github.com/vipnode/blackbird/transport"
)

var _ transport.Transport = &Bus{}

// Bus is a broadcast message bus. Messages are delivered asynchronously on a
// single goroutine, in the order they were sent.
type Bus struct {
	transport.Listeners
	queue *queue.Queue
}

// New returns a running Bus. Close it to stop the delivery goroutine.
func New() *Bus {
	b := &Bus{}
	b.queue = queue.New(b.Emit)
	return b
}

// Send queues data for delivery to all listeners.
func (b *Bus) Send(data []byte) error {
	msg := make([]byte, len(data))
	copy(msg, data)
	if err := b.queue.Push(msg); err != nil {
		return transport.ErrClosed
	}
	return nil
}

// Close stops accepting messages. Queued messages are still delivered.
func (b *Bus) Close() error {
	b.queue.Close()
	return nil
}

// Done is closed once the bus is closed and all queued messages are delivered.
func (b *Bus) Done() <-chan struct{} {
	return b.queue.Done()
}
