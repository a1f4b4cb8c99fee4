// Package queue implements an unbounded FIFO drained by a single goroutine.
package queue

import (
	"errors"
	"sync"
)

// ErrClosed is returned when pushing to a closed queue.
var ErrClosed = errors.New("queue: closed")

// Queue delivers pushed items to a consumer function in push order, one at a
// time, on its own goroutine. Push never blocks.
type Queue struct {
	consume func([]byte)

	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]byte
	closed bool
	done   chan struct{}
}

// New starts a queue that calls consume for every pushed item.
func New(consume func([]byte)) *Queue {
	q := &Queue{
		consume: consume,
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Push appends an item.
func (q *Queue) Push(item []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, item)
	q.cond.Signal()
	return nil
}

// Close stops accepting items. Items already pushed are still delivered.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Signal()
	}
	q.mu.Unlock()
}

// Done is closed once the queue is closed and drained.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		item := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]
		q.mu.Unlock()

		q.consume(item)
	}
}
