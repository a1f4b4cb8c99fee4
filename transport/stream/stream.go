// Package stream implements a transport of newline-delimited messages over a
// byte stream, such as a pipe, a socket or stdio.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/vipnode/blackbird/internal/queue"
	"github.com/vipnode/blackbird/transport"
)

// MaxMessageSize is the largest message Serve will read.
const MaxMessageSize = 4 * 1024 * 1024

// ErrNewline is returned when sending a message that contains a newline.
var ErrNewline = errors.New("stream: message contains a newline")

var _ transport.Transport = &Stream{}

// Stream sends and receives messages over an io.ReadWriter, one per line.
// Writes happen on a separate goroutine so that Send never blocks on the
// peer reading.
type Stream struct {
	transport.Listeners

	r      io.Reader
	w      io.Writer
	closer io.Closer
	outbox *queue.Queue

	mu       sync.Mutex
	writeErr error
}

// New returns a Stream over rw. If rw is an io.Closer, Close closes it. Call
// Serve to start reading.
func New(rw io.ReadWriter) *Stream {
	s := &Stream{
		r: rw,
		w: rw,
	}
	if c, ok := rw.(io.Closer); ok {
		s.closer = c
	}
	s.outbox = queue.New(s.write)
	return s
}

// Pipe returns two connected in-memory Streams, both already serving.
// Useful for testing.
func Pipe() (*Stream, *Stream) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a := New(struct {
		io.Reader
		io.WriteCloser
	}{r1, w2})
	b := New(struct {
		io.Reader
		io.WriteCloser
	}{r2, w1})
	go a.Serve()
	go b.Serve()
	return a, b
}

// Send queues data to be written as one line.
func (s *Stream) Send(data []byte) error {
	if bytes.IndexByte(data, '\n') >= 0 {
		return ErrNewline
	}
	s.mu.Lock()
	err := s.writeErr
	s.mu.Unlock()
	if err != nil {
		return err
	}

	line := make([]byte, len(data)+1)
	copy(line, data)
	line[len(data)] = '\n'
	if err := s.outbox.Push(line); err != nil {
		return transport.ErrClosed
	}
	return nil
}

func (s *Stream) write(line []byte) {
	s.mu.Lock()
	failed := s.writeErr != nil
	s.mu.Unlock()
	if failed {
		return
	}
	if _, err := s.w.Write(line); err != nil {
		logger.Printf("Stream.write(): %s", err)
		s.mu.Lock()
		s.writeErr = err
		s.mu.Unlock()
	}
}

// Serve reads messages until the stream ends, delivering each to the
// listeners. It returns nil on io.EOF.
func (s *Stream) Serve() error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		msg := make([]byte, len(line))
		copy(msg, line)
		s.Emit(msg)
	}
	return scanner.Err()
}

// Close stops sending and closes the underlying stream, if it is closable.
func (s *Stream) Close() error {
	s.outbox.Close()
	<-s.outbox.Done()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
