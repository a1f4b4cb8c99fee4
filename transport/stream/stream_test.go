package stream

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestStreamPipe(t *testing.T) {
	a, b := Pipe()
	defer a.Close()
	defer b.Close()

	received := make(chan string, 2)
	b.Listen(func(data []byte) {
		received <- string(data)
	})

	if err := a.Send([]byte(`{"id":"1"}`)); err != nil {
		t.Fatal(err)
	}
	if err := a.Send([]byte(`{"id":"2"}`)); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`{"id":"1"}`, `{"id":"2"}`} {
		select {
		case got := <-received:
			if got != want {
				t.Errorf("got: %q; want: %q", got, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestStreamNewline(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf)
	if err := s.Send([]byte("a\nb")); err != ErrNewline {
		t.Errorf("got: %v; want: %v", err, ErrNewline)
	}
	if err := s.Send([]byte("ab")); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if got, want := buf.String(), "ab\n"; got != want {
		t.Errorf("got: %q; want: %q", got, want)
	}
}

func TestStreamServeEOF(t *testing.T) {
	c1, c2 := net.Pipe()
	s := New(c2)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	var got []string
	s.Listen(func(data []byte) {
		got = append(got, string(data))
	})
	c1.Write([]byte("one\n\ntwo\n"))
	c1.Close()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("unexpected serve error: %s", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Serve to return")
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("got: %q; want: [one two]", got)
	}
}
